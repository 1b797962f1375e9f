package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcollection "github.com/inkasso/backend/internal/application/collection"
	appidentity "github.com/inkasso/backend/internal/application/identity"
	"github.com/inkasso/backend/internal/infrastructure/auth"
	"github.com/inkasso/backend/internal/infrastructure/cache"
	"github.com/inkasso/backend/internal/infrastructure/config"
	"github.com/inkasso/backend/internal/infrastructure/logger"
	"github.com/inkasso/backend/internal/infrastructure/migration"
	"github.com/inkasso/backend/internal/infrastructure/persistence"
	"github.com/inkasso/backend/internal/infrastructure/scheduler"
	"github.com/inkasso/backend/internal/interfaces/http/handler"
	"github.com/inkasso/backend/internal/interfaces/http/middleware"
	"github.com/inkasso/backend/internal/interfaces/http/router"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version))

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName))

	if err := runMigrations(db, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	counterStore := newCounterStore(cfg, log)
	defer counterStore.Close()

	// Repositories
	caseRepo := persistence.NewGormCaseRepository(db.DB)
	historyRepo := persistence.NewGormCaseHistoryRepository(db.DB)
	debtorRepo := persistence.NewGormDebtorRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(userRepo, jwtService, log)
	userService := appidentity.NewUserService(userRepo, tenantRepo)
	tenantService := appidentity.NewTenantService(tenantRepo)
	caseService := appcollection.NewCaseService(caseRepo, historyRepo, debtorRepo, tenantRepo, userRepo)
	debtorService := appcollection.NewDebtorService(debtorRepo, caseRepo)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.HTTP.CORSAllowOrigins)))
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Store:  counterStore,
			Limit:  cfg.HTTP.RateLimitRequests,
			Window: cfg.HTTP.RateLimitWindow,
		}))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.RegisterPublic(
		handler.NewSystemHandler(db, cfg.App.Name, version),
		handler.NewAuthHandler(authService),
	)
	r.RegisterProtected(
		handler.NewCaseHandler(caseService),
		handler.NewDebtorHandler(debtorService),
		handler.NewUserHandler(userService),
		handler.NewTenantHandler(tenantService),
	)
	r.WithAuthMiddleware(middleware.Authenticate(jwtService, authService))
	r.Setup()

	// Background reconciliation of debtor aggregates
	reconScheduler := scheduler.NewReconciliationScheduler(
		cfg.Reconciliation,
		persistence.NewGormDebtorReconciler(db.DB),
		log,
	)
	if cfg.Reconciliation.Enabled {
		if err := reconScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start reconciliation scheduler", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Reconciliation.Enabled {
		if err := reconScheduler.Stop(ctx); err != nil {
			log.Warn("Reconciliation scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// runMigrations applies any pending schema migrations before the server
// starts accepting requests.
func runMigrations(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	m, err := migration.New(sqlDB, "migrations", log)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		return err
	}

	ver, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("Schema is up to date", zap.Uint("version", ver), zap.Bool("dirty", dirty))
	return nil
}

// newCounterStore prefers Redis for rate-limit counters so limits hold
// across replicas, falling back to an in-process store when Redis is
// unreachable.
func newCounterStore(cfg *config.Config, log *zap.Logger) cache.CounterStore {
	store, err := cache.NewRedisCounterStore(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory rate limit counters",
			zap.String("addr", cfg.Redis.RedisAddr()),
			zap.Error(err))
		return cache.NewInMemoryCounterStore()
	}
	log.Info("Connected to Redis", zap.String("addr", cfg.Redis.RedisAddr()))
	return store
}
