package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcollection "github.com/inkasso/backend/internal/application/collection"
	appidentity "github.com/inkasso/backend/internal/application/identity"
	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/infrastructure/auth"
	"github.com/inkasso/backend/internal/infrastructure/config"
	"github.com/inkasso/backend/internal/infrastructure/persistence"
	"github.com/inkasso/backend/internal/interfaces/http/handler"
	"github.com/inkasso/backend/internal/interfaces/http/middleware"
	"github.com/inkasso/backend/internal/interfaces/http/router"
)

const (
	adminEmail    = "admin@inkasso.test"
	adminPassword = "admin-password-1"
)

// TestServer wires the full HTTP stack against a containerized database
type TestServer struct {
	DB         *TestDB
	Engine     *gin.Engine
	UserRepo   *persistence.GormUserRepository
	JWTService *auth.JWTService
	Reconciler *persistence.GormDebtorReconciler
}

// NewTestServer builds the API surface the way the server entrypoint does
// and seeds an admin account.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewTestDB(t)

	caseRepo := persistence.NewGormCaseRepository(testDB.DB)
	historyRepo := persistence.NewGormCaseHistoryRepository(testDB.DB)
	debtorRepo := persistence.NewGormDebtorRepository(testDB.DB)
	userRepo := persistence.NewGormUserRepository(testDB.DB)
	tenantRepo := persistence.NewGormTenantRepository(testDB.DB)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-test-secret-key-1234567890",
		RefreshSecret:          "integration-test-refresh-secret-key-1234",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "inkasso-test",
	})

	log := zap.NewNop()
	authService := appidentity.NewAuthService(userRepo, jwtService, log)
	userService := appidentity.NewUserService(userRepo, tenantRepo)
	tenantService := appidentity.NewTenantService(tenantRepo)
	caseService := appcollection.NewCaseService(caseRepo, historyRepo, debtorRepo, tenantRepo, userRepo)
	debtorService := appcollection.NewDebtorService(debtorRepo, caseRepo)

	engine := gin.New()
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.RegisterPublic(handler.NewAuthHandler(authService))
	r.RegisterProtected(
		handler.NewCaseHandler(caseService),
		handler.NewDebtorHandler(debtorService),
		handler.NewUserHandler(userService),
		handler.NewTenantHandler(tenantService),
	)
	r.WithAuthMiddleware(middleware.Authenticate(jwtService, authService))
	r.Setup()

	admin, err := identity.NewUser(adminEmail, adminPassword, "Admin", identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, userRepo.Save(context.Background(), admin))

	return &TestServer{
		DB:         testDB,
		Engine:     engine,
		UserRepo:   userRepo,
		JWTService: jwtService,
		Reconciler: persistence.NewGormDebtorReconciler(testDB.DB),
	}
}

// apiResponse mirrors the transport envelope with raw payload bytes so
// tests can decode data into the shape they expect.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends a JSON request and returns the recorder
func (ts *TestServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and requires a successful response
func decode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, out any) apiResponse {
	t.Helper()

	require.Equal(t, wantStatus, w.Code, "unexpected status, body: %s", w.Body.String())

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if out != nil {
		require.NotNil(t, resp.Data, "response has no data, body: %s", w.Body.String())
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return resp
}

// login authenticates a user over the API and returns the access token
func (ts *TestServer) login(t *testing.T, email, password string) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})

	var loginResp appidentity.LoginResponse
	decode(t, w, http.StatusOK, &loginResp)
	require.NotEmpty(t, loginResp.Tokens.AccessToken)
	return loginResp.Tokens.AccessToken
}
