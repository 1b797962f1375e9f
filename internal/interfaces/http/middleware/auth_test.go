package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/infrastructure/auth"
	"github.com/inkasso/backend/internal/infrastructure/config"
)

type stubResolver struct {
	caller identity.Caller
	err    error
}

func (s *stubResolver) ResolveCaller(_ context.Context, _ *auth.Claims) (identity.Caller, error) {
	return s.caller, s.err
}

func newAuthTestSetup(t *testing.T) (*auth.JWTService, *identity.User) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "test",
	})
	user, err := identity.NewUser("agent@example.com", "password123", "Agent", identity.RoleAgent)
	require.NoError(t, err)
	return jwtService, user
}

func newAuthRouter(jwtService *auth.JWTService, resolver CallerResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(Authenticate(jwtService, resolver))
	r.GET("/protected", func(c *gin.Context) {
		caller, _ := GetCaller(c)
		c.String(http.StatusOK, caller.DisplayName)
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	t.Run("accepts a valid access token", func(t *testing.T) {
		jwtService, user := newAuthTestSetup(t)
		pair, err := jwtService.GenerateTokenPair(user)
		require.NoError(t, err)

		resolver := &stubResolver{caller: identity.CallerFromUser(user)}
		r := newAuthRouter(jwtService, resolver)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Agent", w.Body.String())
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		jwtService, user := newAuthTestSetup(t)
		r := newAuthRouter(jwtService, &stubResolver{caller: identity.CallerFromUser(user)})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		jwtService, user := newAuthTestSetup(t)
		r := newAuthRouter(jwtService, &stubResolver{caller: identity.CallerFromUser(user)})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+"not-a-token")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a refresh token used as access token", func(t *testing.T) {
		jwtService, user := newAuthTestSetup(t)
		pair, err := jwtService.GenerateTokenPair(user)
		require.NoError(t, err)

		r := newAuthRouter(jwtService, &stubResolver{caller: identity.CallerFromUser(user)})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.RefreshToken)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects when the caller cannot be resolved", func(t *testing.T) {
		jwtService, user := newAuthTestSetup(t)
		pair, err := jwtService.GenerateTokenPair(user)
		require.NoError(t, err)

		resolver := &stubResolver{err: assert.AnError}
		r := newAuthRouter(jwtService, resolver)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	newRouter := func(caller identity.Caller, roles ...identity.Role) *gin.Engine {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.Use(RequestID())
		r.Use(func(c *gin.Context) {
			c.Set(CallerKey, caller)
		})
		r.Use(RequireRole(roles...))
		r.GET("/admin", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	t.Run("allows a matching role", func(t *testing.T) {
		caller := identity.Caller{UserID: uuid.New(), Role: identity.RoleAdmin}
		r := newRouter(caller, identity.RoleAdmin)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a non-matching role", func(t *testing.T) {
		caller := identity.Caller{UserID: uuid.New(), Role: identity.RoleClient}
		r := newRouter(caller, identity.RoleAdmin)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
