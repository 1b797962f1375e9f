package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/infrastructure/auth"
	"github.com/inkasso/backend/internal/interfaces/http/dto"
)

// Context keys and header constants for authentication
const (
	CallerKey     = "caller"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// CallerResolver turns validated token claims into the caller's current
// identity. Resolution hits the user record, so deactivations and changed
// tenant assignments take effect on the next request, not at token expiry.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, claims *auth.Claims) (identity.Caller, error)
}

// Authenticate validates the bearer token and stores the resolved caller in
// the request context
func Authenticate(jwtService *auth.JWTService, resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid token")
			return
		}

		caller, err := resolver.ResolveCaller(c.Request.Context(), claims)
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Not authorized")
			return
		}

		c.Set(CallerKey, caller)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set. It must
// run after Authenticate.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Not authorized")
			return
		}
		for _, role := range roles {
			if caller.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID("FORBIDDEN", "Insufficient role", GetRequestID(c)))
	}
}

// GetCaller returns the caller stored by the Authenticate middleware
func GetCaller(c *gin.Context) (identity.Caller, bool) {
	value, exists := c.Get(CallerKey)
	if !exists {
		return identity.Caller{}, false
	}
	caller, ok := value.(identity.Caller)
	return caller, ok
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
