package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tidewater/internal/core/apperror"
	appctx "tidewater/internal/core/context"
)

// TokenValidator validates a bearer token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.Caller, error)
}

// Auth requires a valid bearer token and stores the caller in the context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		caller, err := validator.ValidateToken(token)
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid token").WithCause(err))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(appctx.WithCaller(c.Request.Context(), caller))
		c.Set("caller", caller.Subject)
		c.Next()
	}
}

// RequireRole lets the request through when the caller holds any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if appctx.GetCaller(ctx) == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		for _, role := range roles {
			if appctx.HasRole(ctx, role) {
				c.Next()
				return
			}
		}
		_ = c.Error(apperror.NewForbidden("insufficient role").WithDetail("required_roles", roles))
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
