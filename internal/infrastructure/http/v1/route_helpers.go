package v1

import (
	"github.com/gin-gonic/gin"

	"tidewater/internal/domain/auth"
	"tidewater/internal/infrastructure/http/v1/middleware"
)

const roleManager = auth.RoleManager

// requireRole guards a route when authentication is enabled. Without a
// token validator every caller is anonymous and the guard is a no-op.
func requireRole(cfg RouterConfig, roles ...string) gin.HandlerFunc {
	if cfg.TokenValidator == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RequireRole(roles...)
}
