// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"tidewater/internal/core/apperror"
	"tidewater/pkg/logger"
)

// Recovery turns a panic into a 500 and logs the stack. It must be the
// outermost middleware: ErrorHandler never sees a panicking request.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
				)

				ReleaseIdempotency(c)
				appErr := apperror.NewInternal(fmt.Errorf("panic: %v", err))
				_ = c.Error(appErr)
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(appErr.HTTPStatus, internalBody(c))
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
