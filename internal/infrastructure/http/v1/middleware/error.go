package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tidewater/internal/core/apperror"
	"tidewater/internal/infrastructure/http/v1/dto"
	"tidewater/pkg/logger"
)

// ErrorHandler renders the last error registered on the context as
// {code, message, details}. Internal causes are logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		var body dto.ErrorResponse
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code != apperror.CodeInternal {
			if appErr.Err != nil {
				logger.Warn(c.Request.Context(), "request rejected", "code", appErr.Code, "cause", appErr.Err)
			}
			status = appErr.HTTPStatus
			body = dto.ErrorResponse{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
		} else {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
			body = internalBody(c)
		}

		if retryable(status, body.Code) {
			ReleaseIdempotency(c)
		} else {
			FailIdempotency(c, status, body)
		}
		c.JSON(status, body)
	}
}

// retryable reports outcomes that a repeat of the same request may change.
// Their idempotency key is released instead of stored.
func retryable(status int, code string) bool {
	return status >= http.StatusInternalServerError || code == apperror.CodeConcurrentModification
}

func internalBody(c *gin.Context) dto.ErrorResponse {
	return dto.ErrorResponse{
		Code:    apperror.CodeInternal,
		Message: "Internal server error",
		Details: map[string]any{"request_id": c.GetString("request_id")},
	}
}
