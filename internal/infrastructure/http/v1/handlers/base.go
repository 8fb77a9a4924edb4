// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/infrastructure/http/v1/dto"
	"tidewater/internal/infrastructure/http/v1/middleware"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, validationError("invalid request body", err))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, validationError("invalid query parameters", err))
		return false
	}
	if v, ok := obj.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			h.Error(c, err)
			return false
		}
	}
	return true
}

func validationError(message string, err error) *apperror.AppError {
	appErr := apperror.NewValidation(message)
	for field, tag := range dto.FieldErrors(err) {
		appErr.WithDetail(field, tag)
	}
	return appErr
}

// ParamID parses a uuid path parameter.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	v, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+name).WithDetail(name, c.Param(name)))
		return id.Nil(), false
	}
	return v, true
}

// Error registers err on the context and aborts. middleware.ErrorHandler
// writes the response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Created sends 201 with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	middleware.CompleteIdempotency(c, http.StatusCreated, "application/json", data)
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	middleware.CompleteIdempotency(c, http.StatusOK, "application/json", data)
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204. Replays are 204 with an empty body too.
func (h *BaseHandler) NoContent(c *gin.Context) {
	middleware.CompleteIdempotency(c, http.StatusNoContent, "", nil)
	c.Status(http.StatusNoContent)
}
