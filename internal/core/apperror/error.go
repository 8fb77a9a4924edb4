// Package apperror provides the typed failures surfaced by the fulfillment core.
// Every business failure is an *AppError so the HTTP boundary can map it without
// inspecting error strings.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Error codes
const (
	// Infrastructure (5xx)
	CodeInternal = "INTERNAL_ERROR"

	// Malformed input (400)
	CodeValidation = "VALIDATION_ERROR"

	// Business rule rejections (422)
	CodeBusinessRule          = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock     = "INSUFFICIENT_STOCK"
	CodePaymentExceedsBalance = "PAYMENT_EXCEEDS_BALANCE"

	// Authentication (401) and authorization (403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Missing entities (404)
	CodeNotFound = "NOT_FOUND"

	// Rejected preconditions (409)
	CodeConflict               = "CONFLICT"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeIdempotency            = "IDEMPOTENCY_CONFLICT"
)

// AppError is the structured error returned by services and rendered by the API.
type AppError struct {
	// Code is a machine-readable identifier
	Code string `json:"code"`

	// Message is human-readable
	Message string `json:"message"`

	// Details carries context such as product ids and quantities
	Details map[string]any `json:"details,omitempty"`

	HTTPStatus int   `json:"-"`
	Err        error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// NewValidation creates a validation error (400).
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404).
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": fmt.Sprint(id)},
	}
}

// NewBusinessRule creates a business rule violation (422).
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInsufficientStock reports a reserve that would drive on-hand below zero.
// Quantities are rendered as decimal strings so fractional kilograms survive JSON.
func NewInsufficientStock(productID string, requested, available decimal.Decimal) *AppError {
	return &AppError{
		Code: CodeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for product %s. Available: %s",
			productID, available.String()),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested.String(),
			"available":  available.String(),
		},
	}
}

// NewPaymentExceedsBalance rejects a payment larger than the order's outstanding balance.
func NewPaymentExceedsBalance(orderID string, amount, outstanding decimal.Decimal) *AppError {
	return NewBusinessRule(CodePaymentExceedsBalance, "Payment amount exceeds outstanding balance").
		WithDetail("order_id", orderID).
		WithDetail("amount", amount.String()).
		WithDetail("outstanding_balance", outstanding.String())
}

// NewConcurrentModification is returned when the store aborted a transaction
// because of a competing writer (serialization failure, deadlock).
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified concurrently. Please retry.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": fmt.Sprint(id)},
	}
}

// NewInternal creates an internal server error (hides details from client).
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401).
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden is returned when the caller lacks a required role.
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewIdempotencyConflict is returned while a request with the same key is in flight.
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Operation already in progress",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewIdempotencyMismatch is returned when a key is reused with a different body.
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Idempotency key reused with a different request",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// AsAppError extracts AppError from error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool          { return HasCode(err, CodeNotFound) }
func IsConflict(err error) bool          { return HasCode(err, CodeConflict) }
func IsInsufficientStock(err error) bool { return HasCode(err, CodeInsufficientStock) }
func IsValidation(err error) bool        { return HasCode(err, CodeValidation) }
