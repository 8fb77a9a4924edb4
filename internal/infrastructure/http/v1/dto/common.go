// Package dto provides the request and response bodies of the v1 API.
package dto

import (
	"time"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/domain"
)

// PageQuery is the limit/offset window accepted by list endpoints.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

func (q PageQuery) Page() domain.Page {
	return domain.Page{Limit: q.Limit, Offset: q.Offset}.Normalize()
}

// DateRange filters by creation time. To is exclusive.
type DateRange struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

func (r DateRange) Validate() error {
	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return apperror.NewValidation("from must be before to").
			WithDetail("from", r.From.Format(time.DateOnly)).
			WithDetail("to", r.To.Format(time.DateOnly))
	}
	return nil
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// optionalID parses s, returning nil for the empty string. Binding has
// already checked the format.
func optionalID(s string) *id.ID {
	if s == "" {
		return nil
	}
	v, err := id.Parse(s)
	if err != nil {
		return nil
	}
	return &v
}

func mustID(s string) id.ID {
	v, _ := id.Parse(s)
	return v
}
