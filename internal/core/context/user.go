package context

import (
	"context"
	"slices"
)

// Caller identifies the authenticated principal behind a request.
// Populated by the bearer token middleware when authentication is enabled.
type Caller struct {
	Subject string
	Name    string
	Roles   []string
}

type callerKey struct{}

func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// GetCaller returns the Caller from context or nil for anonymous requests.
func GetCaller(ctx context.Context) *Caller {
	if v, ok := ctx.Value(callerKey{}).(*Caller); ok {
		return v
	}
	return nil
}

// GetSubject returns the caller subject, or "system" when unauthenticated.
func GetSubject(ctx context.Context) string {
	if c := GetCaller(ctx); c != nil && c.Subject != "" {
		return c.Subject
	}
	return "system"
}

func HasRole(ctx context.Context, role string) bool {
	c := GetCaller(ctx)
	return c != nil && slices.Contains(c.Roles, role)
}
