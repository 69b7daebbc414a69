// Package requestdata carries per-request identity through the context as an
// explicit value, so services stay testable without ambient globals.
package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// RequestData is the identity the auth collaborator established for this
// request. UserID is uuid.Nil for anonymous requests (public form fills).
type RequestData struct {
	UserID uuid.UUID
}

// WithRequestData attaches identity to the context.
func WithRequestData(ctx context.Context, data RequestData) context.Context {
	return context.WithValue(ctx, contextKey{}, data)
}

// Get returns the request identity, or nil when none was attached.
func Get(ctx context.Context) *RequestData {
	data, ok := ctx.Value(contextKey{}).(RequestData)
	if !ok {
		return nil
	}
	return &data
}

// UserID is a convenience accessor; it returns uuid.Nil when the request is
// anonymous.
func UserID(ctx context.Context) uuid.UUID {
	if data := Get(ctx); data != nil {
		return data.UserID
	}
	return uuid.Nil
}
