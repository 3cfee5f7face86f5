package common

import (
	"context"

	"github.com/bobmcallan/haito/internal/models"
)

type contextKey int

const identityKey contextKey = iota

// WithIdentity stores a verified identity in the request context.
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the verified identity, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(identityKey).(*models.Identity)
	return id
}
