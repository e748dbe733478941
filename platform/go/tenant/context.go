package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrMissingTenantContext reports a request with no resolvable tenant.
// The HTTP layer surfaces it as an authentication failure (401), never
// exposing the internal namespace string to the caller.
var ErrMissingTenantContext = errors.New("missing tenant context")

// Space captures the resolved tenant routing metadata for a request.
// It is attached to the context by middleware once the tenant has been
// resolved from credentials/claims.
type Space struct {
	TenantID         uuid.UUID
	Namespace        string
	DisplayName      string
	AttachmentPrefix string
}

type ctxKey struct{}

// WithSpace returns a derived context carrying the tenant Space.
func WithSpace(ctx context.Context, space Space) context.Context {
	return context.WithValue(ctx, ctxKey{}, space)
}

// FromContext extracts the tenant Space and a boolean indicating presence.
func FromContext(ctx context.Context) (Space, bool) {
	space, ok := ctx.Value(ctxKey{}).(Space)
	return space, ok
}

// Require returns the tenant Space or ErrMissingTenantContext when the
// request was never routed through the tenant middleware.
func Require(ctx context.Context) (Space, error) {
	space, ok := FromContext(ctx)
	if !ok {
		return Space{}, ErrMissingTenantContext
	}
	return space, nil
}
