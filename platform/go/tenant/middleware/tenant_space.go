package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	platformauth "github.com/conductor-saas/conductor/platform/go/auth"
	"github.com/conductor-saas/conductor/platform/go/tenant"
)

// Resolver defines the minimal lookup capability required to populate a tenant Space.
// Implemented by the tenant registry service.
type Resolver interface {
	ResolveTenantSpace(ctx context.Context, tenantID uuid.UUID) (tenant.Space, error)
}

// PublicPaths is the closed set of endpoints served without tenant context.
// Membership is exact-match on the request path; nothing is inferred from
// URL substrings.
var PublicPaths = map[string]struct{}{
	"/healthz":           {},
	"/readyz":            {},
	"/metrics":           {},
	"/api/v1/auth/login": {},
}

// WithTenantSpace resolves the tenant from verified JWT claims and attaches
// tenant.Space to the request context. Requests without a resolvable tenant
// are rejected with 401 unless the path is in PublicPaths. Resolution is not
// cached: a tenant mid-provisioning must never be served stale metadata.
func WithTenantSpace(resolver Resolver) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("tenant middleware: resolver is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PublicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			creds, ok := platformauth.UserFromContext(r.Context())
			if !ok || creds == nil || creds.TenantID == nil || *creds.TenantID == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			tid, err := uuid.Parse(*creds.TenantID)
			if err != nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			space, err := resolver.ResolveTenantSpace(r.Context(), tid)
			if err != nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(tenant.WithSpace(r.Context(), space)))
		})
	}
}
