package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	platformauth "github.com/conductor-saas/conductor/platform/go/auth"
	"github.com/conductor-saas/conductor/platform/go/tenant"
)

type stubResolver struct {
	space   tenant.Space
	err     error
	lastCtx context.Context
}

func (s *stubResolver) ResolveTenantSpace(ctx context.Context, tenantID uuid.UUID) (tenant.Space, error) {
	s.lastCtx = ctx
	if s.err != nil {
		return tenant.Space{}, s.err
	}
	space := s.space
	space.TenantID = tenantID
	return space, nil
}

func serve(t *testing.T, resolver Resolver, req *http.Request) (*httptest.ResponseRecorder, *tenant.Space) {
	t.Helper()

	var captured *tenant.Space
	handler := WithTenantSpace(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if space, ok := tenant.FromContext(r.Context()); ok {
			captured = &space
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestPublicPathsBypassTenantContext(t *testing.T) {
	t.Parallel()

	for path := range PublicPaths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec, captured := serve(t, &stubResolver{}, req)
		require.Equal(t, http.StatusOK, rec.Code, "path %s", path)
		require.Nil(t, captured, "path %s should not carry a space", path)
	}
}

func TestMissingCredentialsRejected(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	rec, _ := serve(t, &stubResolver{}, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCredentialsWithoutTenantClaimRejected(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	req = req.WithContext(platformauth.WithUser(req.Context(), &platformauth.UserCredentials{Id: "u1"}))
	rec, _ := serve(t, &stubResolver{}, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMalformedTenantClaimRejected(t *testing.T) {
	t.Parallel()

	bad := "not-a-uuid"
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	req = req.WithContext(platformauth.WithUser(req.Context(), &platformauth.UserCredentials{Id: "u1", TenantID: &bad}))
	rec, _ := serve(t, &stubResolver{}, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResolvedSpaceAttachedToContext(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tid := id.String()
	resolver := &stubResolver{space: tenant.Space{Namespace: tenant.NamespaceFor(id)}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	req = req.WithContext(platformauth.WithUser(req.Context(), &platformauth.UserCredentials{Id: "u1", TenantID: &tid}))
	rec, captured := serve(t, resolver, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	require.Equal(t, id, captured.TenantID)
	require.Equal(t, tenant.NamespaceFor(id), captured.Namespace)
}

func TestResolverErrorRejected(t *testing.T) {
	t.Parallel()

	tid := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	req = req.WithContext(platformauth.WithUser(req.Context(), &platformauth.UserCredentials{Id: "u1", TenantID: &tid}))
	rec, _ := serve(t, &stubResolver{err: errors.New("tenant suspended")}, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResolverReceivesRequestContext(t *testing.T) {
	t.Parallel()

	tid := uuid.NewString()
	resolver := &stubResolver{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	req = req.WithContext(platformauth.WithUser(req.Context(), &platformauth.UserCredentials{Id: "u1", TenantID: &tid}))
	_, _ = serve(t, resolver, req)

	// The resolver must see the request context, not a detached one, so
	// cancellation and request-scoped values reach the registry lookup.
	require.NotNil(t, resolver.lastCtx)
	creds, ok := platformauth.UserFromContext(resolver.lastCtx)
	require.True(t, ok)
	require.Equal(t, "u1", creds.Id)
}
