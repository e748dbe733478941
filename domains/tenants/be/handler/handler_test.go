package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conductor-saas/conductor/domains/tenants/be/provisioning"
	"github.com/conductor-saas/conductor/domains/tenants/be/repo"
	"github.com/conductor-saas/conductor/domains/tenants/be/service"
	"github.com/conductor-saas/conductor/platform/go/schema"
)

type stubProvisioner struct {
	result provisioning.ProvisionResult
	err    error
}

func (s stubProvisioner) Provision(ctx context.Context, tenantID string) (provisioning.ProvisionResult, error) {
	return s.result, s.err
}

func (s stubProvisioner) AddMissingColumns(ctx context.Context, tenantID string) (provisioning.ColumnsAddedResult, error) {
	return provisioning.ColumnsAddedResult{}, s.err
}

type stubAuditor struct {
	report schema.ValidationReport
}

func (s stubAuditor) Validate(ctx context.Context, tenantID string) (schema.ValidationReport, error) {
	return s.report, nil
}

func (s stubAuditor) ValidateHealth(ctx context.Context, tenantID string) (schema.HealthReport, error) {
	return schema.HealthReport{Namespace: s.report.Namespace, IsHealthy: true, Issues: []string{}}, nil
}

type readyStorage struct{}

func (readyStorage) Ensure(context.Context, string) (provisioning.StorageProvisionResult, error) {
	return provisioning.StorageProvisionResult{Ready: true}, nil
}

func (readyStorage) Check(context.Context, string) (provisioning.StorageProvisionResult, error) {
	return provisioning.StorageProvisionResult{Ready: true}, nil
}

func newTestRouter(t *testing.T, prov stubProvisioner, auditor stubAuditor) (*chi.Mux, *service.Service) {
	t.Helper()
	svc := service.New(repo.NewMemoryRepository(), prov, auditor, readyStorage{}, "dev")
	h := New(svc, zap.NewNop())
	r := chi.NewRouter()
	h.Routes(r)
	return r, svc
}

func createTenant(t *testing.T, r http.Handler) uuid.UUID {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tenants", bytes.NewBufferString(`{"displayName": "Acme"}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.ID
}

func TestCreateTenant(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, stubProvisioner{}, stubAuditor{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tenants", bytes.NewBufferString(`{"displayName": "Acme"}`))
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Location"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "provisioning", body["status"])
	require.Equal(t, "Acme", body["displayName"])
	require.Contains(t, body["namespace"], "tenant_")
}

func TestCreateTenantBadBody(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, stubProvisioner{}, stubAuditor{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tenants", bytes.NewBufferString(`{`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTenant(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, stubProvisioner{}, stubAuditor{})
	id := createTenant(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tenants/"+id.String(), nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetTenantInvalidID(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, stubProvisioner{}, stubAuditor{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tenants/not-a-uuid", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTenantNotFound(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, stubProvisioner{}, stubAuditor{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tenants/"+uuid.NewString(), nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTenants(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, stubProvisioner{}, stubAuditor{})
	createTenant(t, r)
	createTenant(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tenants?page=1&pageSize=10", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items      []map[string]any `json:"items"`
		TotalItems int              `json:"totalItems"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.TotalItems)
	require.Len(t, body.Items, 2)
}

func TestProvisionTenant(t *testing.T) {
	t.Parallel()

	prov := stubProvisioner{result: provisioning.ProvisionResult{TablesCreated: 20, Warnings: []provisioning.Warning{}}}
	r, _ := newTestRouter(t, prov, stubAuditor{})
	id := createTenant(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tenants/"+id.String()+"/provision", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tenant       map[string]any               `json:"tenant"`
		Result       provisioning.ProvisionResult `json:"result"`
		StorageReady bool                         `json:"storageReady"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "active", body.Tenant["status"])
	require.Equal(t, 20, body.Result.TablesCreated)
	require.True(t, body.StorageReady)
}

func TestProvisionFailureMapsTo500(t *testing.T) {
	t.Parallel()

	prov := stubProvisioner{err: fmt.Errorf("%w: boom", provisioning.ErrNamespaceCreation)}
	r, _ := newTestRouter(t, prov, stubAuditor{})
	id := createTenant(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tenants/"+id.String()+"/provision", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// Internal failure detail must not leak to the client.
	require.Equal(t, "provisioning failed", body["error"])
}

func TestSuspendThenProvisionConflicts(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, stubProvisioner{}, stubAuditor{})
	id := createTenant(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tenants/"+id.String()+"/suspend", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/tenants/"+id.String()+"/provision", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestValidateTenant(t *testing.T) {
	t.Parallel()

	auditor := stubAuditor{report: schema.ValidationReport{
		IsValid:             false,
		MissingTables:       []string{"price_lists"},
		ExtraTables:         []string{},
		CompletenessPercent: 95,
	}}
	r, _ := newTestRouter(t, stubProvisioner{}, auditor)
	id := createTenant(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tenants/"+id.String()+"/validate", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var report schema.ValidationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.False(t, report.IsValid)
	require.Equal(t, []string{"price_lists"}, report.MissingTables)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, stubProvisioner{}, stubAuditor{})
	id := createTenant(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tenants/"+id.String()+"/health", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var report schema.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.True(t, report.IsHealthy)
}
