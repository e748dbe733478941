package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/conductor-saas/conductor/domains/tenants/be/provisioning"
	"github.com/conductor-saas/conductor/platform/go/schema"
	"github.com/conductor-saas/conductor/platform/go/tenant"
)

// Errors returned by the service layer.
var (
	ErrNotFound  = errors.New("tenant not found")
	ErrConflict  = errors.New("tenant already exists")
	ErrSuspended = errors.New("tenant suspended")
)

// Status is the tenant lifecycle state. Tenants are never physically
// deleted; suspension is the terminal soft-disable.
type Status string

const (
	StatusProvisioning Status = "provisioning"
	StatusActive       Status = "active"
	StatusSuspended    Status = "suspended"
)

// StatusFromString converts a stored string to Status; defaults to
// provisioning on unknown values.
func StatusFromString(s string) Status {
	switch Status(s) {
	case StatusProvisioning, StatusActive, StatusSuspended:
		return Status(s)
	default:
		return StatusProvisioning
	}
}

// Tenant is the registry record for a customer organization. Namespace is
// derived once at creation and never changes.
type Tenant struct {
	ID          uuid.UUID
	DisplayName *string
	Status      Status
	Namespace   string
	CreatedAt   time.Time
}

// CreateInput represents the request to register a tenant.
type CreateInput struct {
	DisplayName *string
}

// ListOptions captures filters and pagination.
type ListOptions struct {
	Page     int
	PageSize int
	Status   *Status
}

// ListResult wraps paginated tenants.
type ListResult struct {
	Tenants    []Tenant
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// ProvisionOutput bundles the registry record with the provisioning result.
type ProvisionOutput struct {
	Tenant       Tenant
	Result       provisioning.ProvisionResult
	StorageReady bool
}

// Repository abstracts tenant registry persistence.
type Repository interface {
	Create(ctx context.Context, t Tenant) (Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (Tenant, error)
	List(ctx context.Context, opts ListOptions) (ListResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (Tenant, error)
}

// SchemaProvisioner is the mutating half of the provisioning core.
type SchemaProvisioner interface {
	Provision(ctx context.Context, tenantID string) (provisioning.ProvisionResult, error)
	AddMissingColumns(ctx context.Context, tenantID string) (provisioning.ColumnsAddedResult, error)
}

// SchemaAuditor is the read-only half.
type SchemaAuditor interface {
	Validate(ctx context.Context, tenantID string) (schema.ValidationReport, error)
	ValidateHealth(ctx context.Context, tenantID string) (schema.HealthReport, error)
}

// Service provides tenant registry and provisioning operations.
type Service struct {
	repo        Repository
	provisioner SchemaProvisioner
	auditor     SchemaAuditor
	storage     provisioning.StorageProvisioner
	envKey      string
}

// New constructs a Service with required dependencies.
func New(repo Repository, prov SchemaProvisioner, auditor SchemaAuditor, storage provisioning.StorageProvisioner, envKey string) *Service {
	if repo == nil {
		panic("tenants repo is required")
	}
	if prov == nil {
		panic("schema provisioner is required")
	}
	if auditor == nil {
		panic("schema auditor is required")
	}
	if storage == nil {
		panic("storage provisioner is required")
	}
	if envKey == "" {
		panic("envKey is required")
	}
	return &Service{repo: repo, provisioner: prov, auditor: auditor, storage: storage, envKey: envKey}
}

// Create registers a new tenant with its derived namespace. The namespace is
// not materialized yet; call Provision for that.
func (s *Service) Create(ctx context.Context, input CreateInput) (Tenant, error) {
	id := uuid.New()
	t := Tenant{
		ID:          id,
		DisplayName: input.DisplayName,
		Status:      StatusProvisioning,
		Namespace:   tenant.NamespaceFor(id),
		CreatedAt:   time.Now().UTC(),
	}
	return s.repo.Create(ctx, t)
}

// Get returns a tenant by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Tenant, error) {
	return s.repo.Get(ctx, id)
}

// List tenants with optional status filter.
func (s *Service) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	return s.repo.List(ctx, opts)
}

// Suspend soft-disables a tenant. The namespace and its data stay in place.
func (s *Service) Suspend(ctx context.Context, id uuid.UUID) (Tenant, error) {
	return s.repo.UpdateStatus(ctx, id, StatusSuspended)
}

// Provision materializes the tenant namespace and attachment storage, then
// marks the tenant active. Idempotent: re-provisioning fills gaps only.
// Warnings from partial failures are passed through on the output.
func (s *Service) Provision(ctx context.Context, id uuid.UUID) (ProvisionOutput, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return ProvisionOutput{}, err
	}
	if t.Status == StatusSuspended {
		return ProvisionOutput{}, ErrSuspended
	}

	result, err := s.provisioner.Provision(ctx, t.ID.String())
	if err != nil {
		return ProvisionOutput{}, err
	}

	storageReady := false
	prefix := tenant.BuildAttachmentPrefix(s.envKey, t.Namespace)
	if res, err := s.storage.Ensure(ctx, prefix); err != nil {
		// Attachment storage is not fatal for provisioning, but the
		// failure must be visible to the operator.
		result.Warnings = append(result.Warnings, provisioning.Warning{
			Step:   "storage",
			Detail: err.Error(),
		})
	} else {
		storageReady = res.Ready
	}

	if t.Status != StatusActive {
		t, err = s.repo.UpdateStatus(ctx, id, StatusActive)
		if err != nil {
			return ProvisionOutput{}, err
		}
	}

	return ProvisionOutput{Tenant: t, Result: result, StorageReady: storageReady}, nil
}

// SyncColumns applies schema-evolution renames and missing columns.
func (s *Service) SyncColumns(ctx context.Context, id uuid.UUID) (provisioning.ColumnsAddedResult, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return provisioning.ColumnsAddedResult{}, err
	}
	if t.Status == StatusSuspended {
		return provisioning.ColumnsAddedResult{}, ErrSuspended
	}
	return s.provisioner.AddMissingColumns(ctx, t.ID.String())
}

// Validate audits the tenant namespace against the registry.
func (s *Service) Validate(ctx context.Context, id uuid.UUID) (schema.ValidationReport, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return schema.ValidationReport{}, err
	}
	return s.auditor.Validate(ctx, t.ID.String())
}

// ValidateHealth runs the coarse namespace health check.
func (s *Service) ValidateHealth(ctx context.Context, id uuid.UUID) (schema.HealthReport, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return schema.HealthReport{}, err
	}
	return s.auditor.ValidateHealth(ctx, t.ID.String())
}

// ResolveTenantSpace returns a lightweight tenant Space for middleware
// consumption. Suspended tenants resolve to an error so their requests are
// rejected at the door.
func (s *Service) ResolveTenantSpace(ctx context.Context, id uuid.UUID) (tenant.Space, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return tenant.Space{}, err
	}
	if t.Status == StatusSuspended {
		return tenant.Space{}, ErrSuspended
	}

	space := tenant.Space{
		TenantID:         t.ID,
		Namespace:        t.Namespace,
		AttachmentPrefix: tenant.BuildAttachmentPrefix(s.envKey, t.Namespace),
	}
	if t.DisplayName != nil {
		space.DisplayName = *t.DisplayName
	}
	return space, nil
}
