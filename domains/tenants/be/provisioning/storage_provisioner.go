package provisioning

import "context"

// StorageProvisionResult reports attachment-storage readiness for a tenant prefix.
type StorageProvisionResult struct {
	Ready bool
}

// StorageProvisioner manages the per-tenant object prefix holding ticket and
// OmniBridge attachments. Ensure is mutating/idempotent, Check is read-only.
type StorageProvisioner interface {
	Ensure(ctx context.Context, prefix string) (StorageProvisionResult, error)
	Check(ctx context.Context, prefix string) (StorageProvisionResult, error)
}
