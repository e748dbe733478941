package provisioning

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStorageProvisioner manages per-tenant attachment prefixes in a GCS bucket.
type GCSStorageProvisioner struct {
	Client *storage.Client
	Bucket string
}

func NewGCSStorageProvisioner(client *storage.Client, bucket string) *GCSStorageProvisioner {
	if client == nil {
		panic("gcs storage provisioner requires client")
	}
	if bucket == "" {
		panic("gcs storage provisioner requires bucket")
	}
	return &GCSStorageProvisioner{Client: client, Bucket: bucket}
}

// Ensure writes a marker object under the prefix so the tenant's attachment
// area exists and is writable. Overwriting the marker is harmless.
func (p *GCSStorageProvisioner) Ensure(ctx context.Context, prefix string) (StorageProvisionResult, error) {
	if prefix == "" {
		return StorageProvisionResult{Ready: false}, fmt.Errorf("storage prefix is required")
	}

	w := p.Client.Bucket(p.Bucket).Object(prefix + ".keep").NewWriter(ctx)
	if _, err := w.Write([]byte{}); err != nil {
		_ = w.Close()
		return StorageProvisionResult{Ready: false}, fmt.Errorf("write marker: %w", err)
	}
	if err := w.Close(); err != nil {
		return StorageProvisionResult{Ready: false}, fmt.Errorf("write marker: %w", err)
	}

	return StorageProvisionResult{Ready: true}, nil
}

// Check validates access to the bucket and prefix; an empty prefix listing is fine.
func (p *GCSStorageProvisioner) Check(ctx context.Context, prefix string) (StorageProvisionResult, error) {
	if prefix == "" {
		return StorageProvisionResult{Ready: false}, fmt.Errorf("storage prefix is required")
	}

	bkt := p.Client.Bucket(p.Bucket)
	if _, err := bkt.Attrs(ctx); err != nil {
		return StorageProvisionResult{Ready: false}, fmt.Errorf("bucket attrs: %w", err)
	}

	it := bkt.Objects(ctx, &storage.Query{Prefix: prefix})
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return StorageProvisionResult{Ready: false}, fmt.Errorf("list prefix: %w", err)
	}

	return StorageProvisionResult{Ready: true}, nil
}

var _ StorageProvisioner = (*GCSStorageProvisioner)(nil)
