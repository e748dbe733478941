package provisioning

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStorageProvisioner keeps tenant attachment prefixes under a local
// directory. Intended for development and tests.
type LocalStorageProvisioner struct {
	BasePath string
}

func NewLocalStorageProvisioner(basePath string) *LocalStorageProvisioner {
	if basePath == "" {
		panic("local storage provisioner requires basePath")
	}
	return &LocalStorageProvisioner{BasePath: basePath}
}

func (p *LocalStorageProvisioner) Ensure(ctx context.Context, prefix string) (StorageProvisionResult, error) {
	fullPath, err := p.prefixPath(prefix)
	if err != nil {
		return StorageProvisionResult{Ready: false}, err
	}
	if err := os.MkdirAll(fullPath, 0o755); err != nil {
		return StorageProvisionResult{Ready: false}, fmt.Errorf("create prefix path: %w", err)
	}
	return StorageProvisionResult{Ready: true}, nil
}

// Check never creates anything; a missing prefix reports not ready.
func (p *LocalStorageProvisioner) Check(ctx context.Context, prefix string) (StorageProvisionResult, error) {
	fullPath, err := p.prefixPath(prefix)
	if err != nil {
		return StorageProvisionResult{Ready: false}, err
	}
	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return StorageProvisionResult{Ready: false}, nil
	}
	if err != nil {
		return StorageProvisionResult{Ready: false}, fmt.Errorf("stat prefix path: %w", err)
	}
	return StorageProvisionResult{Ready: info.IsDir()}, nil
}

func (p *LocalStorageProvisioner) prefixPath(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("storage prefix is required")
	}
	return filepath.Join(p.BasePath, prefix), nil
}

var _ StorageProvisioner = (*LocalStorageProvisioner)(nil)
