package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conductor-saas/conductor/platform/go/tenant"
)

// txBeginner exposes the minimal pgx pool behaviour needed by TenantDB.
type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TenantDB wraps a pgx pool to execute queries inside a transaction whose
// search_path is pinned to exactly one namespace. It is the only supported
// path for tenant-table DML: no unqualified query against a default/public
// namespace can reach tenant-owned tables through it.
type TenantDB struct {
	pool        txBeginner
	adminSchema string
}

type TenantDBConfig struct {
	Pool        *pgxpool.Pool
	AdminSchema string
}

func NewTenantDB(cfg TenantDBConfig) *TenantDB {
	if cfg.Pool == nil {
		panic("TenantDB requires pool")
	}

	adminSchema := strings.TrimSpace(cfg.AdminSchema)
	if adminSchema == "" {
		panic("TenantDB requires admin schema")
	}
	return &TenantDB{pool: cfg.Pool, adminSchema: adminSchema}
}

// WithAdmin executes fn inside a transaction scoped to the admin schema only.
func (db *TenantDB) WithAdmin(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return db.run(ctx, db.adminSchema, fn)
}

// WithNamespace executes fn inside a transaction with search_path set to the
// tenant namespace. The namespace must carry the canonical prefix and pass
// identifier validation; anything else is rejected before touching the pool.
func (db *TenantDB) WithNamespace(ctx context.Context, namespace string, fn func(tx pgx.Tx) error) error {
	if !strings.HasPrefix(namespace, tenant.NamespacePrefix) {
		return fmt.Errorf("namespace %q lacks prefix %q", namespace, tenant.NamespacePrefix)
	}
	if _, err := NormalizeIdentifier(namespace); err != nil {
		return fmt.Errorf("namespace: %w", err)
	}
	return db.run(ctx, namespace, fn)
}

// WithSpace is a convenience wrapper taking the request-scoped tenant Space.
func (db *TenantDB) WithSpace(ctx context.Context, space tenant.Space, fn func(tx pgx.Tx) error) error {
	return db.WithNamespace(ctx, space.Namespace, fn)
}

func (db *TenantDB) run(ctx context.Context, searchPath string, fn func(tx pgx.Tx) error) error {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT set_config('search_path', $1, true)`, searchPath); err != nil {
		return fmt.Errorf("set search_path: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
