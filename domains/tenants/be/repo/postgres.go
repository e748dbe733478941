package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conductor-saas/conductor/domains/tenants/be/service"
)

// PostgresRepository stores tenant registry records in the admin schema.
type PostgresRepository struct {
	pool    *pgxpool.Pool
	tenants string
}

// NewPostgresRepository constructs a repository writing to
// <adminSchema>.tenants.
func NewPostgresRepository(pool *pgxpool.Pool, adminSchema string) *PostgresRepository {
	if pool == nil {
		panic("tenant repo requires pool")
	}
	if adminSchema == "" {
		panic("tenant repo requires admin schema")
	}
	return &PostgresRepository{
		pool:    pool,
		tenants: pgx.Identifier{adminSchema, "tenants"}.Sanitize(),
	}
}

func (r *PostgresRepository) Create(ctx context.Context, t service.Tenant) (service.Tenant, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO `+r.tenants+` (tenant_id, display_name, status, namespace, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.DisplayName, string(t.Status), t.Namespace, t.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.Tenant{}, service.ErrConflict
		}
		return service.Tenant{}, fmt.Errorf("insert tenant: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (service.Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT tenant_id, display_name, status, namespace, created_at
		FROM `+r.tenants+` WHERE tenant_id = $1`, id)
	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.Tenant{}, service.ErrNotFound
		}
		return service.Tenant{}, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context, opts service.ListOptions) (service.ListResult, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	size := opts.PageSize
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size

	var statusFilter *string
	if opts.Status != nil {
		s := string(*opts.Status)
		statusFilter = &s
	}

	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM `+r.tenants+`
		WHERE ($1::text IS NULL OR status = $1)`, statusFilter).Scan(&total); err != nil {
		return service.ListResult{}, fmt.Errorf("count tenants: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT tenant_id, display_name, status, namespace, created_at
		FROM `+r.tenants+`
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, statusFilter, size, offset)
	if err != nil {
		return service.ListResult{}, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]service.Tenant, 0, size)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return service.ListResult{}, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return service.ListResult{}, fmt.Errorf("list tenants: %w", err)
	}

	totalPages := (total + size - 1) / size
	return service.ListResult{
		Tenants:    tenants,
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status service.Status) (service.Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE `+r.tenants+` SET status = $2 WHERE tenant_id = $1
		RETURNING tenant_id, display_name, status, namespace, created_at`, id, string(status))
	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.Tenant{}, service.ErrNotFound
		}
		return service.Tenant{}, fmt.Errorf("update tenant status: %w", err)
	}
	return t, nil
}

func scanTenant(row pgx.Row) (service.Tenant, error) {
	var (
		t         service.Tenant
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&t.ID, &t.DisplayName, &status, &t.Namespace, &createdAt); err != nil {
		return service.Tenant{}, err
	}
	t.Status = service.StatusFromString(status)
	t.CreatedAt = createdAt
	return t, nil
}

var _ service.Repository = (*PostgresRepository)(nil)
