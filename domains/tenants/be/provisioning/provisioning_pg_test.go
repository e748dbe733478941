package provisioning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/conductor-saas/conductor/platform/go/persistence"
	"github.com/conductor-saas/conductor/platform/go/tenant"
)

func TestProvisioningIntegration(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping provisioning integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("conductor"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(2*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: connString})
	require.NoError(t, err)
	t.Cleanup(func() {
		persistence.ClosePool(pool)
	})

	provisioner := NewSchemaProvisioner(pool, nil)
	auditor := NewSchemaAuditor(pool)

	tenantID := uuid.New().String()
	ns, err := tenant.DeriveNamespace(tenantID)
	require.NoError(t, err)

	// First run materializes everything.
	first, err := provisioner.Provision(ctx, tenantID)
	require.NoError(t, err)
	require.Equal(t, ns, first.Namespace)
	require.Empty(t, first.Warnings)
	require.Greater(t, first.TablesCreated, 0)
	require.Greater(t, first.SeedRowsInserted, 0)

	report, err := auditor.Validate(ctx, tenantID)
	require.NoError(t, err)
	require.True(t, report.IsValid)
	require.InDelta(t, 100.0, report.CompletenessPercent, 0.0001)
	require.Empty(t, report.ColumnDiffs)

	// Second run must converge without duplicating seeds.
	second, err := provisioner.Provision(ctx, tenantID)
	require.NoError(t, err)
	require.Empty(t, second.Warnings)
	require.Zero(t, second.SeedRowsInserted)

	var categoryCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM `+ns+`.ticket_categories`).Scan(&categoryCount))
	require.Equal(t, 4, categoryCount)

	health, err := auditor.ValidateHealth(ctx, tenantID)
	require.NoError(t, err)
	require.True(t, health.IsHealthy, "issues: %v", health.Issues)

	// Simulate the legacy layout: price_lists with effective_date instead of
	// valid_from, then run the column sync.
	_, err = pool.Exec(ctx, `ALTER TABLE `+ns+`.price_lists DROP COLUMN valid_from`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `ALTER TABLE `+ns+`.price_lists ADD COLUMN effective_date date`)
	require.NoError(t, err)

	synced, err := provisioner.AddMissingColumns(ctx, tenantID)
	require.NoError(t, err)
	require.Contains(t, synced.RenamedColumns, "price_lists.effective_date -> price_lists.valid_from")

	var hasOld, hasNew bool
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM information_schema.columns WHERE table_schema = $1 AND table_name = 'price_lists' AND column_name = 'effective_date'),
			EXISTS (SELECT 1 FROM information_schema.columns WHERE table_schema = $1 AND table_name = 'price_lists' AND column_name = 'valid_from')`,
		ns).Scan(&hasOld, &hasNew))
	require.False(t, hasOld)
	require.True(t, hasNew)

	// Rerunning the sync is a no-op; the data survives in the renamed column.
	again, err := provisioner.AddMissingColumns(ctx, tenantID)
	require.NoError(t, err)
	require.Empty(t, again.RenamedColumns)
	require.Empty(t, again.AddedColumns)
}
