package provisioning

import (
	"context"
	"fmt"

	"github.com/conductor-saas/conductor/platform/go/metrics"
	"github.com/conductor-saas/conductor/platform/go/schema"
	"github.com/conductor-saas/conductor/platform/go/tenant"
)

// SchemaAuditor produces read-only structural audits of tenant namespaces.
// It never mutates state and never fails for structural mismatches; those
// are data in the report. Errors mean genuine infrastructure failures.
type SchemaAuditor struct {
	db Executor
}

func NewSchemaAuditor(db Executor) *SchemaAuditor {
	if db == nil {
		panic("schema auditor requires db")
	}
	return &SchemaAuditor{db: db}
}

// Validate audits the tenant namespace against the template registry.
// Schema state is read fresh on every call; nothing is cached, so a tenant
// mid-provisioning is reported exactly as the database sees it.
func (a *SchemaAuditor) Validate(ctx context.Context, tenantID string) (schema.ValidationReport, error) {
	ns, err := tenant.DeriveNamespace(tenantID)
	if err != nil {
		return schema.ValidationReport{}, err
	}

	byTable, err := namespaceColumns(ctx, a.db, ns)
	if err != nil {
		return schema.ValidationReport{}, err
	}

	actual := make(map[string][]string, len(byTable))
	for table, cols := range byTable {
		names := make([]string, 0, len(cols))
		for c := range cols {
			names = append(names, c)
		}
		actual[table] = names
	}

	report := schema.BuildValidationReport(ns, actual)

	result := "valid"
	if !report.IsValid {
		result = "invalid"
	}
	metrics.ValidationTotal.WithLabelValues(result).Inc()

	return report, nil
}

// ValidateHealth reports coarse object counts for the namespace against
// minimum thresholds derived from the registry.
func (a *SchemaAuditor) ValidateHealth(ctx context.Context, tenantID string) (schema.HealthReport, error) {
	ns, err := tenant.DeriveNamespace(tenantID)
	if err != nil {
		return schema.HealthReport{}, err
	}

	var tableCount int
	if err := a.db.QueryRow(ctx, `
		SELECT count(*) FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'`, ns).Scan(&tableCount); err != nil {
		return schema.HealthReport{}, fmt.Errorf("count tables: %w", err)
	}

	var indexCount int
	if err := a.db.QueryRow(ctx, `
		SELECT count(*) FROM pg_indexes WHERE schemaname = $1`, ns).Scan(&indexCount); err != nil {
		return schema.HealthReport{}, fmt.Errorf("count indexes: %w", err)
	}

	var constraintCount, fkCount int
	if err := a.db.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE constraint_type = 'FOREIGN KEY')
		FROM information_schema.table_constraints
		WHERE table_schema = $1`, ns).Scan(&constraintCount, &fkCount); err != nil {
		return schema.HealthReport{}, fmt.Errorf("count constraints: %w", err)
	}

	return schema.BuildHealthReport(ns, tableCount, indexCount, constraintCount, fkCount), nil
}
