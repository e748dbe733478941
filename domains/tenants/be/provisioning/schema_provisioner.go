package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/conductor-saas/conductor/platform/go/metrics"
	"github.com/conductor-saas/conductor/platform/go/schema"
	"github.com/conductor-saas/conductor/platform/go/tenant"
)

// ErrNamespaceCreation reports a failure creating the namespace itself.
// Fatal for the provisioning attempt; safe to retry because every statement
// the provisioner issues is idempotent.
var ErrNamespaceCreation = errors.New("namespace creation failed")

// Warning records a non-fatal provisioning step failure. Returned to the
// caller so ops tooling can alert without blocking tenant onboarding.
type Warning struct {
	Step   string `json:"step"` // table | index | seed | storage
	Table  string `json:"table"`
	Detail string `json:"detail"`
}

// ProvisionResult summarizes one provisioning call.
type ProvisionResult struct {
	Namespace        string    `json:"namespace"`
	TablesCreated    int       `json:"tablesCreated"`
	IndexesCreated   int       `json:"indexesCreated"`
	SeedRowsInserted int       `json:"seedRowsInserted"`
	Warnings         []Warning `json:"warnings"`
}

// ColumnsAddedResult summarizes an AddMissingColumns call.
type ColumnsAddedResult struct {
	Namespace      string   `json:"namespace"`
	RenamedColumns []string `json:"renamedColumns"` // "table.old -> table.new"
	AddedColumns   []string `json:"addedColumns"`   // "table.column"
}

// SchemaProvisioner materializes tenant namespaces from the template
// registry. All DDL/DML it issues is if-not-exists / on-conflict-do-nothing,
// so concurrent or repeated calls for the same tenant converge without
// coordination; a call interrupted mid-sequence leaves a resumable partial
// state that the next call completes. No advisory lock is taken.
type SchemaProvisioner struct {
	db        Executor
	logger    *zap.Logger
	validator *schema.ConfigValidator
}

func NewSchemaProvisioner(db Executor, logger *zap.Logger) *SchemaProvisioner {
	if db == nil {
		panic("schema provisioner requires db")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaProvisioner{
		db:        db,
		logger:    logger,
		validator: schema.NewConfigValidator(),
	}
}

// Provision creates the tenant namespace and fills it with every registry
// table, index and seed row. Namespace creation failure aborts; any later
// step failure is collected as a warning and provisioning continues.
func (p *SchemaProvisioner) Provision(ctx context.Context, tenantID string) (ProvisionResult, error) {
	start := time.Now()

	ns, err := tenant.DeriveNamespace(tenantID)
	if err != nil {
		return ProvisionResult{}, err
	}

	// A broken integration catalog is a code defect; refuse to seed it.
	if err := p.validator.ValidateSeeds(); err != nil {
		return ProvisionResult{}, fmt.Errorf("integration seed catalog: %w", err)
	}

	result := ProvisionResult{Namespace: ns, Warnings: []Warning{}}

	if _, err := p.db.Exec(ctx, schema.CreateSchemaSQL(ns)); err != nil {
		metrics.ProvisionTotal.WithLabelValues("failed").Inc()
		return ProvisionResult{}, fmt.Errorf("%w: %s: %v", ErrNamespaceCreation, ns, err)
	}

	// Tables, then indexes, then seeds: later steps depend on earlier ones.
	created := make(map[string]bool, len(schema.RequiredTables()))
	for _, table := range schema.Tables() {
		if _, err := p.db.Exec(ctx, schema.CreateTableSQL(ns, table)); err != nil {
			p.warn(&result, "table", table.Name, err)
			continue
		}
		created[table.Name] = true
		result.TablesCreated++
	}

	for _, table := range schema.Tables() {
		if !created[table.Name] {
			continue
		}
		for _, idx := range table.Indexes {
			if _, err := p.db.Exec(ctx, schema.CreateIndexSQL(ns, table, idx)); err != nil {
				p.warn(&result, "index", table.Name, err)
				continue
			}
			result.IndexesCreated++
		}
	}

	for _, seed := range schema.Seeds() {
		if !created[seed.Table] {
			continue
		}
		for _, row := range seed.Rows {
			sql, args := schema.SeedInsertSQL(ns, seed, row)
			tag, err := p.db.Exec(ctx, sql, args...)
			if err != nil {
				p.warn(&result, "seed", seed.Table, err)
				continue
			}
			result.SeedRowsInserted += int(tag.RowsAffected())
		}
	}

	outcome := "ok"
	if len(result.Warnings) > 0 {
		outcome = "partial"
	}
	metrics.ProvisionTotal.WithLabelValues(outcome).Inc()
	metrics.ProvisionDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("tenant namespace provisioned",
		zap.String("namespace", ns),
		zap.Int("tables", result.TablesCreated),
		zap.Int("seed_rows", result.SeedRowsInserted),
		zap.Int("warnings", len(result.Warnings)),
	)

	return result, nil
}

// AddMissingColumns diffs an existing namespace against the registry and
// brings its columns up to date. Registered renames are applied first, and
// only when the old column still exists and the new one is absent; remaining
// gaps get ADD COLUMN IF NOT EXISTS. Tables missing entirely are left to
// Provision.
func (p *SchemaProvisioner) AddMissingColumns(ctx context.Context, tenantID string) (ColumnsAddedResult, error) {
	ns, err := tenant.DeriveNamespace(tenantID)
	if err != nil {
		return ColumnsAddedResult{}, err
	}

	actual, err := namespaceColumns(ctx, p.db, ns)
	if err != nil {
		return ColumnsAddedResult{}, err
	}

	result := ColumnsAddedResult{
		Namespace:      ns,
		RenamedColumns: []string{},
		AddedColumns:   []string{},
	}

	for _, r := range schema.Renames() {
		cols, ok := actual[r.Table]
		if !ok {
			continue
		}
		if !cols[r.Old] || cols[r.New] {
			continue
		}
		if _, err := p.db.Exec(ctx, schema.RenameColumnSQL(ns, r)); err != nil {
			return result, fmt.Errorf("rename %s.%s: %w", r.Table, r.Old, err)
		}
		delete(cols, r.Old)
		cols[r.New] = true
		result.RenamedColumns = append(result.RenamedColumns, fmt.Sprintf("%s.%s -> %s.%s", r.Table, r.Old, r.Table, r.New))
	}

	for _, table := range schema.Tables() {
		cols, ok := actual[table.Name]
		if !ok {
			continue
		}
		for _, c := range table.Columns {
			if cols[c.Name] {
				continue
			}
			if _, err := p.db.Exec(ctx, schema.AddColumnSQL(ns, table.Name, c)); err != nil {
				return result, fmt.Errorf("add column %s.%s: %w", table.Name, c.Name, err)
			}
			cols[c.Name] = true
			result.AddedColumns = append(result.AddedColumns, table.Name+"."+c.Name)
		}
	}

	p.logger.Info("tenant namespace columns synced",
		zap.String("namespace", ns),
		zap.Int("renamed", len(result.RenamedColumns)),
		zap.Int("added", len(result.AddedColumns)),
	)

	return result, nil
}

func (p *SchemaProvisioner) warn(result *ProvisionResult, step, table string, err error) {
	result.Warnings = append(result.Warnings, Warning{Step: step, Table: table, Detail: err.Error()})
	metrics.ProvisionWarnings.WithLabelValues(step).Inc()
	p.logger.Warn("provisioning step failed",
		zap.String("namespace", result.Namespace),
		zap.String("step", step),
		zap.String("table", table),
		zap.Error(err),
	)
}

// namespaceColumns returns table -> set of column names for base tables in ns.
func namespaceColumns(ctx context.Context, db Executor, ns string) (map[string]map[string]bool, error) {
	out := make(map[string]map[string]bool)

	rows, err := db.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'`, ns)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		out[name] = make(map[string]bool)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	colRows, err := db.Query(ctx, `
		SELECT table_name, column_name FROM information_schema.columns
		WHERE table_schema = $1`, ns)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer colRows.Close()
	for colRows.Next() {
		var table, col string
		if err := colRows.Scan(&table, &col); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		if _, ok := out[table]; ok {
			out[table][col] = true
		}
	}
	if err := colRows.Err(); err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}

	return out, nil
}
