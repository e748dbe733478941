package tenantcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/conductor-saas/conductor/domains/tenants/be/provisioning"
	tenantsrepo "github.com/conductor-saas/conductor/domains/tenants/be/repo"
	tenantsservice "github.com/conductor-saas/conductor/domains/tenants/be/service"
	"github.com/conductor-saas/conductor/platform/go/logging"
	"github.com/conductor-saas/conductor/platform/go/persistence"
	"github.com/conductor-saas/conductor/platform/go/schema"
)

// Command groups tenant-related helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Tenant utilities (create/provision/validate/sync-columns)",
	}

	cmd.AddCommand(createCommand())
	cmd.AddCommand(provisionCommand())
	cmd.AddCommand(validateCommand())
	cmd.AddCommand(syncColumnsCommand())
	return cmd
}

// connFlags are the flags every tenant subcommand needs to reach the registry.
type connFlags struct {
	databaseURL string
	adminSchema string
	envKey      string
}

func (f *connFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.databaseURL, "database-url", "", "PostgreSQL connection string")
	c.Flags().StringVar(&f.adminSchema, "admin-schema", "conductor_admin", "Admin schema name for tenant registry")
	c.Flags().StringVar(&f.envKey, "env-key", "dev", "Environment key prefix (e.g. dev, stg, prod)")
	_ = c.MarkFlagRequired("database-url")
}

// buildService wires a tenant service backed by the CLI flags. Storage
// provisioning is a no-op here; run the API server for real storage wiring.
func (f *connFlags) buildService(ctx context.Context) (*tenantsservice.Service, *pgxpool.Pool, error) {
	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: f.databaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("init pool: %w", err)
	}

	logger, err := logging.NewLogger(logging.Config{Component: "cli", Level: "warn"})
	if err != nil {
		persistence.ClosePool(pool)
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	repo := tenantsrepo.NewPostgresRepository(pool, f.adminSchema)
	prov := provisioning.NewSchemaProvisioner(pool, logger)
	auditor := provisioning.NewSchemaAuditor(pool)
	svc := tenantsservice.New(repo, prov, auditor, readyStorageProvisioner{}, f.envKey)
	return svc, pool, nil
}

func createCommand() *cobra.Command {
	var (
		flags       connFlags
		displayName string
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Register a tenant and derive its namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			svc, pool, err := flags.buildService(ctx)
			if err != nil {
				return err
			}
			defer persistence.ClosePool(pool)

			t, err := svc.Create(ctx, tenantsservice.CreateInput{DisplayName: strPtrOrNil(displayName)})
			if err != nil {
				return fmt.Errorf("create tenant: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tenant created: %s namespace=%s\n", t.ID, t.Namespace)
			return nil
		},
	}

	flags.register(c)
	c.Flags().StringVar(&displayName, "display-name", "", "Display name for the tenant")

	return c
}

func provisionCommand() *cobra.Command {
	var flags connFlags

	c := &cobra.Command{
		Use:   "provision <tenant-id>",
		Short: "Provision the tenant namespace (idempotent; fills gaps on rerun)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid tenant id %q: %w", args[0], err)
			}

			svc, pool, err := flags.buildService(ctx)
			if err != nil {
				return err
			}
			defer persistence.ClosePool(pool)

			out, err := svc.Provision(ctx, id)
			if err != nil {
				return fmt.Errorf("provision tenant: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Provisioned %s: tables=%d indexes=%d seeds=%d warnings=%d\n",
				out.Result.Namespace, out.Result.TablesCreated, out.Result.IndexesCreated,
				out.Result.SeedRowsInserted, len(out.Result.Warnings))
			for _, w := range out.Result.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "  warning: step=%s table=%s %s\n", w.Step, w.Table, w.Detail)
			}
			return nil
		},
	}

	flags.register(c)
	return c
}

func validateCommand() *cobra.Command {
	var (
		flags      connFlags
		jsonOutput bool
	)

	c := &cobra.Command{
		Use:   "validate <tenant-id>",
		Short: "Audit a tenant namespace against the canonical table set",
		Long:  "Audit a tenant namespace against the canonical table set. Exits non-zero when the namespace is incomplete.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid tenant id %q: %w", args[0], err)
			}

			svc, pool, err := flags.buildService(ctx)
			if err != nil {
				return err
			}
			defer persistence.ClosePool(pool)

			report, err := svc.Validate(ctx, id)
			if err != nil {
				return fmt.Errorf("validate tenant: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(cmd, report)
			}

			if !report.IsValid {
				return fmt.Errorf("namespace %s incomplete: %.1f%% of required tables present", report.Namespace, report.CompletenessPercent)
			}
			return nil
		},
	}

	flags.register(c)
	c.Flags().BoolVar(&jsonOutput, "json", false, "Emit the validation report as JSON")

	return c
}

func syncColumnsCommand() *cobra.Command {
	var flags connFlags

	c := &cobra.Command{
		Use:   "sync-columns <tenant-id>",
		Short: "Apply column renames and add missing columns to existing tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid tenant id %q: %w", args[0], err)
			}

			svc, pool, err := flags.buildService(ctx)
			if err != nil {
				return err
			}
			defer persistence.ClosePool(pool)

			result, err := svc.SyncColumns(ctx, id)
			if err != nil {
				return fmt.Errorf("sync columns: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Columns synced for %s: renamed=%d added=%d\n",
				result.Namespace, len(result.RenamedColumns), len(result.AddedColumns))
			for _, r := range result.RenamedColumns {
				fmt.Fprintf(cmd.OutOrStdout(), "  renamed: %s\n", r)
			}
			for _, a := range result.AddedColumns {
				fmt.Fprintf(cmd.OutOrStdout(), "  added: %s\n", a)
			}
			return nil
		},
	}

	flags.register(c)
	return c
}

func printReport(cmd *cobra.Command, report schema.ValidationReport) {
	fmt.Fprintf(cmd.OutOrStdout(), "Namespace: %s\n", report.Namespace)
	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %t (%.1f%% complete)\n", report.IsValid, report.CompletenessPercent)
	for _, t := range report.MissingTables {
		fmt.Fprintf(cmd.OutOrStdout(), "  missing table: %s\n", t)
	}
	for _, t := range report.ExtraTables {
		fmt.Fprintf(cmd.OutOrStdout(), "  extra table: %s\n", t)
	}
	for _, d := range report.ColumnDiffs {
		fmt.Fprintf(cmd.OutOrStdout(), "  table %s missing columns: %s\n", d.Table, strings.Join(d.MissingColumns, ", "))
	}
}

func strPtrOrNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// readyStorageProvisioner marks storage ready without external calls (CLI only).
type readyStorageProvisioner struct{}

func (readyStorageProvisioner) Ensure(context.Context, string) (provisioning.StorageProvisionResult, error) {
	return provisioning.StorageProvisionResult{Ready: true}, nil
}

func (readyStorageProvisioner) Check(context.Context, string) (provisioning.StorageProvisionResult, error) {
	return provisioning.StorageProvisionResult{Ready: true}, nil
}

var _ provisioning.StorageProvisioner = readyStorageProvisioner{}
