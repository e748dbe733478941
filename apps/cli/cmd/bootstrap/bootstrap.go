package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conductor-saas/conductor/platform/go/persistence"
)

// Command groups bootstrap helpers (admin schema init, future seed steps).
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Bootstrap platform resources (admin schema, tenant registry table)",
	}

	cmd.AddCommand(adminCommand())
	return cmd
}

func adminCommand() *cobra.Command {
	var (
		databaseURL string
		adminSchema string
	)

	c := &cobra.Command{
		Use:   "admin",
		Short: "Create the admin schema and tenant registry table (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if strings.TrimSpace(adminSchema) == "" {
				return fmt.Errorf("admin schema is required")
			}

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			if err := persistence.BootstrapAdminSchema(ctx, pool, adminSchema); err != nil {
				return fmt.Errorf("bootstrap admin schema: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Bootstrap complete. Admin schema: %s\n", adminSchema)
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	c.Flags().StringVar(&adminSchema, "admin-schema", "conductor_admin", "Admin schema name for tenant registry")

	_ = c.MarkFlagRequired("database-url")

	return c
}
