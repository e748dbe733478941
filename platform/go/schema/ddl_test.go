package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateSchemaSQL(t *testing.T) {
	t.Parallel()

	sql := CreateSchemaSQL("tenant_abc")
	require.Equal(t, `CREATE SCHEMA IF NOT EXISTS "tenant_abc"`, sql)
}

func TestCreateSchemaSQLQuotesHostileInput(t *testing.T) {
	t.Parallel()

	// The derivation layer never produces this, but quoting must hold anyway.
	sql := CreateSchemaSQL(`x"; DROP SCHEMA public; --`)
	require.Equal(t, `CREATE SCHEMA IF NOT EXISTS "x""; DROP SCHEMA public; --"`, sql)
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	tbl := Table{
		Name: "widgets",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "label", Type: "text"},
		},
		PrimaryKey: []string{"id"},
	}

	sql := CreateTableSQL("tenant_abc", tbl)
	require.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "tenant_abc"."widgets"`)
	require.Contains(t, sql, `"id" uuid NOT NULL DEFAULT gen_random_uuid()`)
	require.Contains(t, sql, `"label" text`)
	require.Contains(t, sql, `PRIMARY KEY ("id")`)
}

func TestCreateIndexSQL(t *testing.T) {
	t.Parallel()

	tbl := Table{Name: "widgets"}

	sql := CreateIndexSQL("tenant_abc", tbl, Index{Name: "widgets_label_idx", Columns: []string{"label"}})
	require.Equal(t, `CREATE INDEX IF NOT EXISTS "widgets_label_idx" ON "tenant_abc"."widgets" ("label")`, sql)

	unique := CreateIndexSQL("tenant_abc", tbl, Index{Name: "widgets_label_key", Columns: []string{"label"}, Unique: true})
	require.True(t, strings.HasPrefix(unique, "CREATE UNIQUE INDEX IF NOT EXISTS"))
}

func TestAddColumnSQL(t *testing.T) {
	t.Parallel()

	sql := AddColumnSQL("tenant_abc", "widgets", Column{Name: "valid_from", Type: "date"})
	require.Equal(t, `ALTER TABLE "tenant_abc"."widgets" ADD COLUMN IF NOT EXISTS "valid_from" date`, sql)
}

func TestRenameColumnSQL(t *testing.T) {
	t.Parallel()

	sql := RenameColumnSQL("tenant_abc", Rename{Table: "price_lists", Old: "effective_date", New: "valid_from"})
	require.Equal(t, `ALTER TABLE "tenant_abc"."price_lists" RENAME COLUMN "effective_date" TO "valid_from"`, sql)
}

func TestSeedInsertSQL(t *testing.T) {
	t.Parallel()

	seed := Seed{
		Table:           "ticket_categories",
		Columns:         []string{"key", "label"},
		ConflictColumns: []string{"key"},
	}
	row := []any{"general", "General"}

	sql, args := SeedInsertSQL("tenant_abc", seed, row)
	require.Equal(t, `INSERT INTO "tenant_abc"."ticket_categories" ("key", "label") VALUES ($1, $2) ON CONFLICT ("key") DO NOTHING`, sql)
	require.Equal(t, row, args)
}

func TestAllTemplateDDLIsIdempotent(t *testing.T) {
	t.Parallel()

	ns := "tenant_11111111_1111_1111_1111_111111111111"
	for _, tbl := range Tables() {
		require.Contains(t, CreateTableSQL(ns, tbl), "IF NOT EXISTS")
		for _, idx := range tbl.Indexes {
			require.Contains(t, CreateIndexSQL(ns, tbl, idx), "IF NOT EXISTS")
		}
	}
	for _, s := range Seeds() {
		for _, row := range s.Rows {
			sql, _ := SeedInsertSQL(ns, s, row)
			require.Contains(t, sql, "ON CONFLICT")
			require.Contains(t, sql, "DO NOTHING")
		}
	}
}
