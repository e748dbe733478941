package schema

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// DDL rendering for template tables. Every identifier is quoted through
// pgx.Identifier; callers must pass a namespace derived from a validated
// tenant UUID. This is the only place namespace-qualified DDL strings are
// assembled — ad-hoc interpolation elsewhere is a review error.

// CreateSchemaSQL returns the idempotent namespace-creation statement.
func CreateSchemaSQL(namespace string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{namespace}.Sanitize()
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for a template table in
// the given namespace.
func CreateTableSQL(namespace string, t Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{namespace, t.Name}.Sanitize())
	b.WriteString(" (\n")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("\t")
		b.WriteString(columnDDL(c))
	}
	if len(t.PrimaryKey) > 0 {
		b.WriteString(",\n\tPRIMARY KEY (")
		for i, col := range t.PrimaryKey {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(pgx.Identifier{col}.Sanitize())
		}
		b.WriteString(")")
	}
	b.WriteString("\n)")
	return b.String()
}

// CreateIndexSQL renders CREATE [UNIQUE] INDEX IF NOT EXISTS for one index.
// Index names are namespace-local in PostgreSQL, so only the table is qualified.
func CreateIndexSQL(namespace string, t Table, idx Index) string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if idx.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{idx.Name}.Sanitize())
	b.WriteString(" ON ")
	b.WriteString(pgx.Identifier{namespace, t.Name}.Sanitize())
	b.WriteString(" (")
	for i, col := range idx.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{col}.Sanitize())
	}
	b.WriteString(")")
	return b.String()
}

// AddColumnSQL renders ALTER TABLE ... ADD COLUMN IF NOT EXISTS for one column.
func AddColumnSQL(namespace, table string, c Column) string {
	return "ALTER TABLE " + pgx.Identifier{namespace, table}.Sanitize() +
		" ADD COLUMN IF NOT EXISTS " + columnDDL(c)
}

// RenameColumnSQL renders ALTER TABLE ... RENAME COLUMN old TO new.
// Callers must have verified that old exists and new does not.
func RenameColumnSQL(namespace string, r Rename) string {
	return "ALTER TABLE " + pgx.Identifier{namespace, r.Table}.Sanitize() +
		" RENAME COLUMN " + pgx.Identifier{r.Old}.Sanitize() +
		" TO " + pgx.Identifier{r.New}.Sanitize()
}

// SeedInsertSQL renders one ON CONFLICT DO NOTHING insert per seed row and
// returns the statement plus its positional arguments.
func SeedInsertSQL(namespace string, s Seed, row []any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgx.Identifier{namespace, s.Table}.Sanitize())
	b.WriteString(" (")
	for i, col := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{col}.Sanitize())
	}
	b.WriteString(") VALUES (")
	for i := range row {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", i+1)
	}
	b.WriteString(") ON CONFLICT (")
	for i, col := range s.ConflictColumns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{col}.Sanitize())
	}
	b.WriteString(") DO NOTHING")
	return b.String(), row
}

func columnDDL(c Column) string {
	var b strings.Builder
	b.WriteString(pgx.Identifier{c.Name}.Sanitize())
	b.WriteString(" ")
	b.WriteString(c.Type)
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	return b.String()
}
