// Package schema holds the canonical tenant-namespace template registry:
// table definitions, indexes, seed rows and column-rename history. The
// registry is static, read-only and shared by the provisioner and the
// validator so both always agree on what a complete tenant schema is.
package schema

import "fmt"

// Column describes one column of a template table.
type Column struct {
	Name    string
	Type    string
	NotNull bool
	Default string // raw SQL expression, empty for none
}

// Index describes a secondary index on a template table.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table is a registered table template.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
	Indexes    []Index
}

// Rename is an explicit column rename in the template history.
type Rename struct {
	Table string
	Old   string
	New   string
}

// Seed is a set of default rows inserted on provisioning, guarded by
// ON CONFLICT DO NOTHING on ConflictColumns.
type Seed struct {
	Table           string
	Columns         []string
	ConflictColumns []string
	Rows            [][]any
}

// UnknownTableError reports a reference to a table that is not registered.
// It indicates a programmer error, not a runtime condition to recover from.
type UnknownTableError struct {
	Name string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("schema: unknown table %q", e.Name)
}

var tablesByName = func() map[string]Table {
	m := make(map[string]Table, len(requiredTables))
	for _, t := range requiredTables {
		if _, dup := m[t.Name]; dup {
			panic("schema: duplicate table template " + t.Name)
		}
		m[t.Name] = t
	}
	return m
}()

// RequiredTables returns the names of every table a tenant namespace must
// contain, in provisioning order. The returned slice is a copy.
func RequiredTables() []string {
	names := make([]string, len(requiredTables))
	for i, t := range requiredTables {
		names[i] = t.Name
	}
	return names
}

// Tables returns the full template list in provisioning order.
func Tables() []Table {
	out := make([]Table, len(requiredTables))
	copy(out, requiredTables)
	return out
}

// TableDefinition returns the template for name, or *UnknownTableError.
func TableDefinition(name string) (Table, error) {
	t, ok := tablesByName[name]
	if !ok {
		return Table{}, &UnknownTableError{Name: name}
	}
	return t, nil
}

// Renames returns the column-rename history in application order.
func Renames() []Rename {
	out := make([]Rename, len(columnRenames))
	copy(out, columnRenames)
	return out
}

// Seeds returns the default seed row sets.
func Seeds() []Seed {
	out := make([]Seed, len(seedRows))
	copy(out, seedRows)
	return out
}
