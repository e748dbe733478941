package schema

import (
	"fmt"
	"sort"
)

// ColumnDiff reports per-table column drift between the template and a
// provisioned namespace.
type ColumnDiff struct {
	Table          string   `json:"table"`
	MissingColumns []string `json:"missingColumns,omitempty"`
	ExtraColumns   []string `json:"extraColumns,omitempty"`
}

// ValidationReport is the result of a structural audit of one namespace.
// Mismatches are data, not errors: extra tables are reported but never fail
// validation, so tenant-specific extensions stay forward-compatible.
type ValidationReport struct {
	Namespace           string       `json:"namespace"`
	IsValid             bool         `json:"isValid"`
	MissingTables       []string     `json:"missingTables"`
	ExtraTables         []string     `json:"extraTables"`
	CompletenessPercent float64      `json:"completenessPercent"`
	ColumnDiffs         []ColumnDiff `json:"columnDiffs,omitempty"`
}

// BuildValidationReport diffs the observed namespace contents (table name to
// present column names) against the registry. Pure function; the auditor
// feeds it rows from information_schema.
func BuildValidationReport(namespace string, actual map[string][]string) ValidationReport {
	report := ValidationReport{
		Namespace:     namespace,
		MissingTables: []string{},
		ExtraTables:   []string{},
	}

	found := 0
	for _, t := range requiredTables {
		cols, ok := actual[t.Name]
		if !ok {
			report.MissingTables = append(report.MissingTables, t.Name)
			continue
		}
		found++

		present := make(map[string]bool, len(cols))
		for _, c := range cols {
			present[c] = true
		}

		diff := ColumnDiff{Table: t.Name}
		expected := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			expected[c.Name] = true
			if !present[c.Name] {
				diff.MissingColumns = append(diff.MissingColumns, c.Name)
			}
		}
		for _, c := range cols {
			if !expected[c] {
				diff.ExtraColumns = append(diff.ExtraColumns, c)
			}
		}
		sort.Strings(diff.ExtraColumns)
		if len(diff.MissingColumns) > 0 || len(diff.ExtraColumns) > 0 {
			report.ColumnDiffs = append(report.ColumnDiffs, diff)
		}
	}

	known := tablesByName
	for name := range actual {
		if _, ok := known[name]; !ok {
			report.ExtraTables = append(report.ExtraTables, name)
		}
	}
	sort.Strings(report.ExtraTables)

	total := len(requiredTables)
	report.CompletenessPercent = float64(found) / float64(total) * 100
	report.IsValid = len(report.MissingTables) == 0
	return report
}

// HealthReport is a coarse operational diagnostic for one namespace.
// Issues are descriptive strings, not structured errors; this is not a
// correctness gate.
type HealthReport struct {
	Namespace       string   `json:"namespace"`
	TableCount      int      `json:"tableCount"`
	IndexCount      int      `json:"indexCount"`
	ConstraintCount int      `json:"constraintCount"`
	ForeignKeyCount int      `json:"foreignKeyCount"`
	IsHealthy       bool     `json:"isHealthy"`
	Issues          []string `json:"issues"`
}

// BuildHealthReport checks observed counts against minimums derived from the
// registry: every required table, every template index, and one primary-key
// constraint per table that declares one.
func BuildHealthReport(namespace string, tableCount, indexCount, constraintCount, fkCount int) HealthReport {
	minTables := len(requiredTables)
	minIndexes := 0
	minConstraints := 0
	for _, t := range requiredTables {
		minIndexes += len(t.Indexes)
		if len(t.PrimaryKey) > 0 {
			minConstraints++
		}
	}

	report := HealthReport{
		Namespace:       namespace,
		TableCount:      tableCount,
		IndexCount:      indexCount,
		ConstraintCount: constraintCount,
		ForeignKeyCount: fkCount,
		Issues:          []string{},
	}

	if tableCount < minTables {
		report.Issues = append(report.Issues, fmt.Sprintf("expected at least %d tables, found %d", minTables, tableCount))
	}
	if indexCount < minIndexes {
		report.Issues = append(report.Issues, fmt.Sprintf("expected at least %d indexes, found %d", minIndexes, indexCount))
	}
	if constraintCount < minConstraints {
		report.Issues = append(report.Issues, fmt.Sprintf("expected at least %d constraints, found %d", minConstraints, constraintCount))
	}

	report.IsHealthy = len(report.Issues) == 0
	return report
}
