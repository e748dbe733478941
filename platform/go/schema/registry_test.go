package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryIsSingleSourceOfTruth(t *testing.T) {
	t.Parallel()

	names := RequiredTables()
	require.Len(t, names, 20)

	// Every consumer-facing view of the registry must agree with the template
	// list, in the same provisioning order.
	tables := Tables()
	require.Len(t, tables, len(names))
	for i, tbl := range tables {
		require.Equal(t, names[i], tbl.Name)

		def, err := TableDefinition(tbl.Name)
		require.NoError(t, err)
		require.Equal(t, tbl.Name, def.Name)
		require.NotEmpty(t, def.Columns, "table %s has no columns", tbl.Name)
	}

	for _, r := range Renames() {
		_, err := TableDefinition(r.Table)
		require.NoError(t, err, "rename references unregistered table %s", r.Table)
	}
	for _, s := range Seeds() {
		_, err := TableDefinition(s.Table)
		require.NoError(t, err, "seed references unregistered table %s", s.Table)
	}
}

func TestRequiredTablesContainsCoreSet(t *testing.T) {
	t.Parallel()

	names := RequiredTables()
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	for _, want := range []string{
		"customers", "locations", "skills", "certifications",
		"price_lists", "price_list_items",
		"ticket_categories", "tickets", "ticket_messages", "ticket_attachments",
		"timecards", "knowledge_base_articles", "approvals",
		"chat_conversations", "chat_messages",
		"omnibridge_channels", "omnibridge_messages",
		"integrations", "signature_keys", "audit_logs",
	} {
		require.True(t, set[want], "missing required table %s", want)
	}
}

func TestTableDefinitionUnknownTable(t *testing.T) {
	t.Parallel()

	_, err := TableDefinition("no_such_table")
	var unknownErr *UnknownTableError
	require.ErrorAs(t, err, &unknownErr)
	require.Equal(t, "no_such_table", unknownErr.Name)
	require.Contains(t, unknownErr.Error(), "no_such_table")
}

func TestAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	first := RequiredTables()
	first[0] = "tampered"
	require.NotEqual(t, "tampered", RequiredTables()[0])

	tables := Tables()
	tables[0].Name = "tampered"
	require.NotEqual(t, "tampered", Tables()[0].Name)
}

func TestRenamesCoverPriceListDateColumns(t *testing.T) {
	t.Parallel()

	renames := Renames()
	byOld := make(map[string]Rename, len(renames))
	for _, r := range renames {
		byOld[r.Table+"."+r.Old] = r
	}

	r, ok := byOld["price_lists.effective_date"]
	require.True(t, ok)
	require.Equal(t, "valid_from", r.New)

	r, ok = byOld["price_lists.expiry_date"]
	require.True(t, ok)
	require.Equal(t, "valid_to", r.New)

	// Rename targets must be real template columns so a freshly provisioned
	// namespace never needs the rename path.
	for _, r := range renames {
		def, err := TableDefinition(r.Table)
		require.NoError(t, err)
		found := false
		for _, c := range def.Columns {
			require.NotEqual(t, r.Old, c.Name, "template still carries old column %s.%s", r.Table, r.Old)
			if c.Name == r.New {
				found = true
			}
		}
		require.True(t, found, "rename target %s.%s not in template", r.Table, r.New)
	}
}

func TestSeedColumnsMatchTemplates(t *testing.T) {
	t.Parallel()

	for _, s := range Seeds() {
		def, err := TableDefinition(s.Table)
		require.NoError(t, err)

		cols := make(map[string]bool, len(def.Columns))
		for _, c := range def.Columns {
			cols[c.Name] = true
		}
		for _, c := range s.Columns {
			require.True(t, cols[c], "seed column %s.%s not in template", s.Table, c)
		}
		for _, c := range s.ConflictColumns {
			require.True(t, cols[c], "conflict column %s.%s not in template", s.Table, c)
		}
		for _, row := range s.Rows {
			require.Len(t, row, len(s.Columns), "seed row arity mismatch for %s", s.Table)
		}
	}
}
