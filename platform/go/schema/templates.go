package schema

// The canonical tenant-namespace template. This file is the single source of
// truth for what a provisioned tenant schema contains: every provisioning and
// validation code path reads these definitions through the registry accessors
// and no other table list may exist in the codebase (enforced by
// TestRegistryIsSingleSourceOfTruth).

// requiredTables lists every table a tenant namespace must contain, in
// provisioning order. Parent tables come before the tables referencing them.
var requiredTables = []Table{
	{
		Name: "customers",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "external_ref", Type: "text"},
			{Name: "full_name", Type: "text", NotNull: true},
			{Name: "email", Type: "text"},
			{Name: "phone", Type: "text"},
			{Name: "company", Type: "text"},
			{Name: "notes", Type: "text"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
			{Name: "updated_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "customers_email_idx", Columns: []string{"email"}},
		},
	},
	{
		Name: "locations",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "name", Type: "text", NotNull: true},
			{Name: "address_line1", Type: "text"},
			{Name: "address_line2", Type: "text"},
			{Name: "city", Type: "text"},
			{Name: "region", Type: "text"},
			{Name: "postal_code", Type: "text"},
			{Name: "country", Type: "text"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
	},
	{
		Name: "skills",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "name", Type: "text", NotNull: true},
			{Name: "description", Type: "text"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "skills_name_key", Columns: []string{"name"}, Unique: true},
		},
	},
	{
		Name: "certifications",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "name", Type: "text", NotNull: true},
			{Name: "issuing_body", Type: "text"},
			{Name: "skill_id", Type: "uuid"},
			{Name: "valid_months", Type: "integer"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
	},
	{
		Name: "price_lists",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "name", Type: "text", NotNull: true},
			{Name: "currency", Type: "text", NotNull: true, Default: "'USD'"},
			{Name: "valid_from", Type: "date"},
			{Name: "valid_to", Type: "date"},
			{Name: "is_default", Type: "boolean", NotNull: true, Default: "false"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "price_lists_name_idx", Columns: []string{"name"}},
		},
	},
	{
		Name: "price_list_items",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "price_list_id", Type: "uuid", NotNull: true},
			{Name: "sku", Type: "text", NotNull: true},
			{Name: "description", Type: "text"},
			{Name: "unit_price", Type: "numeric(12,2)", NotNull: true},
			{Name: "unit", Type: "text"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "price_list_items_list_idx", Columns: []string{"price_list_id"}},
		},
	},
	{
		Name: "ticket_categories",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "name", Type: "text", NotNull: true},
			{Name: "parent_id", Type: "uuid"},
			{Name: "sort_order", Type: "integer", NotNull: true, Default: "0"},
			{Name: "is_active", Type: "boolean", NotNull: true, Default: "true"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "ticket_categories_name_key", Columns: []string{"name"}, Unique: true},
		},
	},
	{
		Name: "tickets",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "ticket_number", Type: "bigint", NotNull: true},
			{Name: "customer_id", Type: "uuid"},
			{Name: "category_id", Type: "uuid"},
			{Name: "location_id", Type: "uuid"},
			{Name: "subject", Type: "text", NotNull: true},
			{Name: "description", Type: "text"},
			{Name: "status", Type: "text", NotNull: true, Default: "'open'"},
			{Name: "priority", Type: "text", NotNull: true, Default: "'normal'"},
			{Name: "assigned_to", Type: "uuid"},
			{Name: "due_at", Type: "timestamptz"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
			{Name: "updated_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "tickets_number_key", Columns: []string{"ticket_number"}, Unique: true},
			{Name: "tickets_status_idx", Columns: []string{"status"}},
			{Name: "tickets_customer_idx", Columns: []string{"customer_id"}},
		},
	},
	{
		Name: "ticket_messages",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "ticket_id", Type: "uuid", NotNull: true},
			{Name: "author_id", Type: "uuid"},
			{Name: "channel", Type: "text", NotNull: true, Default: "'web'"},
			{Name: "body", Type: "text", NotNull: true},
			{Name: "is_internal", Type: "boolean", NotNull: true, Default: "false"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "ticket_messages_ticket_idx", Columns: []string{"ticket_id"}},
		},
	},
	{
		Name: "ticket_attachments",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "ticket_id", Type: "uuid", NotNull: true},
			{Name: "message_id", Type: "uuid"},
			{Name: "file_name", Type: "text", NotNull: true},
			{Name: "content_type", Type: "text"},
			{Name: "storage_key", Type: "text", NotNull: true},
			{Name: "size_bytes", Type: "bigint"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "ticket_attachments_ticket_idx", Columns: []string{"ticket_id"}},
		},
	},
	{
		Name: "timecards",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "technician_id", Type: "uuid", NotNull: true},
			{Name: "ticket_id", Type: "uuid"},
			{Name: "work_date", Type: "date", NotNull: true},
			{Name: "started_at", Type: "timestamptz"},
			{Name: "ended_at", Type: "timestamptz"},
			{Name: "break_minutes", Type: "integer", NotNull: true, Default: "0"},
			{Name: "status", Type: "text", NotNull: true, Default: "'draft'"},
			{Name: "notes", Type: "text"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "timecards_technician_idx", Columns: []string{"technician_id", "work_date"}},
		},
	},
	{
		Name: "knowledge_base_articles",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "title", Type: "text", NotNull: true},
			{Name: "slug", Type: "text", NotNull: true},
			{Name: "body", Type: "text"},
			{Name: "tags", Type: "text[]"},
			{Name: "is_published", Type: "boolean", NotNull: true, Default: "false"},
			{Name: "author_id", Type: "uuid"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
			{Name: "updated_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "knowledge_base_articles_slug_key", Columns: []string{"slug"}, Unique: true},
		},
	},
	{
		Name: "approvals",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "subject_type", Type: "text", NotNull: true},
			{Name: "subject_id", Type: "uuid", NotNull: true},
			{Name: "requested_by", Type: "uuid", NotNull: true},
			{Name: "approver_id", Type: "uuid"},
			{Name: "status", Type: "text", NotNull: true, Default: "'pending'"},
			{Name: "decided_at", Type: "timestamptz"},
			{Name: "reason", Type: "text"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "approvals_status_idx", Columns: []string{"status"}},
		},
	},
	{
		Name: "chat_conversations",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "customer_id", Type: "uuid"},
			{Name: "channel", Type: "text", NotNull: true, Default: "'webchat'"},
			{Name: "status", Type: "text", NotNull: true, Default: "'open'"},
			{Name: "started_at", Type: "timestamptz", NotNull: true, Default: "now()"},
			{Name: "ended_at", Type: "timestamptz"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "chat_conversations_customer_idx", Columns: []string{"customer_id"}},
		},
	},
	{
		Name: "chat_messages",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "conversation_id", Type: "uuid", NotNull: true},
			{Name: "sender_type", Type: "text", NotNull: true},
			{Name: "sender_id", Type: "uuid"},
			{Name: "body", Type: "text", NotNull: true},
			{Name: "sent_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "chat_messages_conversation_idx", Columns: []string{"conversation_id"}},
		},
	},
	{
		Name: "omnibridge_channels",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "integration_key", Type: "text", NotNull: true},
			{Name: "display_name", Type: "text", NotNull: true},
			{Name: "config", Type: "jsonb", NotNull: true, Default: "'{}'::jsonb"},
			{Name: "is_enabled", Type: "boolean", NotNull: true, Default: "false"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "omnibridge_channels_key_key", Columns: []string{"integration_key"}, Unique: true},
		},
	},
	{
		Name: "omnibridge_messages",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "channel_id", Type: "uuid", NotNull: true},
			{Name: "external_id", Type: "text", NotNull: true},
			{Name: "direction", Type: "text", NotNull: true},
			{Name: "customer_id", Type: "uuid"},
			{Name: "ticket_id", Type: "uuid"},
			{Name: "payload", Type: "jsonb", NotNull: true, Default: "'{}'::jsonb"},
			{Name: "received_at", Type: "timestamptz", NotNull: true, Default: "now()"},
			{Name: "processed_at", Type: "timestamptz"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "omnibridge_messages_external_key", Columns: []string{"channel_id", "external_id"}, Unique: true},
			{Name: "omnibridge_messages_channel_idx", Columns: []string{"channel_id"}},
		},
	},
	{
		Name: "integrations",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "integration_key", Type: "text", NotNull: true},
			{Name: "display_name", Type: "text", NotNull: true},
			{Name: "category", Type: "text", NotNull: true},
			{Name: "config_schema", Type: "jsonb", NotNull: true, Default: "'{}'::jsonb"},
			{Name: "default_config", Type: "jsonb", NotNull: true, Default: "'{}'::jsonb"},
			{Name: "is_enabled", Type: "boolean", NotNull: true, Default: "false"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "integrations_key_key", Columns: []string{"integration_key"}, Unique: true},
		},
	},
	{
		Name: "signature_keys",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "key_name", Type: "text", NotNull: true},
			{Name: "public_key", Type: "text"},
			{Name: "algorithm", Type: "text", NotNull: true, Default: "'ed25519'"},
			{Name: "is_active", Type: "boolean", NotNull: true, Default: "false"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
			{Name: "rotated_at", Type: "timestamptz"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "signature_keys_name_key", Columns: []string{"key_name"}, Unique: true},
		},
	},
	{
		Name: "audit_logs",
		Columns: []Column{
			{Name: "id", Type: "uuid", NotNull: true, Default: "gen_random_uuid()"},
			{Name: "actor_id", Type: "uuid"},
			{Name: "action", Type: "text", NotNull: true},
			{Name: "subject_type", Type: "text"},
			{Name: "subject_id", Type: "uuid"},
			{Name: "detail", Type: "jsonb"},
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "audit_logs_created_idx", Columns: []string{"created_at"}},
			{Name: "audit_logs_actor_idx", Columns: []string{"actor_id"}},
		},
	},
}

// columnRenames records schema-evolution renames. AddMissingColumns applies a
// rename only when the old column still exists and the new one is absent;
// otherwise the entry is a no-op. Never expressed as add+drop.
var columnRenames = []Rename{
	{Table: "price_lists", Old: "effective_date", New: "valid_from"},
	{Table: "price_lists", Old: "expiry_date", New: "valid_to"},
}

// seedRows are inserted after table creation with ON CONFLICT DO NOTHING so
// repeated provisioning is safe. Conflict targets are the unique columns above.
var seedRows = []Seed{
	{
		Table:           "ticket_categories",
		Columns:         []string{"name", "sort_order"},
		ConflictColumns: []string{"name"},
		Rows: [][]any{
			{"General", 0},
			{"Billing", 10},
			{"Technical", 20},
			{"Complaint", 30},
		},
	},
	{
		Table:           "integrations",
		Columns:         []string{"integration_key", "display_name", "category", "config_schema", "default_config"},
		ConflictColumns: []string{"integration_key"},
		Rows: [][]any{
			{"email", "Email (IMAP/SMTP)", "messaging", emailConfigSchema, `{"poll_interval_seconds": 60, "folder": "INBOX"}`},
			{"sms", "SMS", "messaging", smsConfigSchema, `{"sender_id": ""}`},
			{"whatsapp", "WhatsApp Business", "messaging", whatsappConfigSchema, `{"business_account_id": ""}`},
			{"webchat", "Web Chat Widget", "messaging", webchatConfigSchema, `{"greeting": "How can we help?"}`},
		},
	},
	{
		Table:           "signature_keys",
		Columns:         []string{"key_name", "algorithm"},
		ConflictColumns: []string{"key_name"},
		Rows: [][]any{
			{"primary", "ed25519"},
		},
	},
}

// JSON Schemas for the integration catalog seed configs. Default configs are
// checked against these before seeding (see ConfigValidator).
const (
	emailConfigSchema = `{
		"type": "object",
		"properties": {
			"poll_interval_seconds": {"type": "integer", "minimum": 10},
			"folder": {"type": "string"}
		},
		"additionalProperties": true
	}`
	smsConfigSchema = `{
		"type": "object",
		"properties": {
			"sender_id": {"type": "string"}
		},
		"additionalProperties": true
	}`
	whatsappConfigSchema = `{
		"type": "object",
		"properties": {
			"business_account_id": {"type": "string"}
		},
		"additionalProperties": true
	}`
	webchatConfigSchema = `{
		"type": "object",
		"properties": {
			"greeting": {"type": "string"}
		},
		"additionalProperties": true
	}`
)
