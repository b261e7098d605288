package catalog

import "github.com/growyourneed/platform/internal/schema"

// FeatureFlags are read by every client; only superusers toggle them.
var FeatureFlags = schema.Definition{
	Name: "feature_flags",
	Fields: []schema.Field{
		{Name: "key", Type: schema.FieldText, Required: true, Unique: true, Constraints: schema.Constraints{
			MaxLength: 64,
			Pattern:   `^[a-z0-9_.]+$`,
		}},
		{Name: "description", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 500}},
		{Name: "enabled", Type: schema.FieldBool},
		{Name: "rollout", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0), Max: schema.Float(100), OnlyInt: true}},
		{Name: "tenants", Type: schema.FieldJSON},
	},
	Rules: schema.Rules{
		List: schema.Rule(""),
		View: schema.Rule(""),
	},
}

// SystemHealth holds the latest status per platform service.
var SystemHealth = schema.Definition{
	Name: "system_health",
	Fields: []schema.Field{
		{Name: "service", Type: schema.FieldText, Required: true, Unique: true, Constraints: schema.Constraints{MaxLength: 100}},
		{Name: "status", Type: schema.FieldSelect, Required: true, Constraints: schema.Constraints{
			Values: []string{"up", "degraded", "down"},
		}},
		{Name: "latency_ms", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0)}},
		{Name: "message", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 1000}},
		{Name: "checked_at", Type: schema.FieldDate},
	},
	Rules: schema.Rules{
		List: ruleOwner,
		View: ruleOwner,
	},
}

// AuditLogs is append-only from the backend; all writes go through audit.Write.
var AuditLogs = schema.Definition{
	Name: "audit_logs",
	Fields: []schema.Field{
		{Name: "user_id", Type: schema.FieldText, Required: true},
		{Name: "user_email", Type: schema.FieldText},
		{Name: "tenantId", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 64}},
		{Name: "action", Type: schema.FieldText, Required: true},
		{Name: "resource_type", Type: schema.FieldText},
		{Name: "resource_id", Type: schema.FieldText},
		{Name: "resource_name", Type: schema.FieldText},
		{Name: "status", Type: schema.FieldSelect, Required: true, Constraints: schema.Constraints{
			Values: []string{"pending", "success", "failed"},
		}},
		{Name: "ip", Type: schema.FieldText},
		{Name: "detail", Type: schema.FieldJSON},
	},
	Indexes: []schema.Index{
		{Name: "idx_audit_logs_user_id", Columns: []string{"user_id"}},
		{Name: "idx_audit_logs_action", Columns: []string{"action"}},
		{Name: "idx_audit_logs_tenant", Columns: []string{"tenantId"}},
	},
	Rules: schema.Rules{
		List: schema.Rule("user_id = @request.auth.id || @request.auth.collectionName = '_superusers' || @request.auth.role = 'Owner'"),
		View: schema.Rule("user_id = @request.auth.id || @request.auth.collectionName = '_superusers' || @request.auth.role = 'Owner'"),
	},
	TenantScoped: true,
}

// AppSettings stores grouped settings as one JSON row per (module, key).
// Reads and writes go through the settings package.
var AppSettings = schema.Definition{
	Name: "app_settings",
	Fields: []schema.Field{
		{Name: "module", Type: schema.FieldText, Required: true},
		{Name: "key", Type: schema.FieldText, Required: true},
		{Name: "value", Type: schema.FieldJSON},
	},
	Indexes: []schema.Index{
		{Name: "idx_app_settings_module_key", Columns: []string{"module", "key"}, Unique: true},
	},
	Rules: schema.Rules{
		List: ruleSuperuser,
		View: ruleSuperuser,
	},
}
