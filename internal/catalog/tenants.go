package catalog

import "github.com/growyourneed/platform/internal/schema"

// Tenants holds one row per customer organization.
var Tenants = schema.Definition{
	Name: "tenants",
	Fields: []schema.Field{
		{Name: "name", Type: schema.FieldText, Required: true, Constraints: schema.Constraints{MaxLength: 200}},
		{Name: "slug", Type: schema.FieldText, Required: true, Unique: true, Constraints: schema.Constraints{
			MaxLength: 63,
			Pattern:   `^[a-z0-9][a-z0-9-]*$`,
		}},
		{Name: "plan", Type: schema.FieldSelect, Required: true, Constraints: schema.Constraints{
			Values: []string{"free", "basic", "pro", "enterprise"},
		}},
		{Name: "status", Type: schema.FieldSelect, Required: true, Constraints: schema.Constraints{
			Values: []string{"trial", "active", "suspended", "cancelled"},
		}},
		{Name: "owner_email", Type: schema.FieldEmail},
		{Name: "domain", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 253}},
		{Name: "max_users", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0), OnlyInt: true}},
		{Name: "settings", Type: schema.FieldJSON, Constraints: schema.Constraints{MaxSize: 1 << 20}},
		{Name: "trial_ends_at", Type: schema.FieldDate},
	},
	Indexes: []schema.Index{
		{Name: "idx_tenants_status", Columns: []string{"status"}},
	},
	Rules: schema.Rules{
		List:   schema.Rule("@request.auth.tenantId = id || @request.auth.role = 'Owner'"),
		View:   schema.Rule("@request.auth.tenantId = id || @request.auth.role = 'Owner'"),
		Create: ruleOwner,
		Update: ruleOwner,
		Delete: ruleOwner,
	},
}

// Users patches the built-in users auth collection with the platform's role
// and tenant membership. Only fields and indexes are applied here; the create
// and update rules are UsersCreateRule and UsersUpdateRule.
var Users = schema.Definition{
	Name: "users",
	Auth: true,
	Fields: []schema.Field{
		{Name: "name", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 200}},
		{Name: "role", Type: schema.FieldSelect, Constraints: schema.Constraints{Values: Roles}},
		tenantRef(false),
	},
	Indexes: []schema.Index{
		{Name: "idx_users_tenant", Columns: []string{"tenantId"}},
	},
	TenantScoped: true,
}

// Users rules, applied by their own migration.
const (
	// Self sign-up carries no role or tenant; tenant Admins add non-Owner
	// members to their own tenant.
	UsersCreateRule = "role = '' && tenantId = '' || " +
		"@request.auth.role = 'Admin' && @request.auth.tenantId != '' && tenantId = @request.auth.tenantId && role != 'Owner' || " +
		"@request.auth.role = 'Owner'"

	// Users edit their own profile but never their role or tenant.
	UsersUpdateRule = "id = @request.auth.id && @request.body.role:isset = false && @request.body.tenantId:isset = false || " +
		"@request.auth.role = 'Owner'"
)

// TenantUsage holds monthly usage counters per tenant.
var TenantUsage = schema.Definition{
	Name: "tenant_usage",
	Fields: []schema.Field{
		tenantRef(true),
		{Name: "period", Type: schema.FieldText, Required: true, Constraints: schema.Constraints{
			MaxLength: 7,
			Pattern:   `^\d{4}-\d{2}$`,
		}},
		{Name: "active_users", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0), OnlyInt: true}},
		{Name: "storage_bytes", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0), OnlyInt: true}},
		{Name: "api_calls", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0), OnlyInt: true}},
		{Name: "metrics", Type: schema.FieldJSON},
	},
	Indexes: []schema.Index{
		{Name: "idx_tenant_usage_period", Columns: []string{"tenantId", "period"}, Unique: true},
	},
	Rules: schema.Rules{
		List: ruleTenantMember,
		View: ruleTenantMember,
	},
	TenantScoped: true,
}

// TenantHealthHistory keeps periodic health snapshots per tenant.
var TenantHealthHistory = schema.Definition{
	Name: "tenant_health_history",
	Fields: []schema.Field{
		tenantRef(true),
		{Name: "score", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0), Max: schema.Float(100)}},
		{Name: "status", Type: schema.FieldSelect, Required: true, Constraints: schema.Constraints{
			Values: []string{"healthy", "degraded", "critical"},
		}},
		{Name: "active_users", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0), OnlyInt: true}},
		{Name: "open_tickets", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0), OnlyInt: true}},
		{Name: "checked_at", Type: schema.FieldDate, Required: true},
		{Name: "details", Type: schema.FieldJSON},
	},
	Indexes: []schema.Index{
		{Name: "idx_tenant_health_history_tenant", Columns: []string{"tenantId", "checked_at"}},
	},
	Rules: schema.Rules{
		List: ruleTenantMember,
		View: ruleTenantMember,
	},
	TenantScoped: true,
}
