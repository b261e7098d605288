package catalog

import "github.com/growyourneed/platform/internal/schema"

// SupportTickets collects both user-filed tickets and reports raised by the
// client error boundary. tenantId is optional since platform owners file
// tickets too.
var SupportTickets = schema.Definition{
	Name: "support_tickets",
	Fields: []schema.Field{
		tenantRef(false),
		{Name: "reporter", Type: schema.FieldRelation, Constraints: schema.Constraints{Target: "users", MaxSelect: 1}},
		{Name: "reference", Type: schema.FieldText, Required: true, Unique: true, Constraints: schema.Constraints{MaxLength: 64}},
		{Name: "subject", Type: schema.FieldText, Required: true, Constraints: schema.Constraints{MaxLength: 200}},
		{Name: "message", Type: schema.FieldEditor},
		{Name: "status", Type: schema.FieldSelect, Required: true, Constraints: schema.Constraints{
			Values: []string{TicketOpen, "in_progress", "resolved", "closed"},
		}},
		{Name: "priority", Type: schema.FieldSelect, Constraints: schema.Constraints{
			Values: []string{"low", "normal", "high", "urgent"},
		}},
		{Name: "source", Type: schema.FieldSelect, Constraints: schema.Constraints{
			Values: []string{"manual", "error_boundary"},
		}},
		{Name: "error_context", Type: schema.FieldJSON, Constraints: schema.Constraints{MaxSize: 1 << 20}},
	},
	Indexes: []schema.Index{
		{Name: "idx_support_tickets_tenant", Columns: []string{"tenantId", "status"}},
	},
	Rules: schema.Rules{
		List:   schema.Rule("reporter = @request.auth.id || (@request.auth.tenantId = tenantId && @request.auth.role = 'Admin') || @request.auth.role = 'Owner'"),
		View:   schema.Rule("reporter = @request.auth.id || (@request.auth.tenantId = tenantId && @request.auth.role = 'Admin') || @request.auth.role = 'Owner'"),
		Create: ruleAuthenticated,
		Update: ruleTenantAdmin,
		Delete: ruleOwner,
	},
	TenantScoped: true,
}

// TicketOpen is the status of a new ticket.
const TicketOpen = "open"

// Notifications are per-user inbox items.
var Notifications = schema.Definition{
	Name: "notifications",
	Fields: []schema.Field{
		{Name: "user", Type: schema.FieldRelation, Required: true, Constraints: schema.Constraints{Target: "users", MaxSelect: 1, CascadeDelete: true}},
		tenantRef(false),
		{Name: "title", Type: schema.FieldText, Required: true, Constraints: schema.Constraints{MaxLength: 200}},
		{Name: "body", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 2000}},
		{Name: "kind", Type: schema.FieldSelect, Constraints: schema.Constraints{
			Values: []string{"info", "warning", "billing", "system"},
		}},
		{Name: "read", Type: schema.FieldBool},
		{Name: "link", Type: schema.FieldURL},
	},
	Indexes: []schema.Index{
		{Name: "idx_notifications_user", Columns: []string{"user", "read"}},
	},
	Rules: schema.Rules{
		List:   schema.Rule("user = @request.auth.id"),
		View:   schema.Rule("user = @request.auth.id"),
		Update: schema.Rule("user = @request.auth.id"),
		Delete: schema.Rule("user = @request.auth.id"),
	},
	TenantScoped: true,
}

// Announcements are platform-wide or tenant-targeted broadcasts. An empty
// tenantId targets every tenant.
var Announcements = schema.Definition{
	Name: "announcements",
	Fields: []schema.Field{
		{Name: "title", Type: schema.FieldText, Required: true, Constraints: schema.Constraints{MaxLength: 200}},
		{Name: "body", Type: schema.FieldEditor},
		{Name: "audience", Type: schema.FieldSelect, Constraints: schema.Constraints{
			Values: []string{"all", "owners", "admins", "members"},
		}},
		tenantRef(false),
		{Name: "published", Type: schema.FieldBool},
		{Name: "published_at", Type: schema.FieldDate},
	},
	Rules: schema.Rules{
		List:   schema.Rule("published = true && (tenantId = '' || tenantId = @request.auth.tenantId) || @request.auth.role = 'Owner'"),
		View:   schema.Rule("published = true && (tenantId = '' || tenantId = @request.auth.tenantId) || @request.auth.role = 'Owner'"),
		Create: ruleOwner,
		Update: ruleOwner,
		Delete: ruleOwner,
	},
	TenantScoped: true,
}
