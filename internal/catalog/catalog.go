// Package catalog is the platform's schema contract: the static table of
// collection definitions every other service depends on.
//
// Order matters. Definitions are listed so that relation targets come before
// the collections that reference them, which is also the order migrations
// create them in.
package catalog

import (
	"github.com/growyourneed/platform/internal/schema"
)

// User roles stored on the users collection.
const (
	RoleOwner      = "Owner"
	RoleAdmin      = "Admin"
	RoleTeacher    = "Teacher"
	RoleStudent    = "Student"
	RoleParent     = "Parent"
	RoleIndividual = "Individual"
)

// Roles lists every valid role value.
var Roles = []string{RoleOwner, RoleAdmin, RoleTeacher, RoleStudent, RoleParent, RoleIndividual}

// Shared rule fragments.
var (
	ruleAuthenticated = schema.Rule("@request.auth.id != ''")
	ruleOwner         = schema.Rule("@request.auth.role = 'Owner'")
	ruleTenantMember  = schema.Rule("@request.auth.tenantId = tenantId || @request.auth.role = 'Owner'")
	ruleTenantAdmin   = schema.Rule("(@request.auth.tenantId = tenantId && @request.auth.role = 'Admin') || @request.auth.role = 'Owner'")
	ruleSuperuser     = schema.Rule("@request.auth.collectionName = '_superusers'")
)

// tenantRef is the standard tenantId relation carried by tenant scoped collections.
func tenantRef(required bool) schema.Field {
	return schema.Field{
		Name:     "tenantId",
		Type:     schema.FieldRelation,
		Required: required,
		Constraints: schema.Constraints{
			Target:        "tenants",
			MaxSelect:     1,
			CascadeDelete: required,
		},
	}
}

// All returns every definition in creation order.
func All() []schema.Definition {
	return []schema.Definition{
		Tenants,
		Users,
		TenantUsage,
		TenantHealthHistory,
		BillingPlans,
		Subscriptions,
		Invoices,
		SupportTickets,
		Notifications,
		Announcements,
		FeatureFlags,
		SystemHealth,
		AuditLogs,
		AppSettings,
	}
}

// Lookup returns the definition for name.
func Lookup(name string) (schema.Definition, bool) {
	for _, d := range All() {
		if d.Name == name {
			return d, true
		}
	}
	return schema.Definition{}, false
}

// LegacyCollection is a collection the dashboards read from that has no
// dedicated definition. It is reconciled with the fallback schema.
type LegacyCollection struct {
	Name         string `json:"name"`
	TenantScoped bool   `json:"tenantScoped"`
}

// Legacy lists collections that exist only through the fallback schema.
var Legacy = []LegacyCollection{
	{Name: "school_classes", TenantScoped: true},
	{Name: "class_enrollments", TenantScoped: true},
	{Name: "crm_contacts", TenantScoped: true},
	{Name: "wellness_logs", TenantScoped: true},
	{Name: "media_assets", TenantScoped: true},
	{Name: "tenant_integrations", TenantScoped: true},
	{Name: "marketplace_apps"},
	{Name: "platform_metrics"},
}

// Expected returns the full set of collection names the platform expects to
// exist, defined collections first.
func Expected() []string {
	names := schema.Names(All())
	for _, l := range Legacy {
		names = append(names, l.Name)
	}
	return names
}

// FallbackFor returns the fallback definition for name, tenant scoped when the
// legacy table says so.
func FallbackFor(name string) schema.Definition {
	for _, l := range Legacy {
		if l.Name == name {
			return schema.Fallback(name, l.TenantScoped)
		}
	}
	return schema.Fallback(name, false)
}

// DefinitionFor returns the full catalog definition for name when one exists
// and can be created, falling back to FallbackFor otherwise.
func DefinitionFor(name string) schema.Definition {
	if def, ok := Lookup(name); ok && !def.Auth {
		return def
	}
	return FallbackFor(name)
}

// TenantScopedNames lists every creatable collection whose records belong to
// a single tenant.
func TenantScopedNames() []string {
	var names []string
	for _, d := range All() {
		if d.TenantScoped && !d.Auth {
			names = append(names, d.Name)
		}
	}
	for _, l := range Legacy {
		if l.TenantScoped {
			names = append(names, l.Name)
		}
	}
	return names
}
