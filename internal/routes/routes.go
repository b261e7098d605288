// Package routes registers all custom API routes for the platform.
//
// Route groups:
//   - /api/gyn/setup       — first-run superuser setup (unauthenticated)
//   - /api/ext/schema      — collection reconcile and rule dry-runs (superuser)
//   - /api/ext/support     — ticket and error boundary reports
//   - /api/ext/dashboard   — platform counters (Owner)
//   - /api/ext/tenants     — tenant health history, snapshots and integrations
//   - /api/ext/directory   — account lookup by email (Owner)
//   - /api/ext/users       — password resets (superuser)
//   - /api/ext/payments    — Stripe payment intents
//   - /api/ext/settings    — app_settings groups (superuser)
package routes

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog"

	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/payments"
	"github.com/growyourneed/platform/internal/secrets"
)

// Deps carries the services handlers need beyond the PocketBase app.
type Deps struct {
	Payments payments.Gateway
	Secrets  *secrets.Box
	Logger   zerolog.Logger
}

// Register mounts all custom route groups on the PocketBase router.
func Register(se *core.ServeEvent, d Deps) {
	// Setup routes (unauthenticated; only works when no superuser exists)
	registerSetupRoutes(se)

	// All other custom routes require authentication
	g := se.Router.Group("/api/ext")
	g.Bind(apis.RequireAuth())

	registerSchemaRoutes(g, d.Logger)
	registerSupportRoutes(g)
	registerDashboardRoutes(g)
	registerTenantRoutes(g)
	registerIntegrationRoutes(g, d.Secrets)
	registerDirectoryRoutes(g)
	registerUserRoutes(g)
	registerPaymentRoutes(g, d.Payments)
	registerSettingsRoutes(g)
}

// requireOwner rejects callers that are neither superusers nor platform owners.
func requireOwner(e *core.RequestEvent) error {
	if isOwner(e) {
		return e.Next()
	}
	return e.ForbiddenError("Owner access required", nil)
}

func isOwner(e *core.RequestEvent) bool {
	if e.HasSuperuserAuth() {
		return true
	}
	return e.Auth != nil && e.Auth.GetString("role") == catalog.RoleOwner
}

// canAccessTenant reports whether the caller may read data of tenantID.
func canAccessTenant(e *core.RequestEvent, tenantID string) bool {
	if isOwner(e) {
		return true
	}
	return e.Auth != nil && tenantID != "" && e.Auth.GetString("tenantId") == tenantID
}

// isTenantAdmin reports whether the caller administers tenantID.
func isTenantAdmin(e *core.RequestEvent, tenantID string) bool {
	if isOwner(e) {
		return true
	}
	return canAccessTenant(e, tenantID) && e.Auth.GetString("role") == catalog.RoleAdmin
}
