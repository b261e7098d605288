// Package hooks registers PocketBase event hooks for platform business logic
// that cannot be expressed in collection access rules.
package hooks

import (
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"github.com/growyourneed/platform/internal/audit"
	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/settings"
	"github.com/growyourneed/platform/internal/support"
)

var (
	errCrossTenant    = errors.New("record belongs to another tenant")
	errTenantReassign = errors.New("tenantId cannot be changed")
	errRoleAssign     = errors.New("role cannot be set by this caller")
)

// Register binds all custom event hooks to the PocketBase app.
func Register(app core.App) {
	registerTenantHooks(app)
	registerUserGuards(app)
	registerSupportHooks(app)
	registerSuperuserHooks(app)
	registerUserAuditHooks(app)
	registerLoginAuditHooks(app)
}

// registerTenantHooks enforces tenant isolation on writes to tenant scoped
// collections and applies the configured defaults to new tenants.
func registerTenantHooks(app core.App) {
	scoped := catalog.TenantScopedNames()

	app.OnRecordCreateRequest(scoped...).BindFunc(func(e *core.RecordRequestEvent) error {
		if err := stampTenant(e.Auth, e.Record); err != nil {
			return apis.NewForbiddenError(err.Error(), nil)
		}
		return e.Next()
	})

	app.OnRecordUpdateRequest(scoped...).BindFunc(func(e *core.RecordRequestEvent) error {
		if err := guardTenantChange(e.Auth, e.Record); err != nil {
			return apis.NewForbiddenError(err.Error(), nil)
		}
		return e.Next()
	})

	app.OnRecordCreateRequest(catalog.Tenants.Name).BindFunc(func(e *core.RecordRequestEvent) error {
		applyTenantDefaults(app, e.Record, time.Now())
		if err := e.Next(); err != nil {
			return err
		}
		audit.Write(app, audit.FromRequest(e.RequestEvent, audit.Entry{
			TenantID:     e.Record.Id,
			Action:       audit.ActionTenantCreate,
			ResourceType: "tenant",
			ResourceID:   e.Record.Id,
			ResourceName: e.Record.GetString("slug"),
			Status:       audit.StatusSuccess,
		}))
		return nil
	})

	app.OnRecordUpdateRequest(catalog.Tenants.Name).BindFunc(func(e *core.RecordRequestEvent) error {
		if err := e.Next(); err != nil {
			return err
		}
		audit.Write(app, audit.FromRequest(e.RequestEvent, audit.Entry{
			TenantID:     e.Record.Id,
			Action:       audit.ActionTenantUpdate,
			ResourceType: "tenant",
			ResourceID:   e.Record.Id,
			ResourceName: e.Record.GetString("slug"),
			Status:       audit.StatusSuccess,
			Detail:       map[string]any{"status": e.Record.GetString("status")},
		}))
		return nil
	})
}

// crossTenantAllowed reports whether auth may write records of any tenant.
// Superusers and platform owners can; request-less callers are not checked.
func crossTenantAllowed(auth *core.Record) bool {
	if auth == nil || auth.IsSuperuser() {
		return true
	}
	return auth.GetString("role") == catalog.RoleOwner
}

// stampTenant copies the caller's tenant onto a new record that has none and
// rejects records aimed at another tenant.
func stampTenant(auth, rec *core.Record) error {
	if crossTenantAllowed(auth) {
		return nil
	}
	own := auth.GetString("tenantId")
	switch target := rec.GetString("tenantId"); {
	case target == "":
		rec.Set("tenantId", own)
	case target != own:
		return errCrossTenant
	}
	return nil
}

// guardTenantChange rejects moving an existing record to another tenant.
func guardTenantChange(auth, rec *core.Record) error {
	if crossTenantAllowed(auth) {
		return nil
	}
	if rec.Original().GetString("tenantId") != rec.GetString("tenantId") {
		return errTenantReassign
	}
	return nil
}

// applyTenantDefaults fills plan, status, max_users and the trial end date of
// a new tenant from the tenants/defaults settings group.
func applyTenantDefaults(app core.App, rec *core.Record, now time.Time) {
	defaults, _ := settings.Get(app, settings.TenantDefaults)

	if rec.GetString("plan") == "" {
		rec.Set("plan", settings.String(defaults, "plan", "free"))
	}
	if rec.GetString("status") == "" {
		rec.Set("status", settings.String(defaults, "status", "trial"))
	}
	if rec.GetInt("max_users") == 0 {
		rec.Set("max_users", settings.Int(defaults, "maxUsers", 25))
	}
	if rec.GetString("status") == "trial" && rec.GetDateTime("trial_ends_at").IsZero() {
		days := settings.Int(defaults, "trialDays", 14)
		end, err := types.ParseDateTime(now.AddDate(0, 0, days))
		if err == nil {
			rec.Set("trial_ends_at", end)
		}
	}
}

// registerUserGuards keeps role and tenant membership under platform control.
// Every access rule trusts @request.auth.role and @request.auth.tenantId, so
// only superusers, Owners and tenant Admins (inside their tenant) may set them.
func registerUserGuards(app core.App) {
	app.OnRecordCreateRequest(catalog.Users.Name).BindFunc(func(e *core.RecordRequestEvent) error {
		if err := guardUserCreate(e.Auth, e.Record); err != nil {
			return apis.NewForbiddenError(err.Error(), nil)
		}
		return e.Next()
	})

	app.OnRecordUpdateRequest(catalog.Users.Name).BindFunc(func(e *core.RecordRequestEvent) error {
		if err := guardUserUpdate(e.Auth, e.Record); err != nil {
			return apis.NewForbiddenError(err.Error(), nil)
		}
		return e.Next()
	})
}

func privileged(auth *core.Record) bool {
	return auth != nil && (auth.IsSuperuser() || auth.GetString("role") == catalog.RoleOwner)
}

func tenantAdmin(auth *core.Record) bool {
	return auth != nil && auth.GetString("role") == catalog.RoleAdmin && auth.GetString("tenantId") != ""
}

// guardUserCreate validates role and tenantId of a user created through the
// API. Self sign-ups get neither; a tenant Admin may add non-Owner members to
// its own tenant.
func guardUserCreate(auth, rec *core.Record) error {
	if privileged(auth) {
		return nil
	}
	role, tenant := rec.GetString("role"), rec.GetString("tenantId")

	if tenantAdmin(auth) {
		own := auth.GetString("tenantId")
		switch {
		case role == catalog.RoleOwner:
			return errRoleAssign
		case tenant == "":
			rec.Set("tenantId", own)
		case tenant != own:
			return errCrossTenant
		}
		return nil
	}

	if role != "" {
		return errRoleAssign
	}
	if tenant != "" {
		return errCrossTenant
	}
	return nil
}

// guardUserUpdate rejects role or tenant changes by anyone but superusers and
// Owners.
func guardUserUpdate(auth, rec *core.Record) error {
	if privileged(auth) {
		return nil
	}
	orig := rec.Original()
	if orig.GetString("role") != rec.GetString("role") {
		return errRoleAssign
	}
	if orig.GetString("tenantId") != rec.GetString("tenantId") {
		return errTenantReassign
	}
	return nil
}

// registerSupportHooks fills ticket defaults for tickets created through the
// collection API and records error boundary reports in the audit log.
func registerSupportHooks(app core.App) {
	app.OnRecordCreateRequest(catalog.SupportTickets.Name).BindFunc(func(e *core.RecordRequestEvent) error {
		support.ApplyDefaults(app, e.Record, e.Auth)
		if err := e.Next(); err != nil {
			return err
		}
		audit.Write(app, audit.FromRequest(e.RequestEvent, audit.Entry{
			TenantID:     e.Record.GetString("tenantId"),
			Action:       audit.ActionSupportReport,
			ResourceType: "support_ticket",
			ResourceID:   e.Record.Id,
			ResourceName: e.Record.GetString("reference"),
			Status:       audit.StatusSuccess,
			Detail:       map[string]any{"source": e.Record.GetString("source")},
		}))
		return nil
	})
}

// registerUserAuditHooks writes audit records when users are created, updated, or deleted
// via PocketBase's built-in REST API (not the custom /api/ext/users routes).
// Both the "users" and "_superusers" collections are tracked.
func registerUserAuditHooks(app core.App) {
	entry := func(e *core.RequestEvent, action, id, email, tenantID string) audit.Entry {
		en := audit.FromRequest(e, audit.Entry{
			TenantID:     tenantID,
			Action:       action,
			ResourceType: "user",
			ResourceID:   id,
			ResourceName: email,
			Status:       audit.StatusSuccess,
		})
		if e.Auth == nil {
			en.UserID = "system"
		}
		return en
	}

	for _, col := range []string{catalog.Users.Name, core.CollectionNameSuperusers} {
		app.OnRecordCreateRequest(col).BindFunc(func(e *core.RecordRequestEvent) error {
			if err := e.Next(); err != nil {
				return err
			}
			audit.Write(app, entry(e.RequestEvent, audit.ActionUserCreate, e.Record.Id, e.Record.Email(), e.Record.GetString("tenantId")))
			return nil
		})

		app.OnRecordUpdateRequest(col).BindFunc(func(e *core.RecordRequestEvent) error {
			if err := e.Next(); err != nil {
				return err
			}
			audit.Write(app, entry(e.RequestEvent, audit.ActionUserUpdate, e.Record.Id, e.Record.Email(), e.Record.GetString("tenantId")))
			return nil
		})

		app.OnRecordDeleteRequest(col).BindFunc(func(e *core.RecordRequestEvent) error {
			// capture before the record is gone
			id, email, tenantID := e.Record.Id, e.Record.Email(), e.Record.GetString("tenantId")
			if err := e.Next(); err != nil {
				return err
			}
			audit.Write(app, entry(e.RequestEvent, audit.ActionUserDelete, id, email, tenantID))
			return nil
		})
	}
}

// registerLoginAuditHooks writes audit records on login success and failure
// for both the "users" and "_superusers" collections.
func registerLoginAuditHooks(app core.App) {
	for _, col := range []string{catalog.Users.Name, core.CollectionNameSuperusers} {
		app.OnRecordAuthWithPasswordRequest(col).BindFunc(func(e *core.RecordAuthWithPasswordRequestEvent) error {
			err := e.Next()
			if err != nil {
				en := audit.FromRequest(e.RequestEvent, audit.Entry{
					UserEmail:    e.Identity,
					Action:       audit.ActionLoginFailed,
					ResourceType: "session",
					Status:       audit.StatusFailed,
					Detail: map[string]any{
						"reason":     err.Error(),
						"collection": col,
					},
				})
				en.UserID, en.UserEmail = "unknown", e.Identity
				audit.Write(app, en)
				return err
			}
			audit.Write(app, audit.FromRequest(e.RequestEvent, audit.Entry{
				UserID:       e.Record.Id,
				UserEmail:    e.Record.Email(),
				TenantID:     e.Record.GetString("tenantId"),
				Action:       audit.ActionLogin,
				ResourceType: "session",
				Status:       audit.StatusSuccess,
			}))
			return nil
		})
	}
}

// registerSuperuserHooks registers safety guards for the _superusers system collection.
func registerSuperuserHooks(app core.App) {
	// Guard: prevent deleting self or the last superuser.
	app.OnRecordDeleteRequest(core.CollectionNameSuperusers).BindFunc(func(e *core.RecordRequestEvent) error {
		if e.Auth != nil && e.Auth.Id == e.Record.Id {
			return apis.NewBadRequestError("cannot_delete_self", nil)
		}

		count, err := app.CountRecords(core.CollectionNameSuperusers)
		if err != nil {
			return fmt.Errorf("superuser guard: failed to count superusers: %w", err)
		}
		if count <= 1 {
			return apis.NewBadRequestError("cannot_delete_last_superuser", nil)
		}

		return e.Next()
	})
}
