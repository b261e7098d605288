// Package audit writes platform audit records to the audit_logs collection.
//
// All backend writes go through Write(); access rules on audit_logs prevent
// any client-side mutation.
package audit

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"
)

const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

var validStatuses = map[string]bool{
	StatusPending: true,
	StatusSuccess: true,
	StatusFailed:  true,
}

// Actions recorded by the platform.
const (
	ActionLogin           = "login.success"
	ActionLoginFailed     = "login.failed"
	ActionUserCreate      = "user.create"
	ActionUserUpdate      = "user.update"
	ActionUserDelete      = "user.delete"
	ActionPasswordReset   = "user.reset_password"
	ActionTenantCreate    = "tenant.create"
	ActionTenantUpdate    = "tenant.update"
	ActionSchemaReconcile = "schema.reconcile"
	ActionSupportReport   = "support.report"
	ActionPaymentIntent   = "payment.intent"
)

// Entry holds all fields for a single audit record.
type Entry struct {
	// UserID is the record ID of the actor ("unknown" for unauthenticated failures,
	// "system" for workers).
	UserID    string
	UserEmail string
	// TenantID scopes the record to a tenant; empty for platform-level actions.
	TenantID string
	// Action is a dot-namespaced verb, e.g. "tenant.create", "login.failed".
	Action       string
	ResourceType string
	ResourceID   string
	ResourceName string
	// Status must be one of StatusPending, StatusSuccess, or StatusFailed.
	Status string
	// IP is the client's source IP. Empty for worker-originated operations.
	IP string
	// UserAgent is merged into Detail when non-empty.
	UserAgent string
	Detail    map[string]any
}

// Write persists one audit record, bypassing access rules so it works from
// handlers, hooks and workers alike. Errors are logged and swallowed; an
// audit failure must never break the calling operation.
func Write(app core.App, entry Entry) {
	if !validStatuses[entry.Status] {
		log.Warn().Str("status", entry.Status).Str("action", entry.Action).Msg("audit: invalid status, skipping")
		return
	}

	col, err := app.FindCollectionByNameOrId("audit_logs")
	if err != nil {
		log.Error().Err(err).Msg("audit: collection not found")
		return
	}

	rec := core.NewRecord(col)
	rec.Set("user_id", entry.UserID)
	rec.Set("user_email", entry.UserEmail)
	rec.Set("tenantId", entry.TenantID)
	rec.Set("action", entry.Action)
	rec.Set("resource_type", entry.ResourceType)
	rec.Set("resource_id", entry.ResourceID)
	rec.Set("resource_name", entry.ResourceName)
	rec.Set("status", entry.Status)
	rec.Set("ip", entry.IP)

	detail := entry.Detail
	if entry.UserAgent != "" {
		if detail == nil {
			detail = map[string]any{}
		}
		detail["user_agent"] = entry.UserAgent
	}
	if detail != nil {
		rec.Set("detail", detail)
	}

	if err := app.Save(rec); err != nil {
		log.Error().Err(err).Str("action", entry.Action).Msg("audit: save failed")
	}
}

// FromRequest fills the actor and client fields of entry from a request event.
func FromRequest(e *core.RequestEvent, entry Entry) Entry {
	if e.Auth != nil {
		entry.UserID = e.Auth.Id
		entry.UserEmail = e.Auth.Email()
		if entry.TenantID == "" {
			entry.TenantID = e.Auth.GetString("tenantId")
		}
	}
	if entry.UserID == "" {
		entry.UserID = "unknown"
	}
	entry.IP = e.RealIP()
	entry.UserAgent = e.Request.UserAgent()
	return entry
}
