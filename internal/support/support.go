// Package support files support tickets, including the reports raised by the
// client error boundary.
package support

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"

	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/settings"
)

const (
	SourceManual        = "manual"
	SourceErrorBoundary = "error_boundary"
)

// ErrSubjectRequired is returned by File when the report has no subject.
var ErrSubjectRequired = errors.New("support: subject is required")

// NewReference returns a short human readable ticket reference.
func NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "GYN-" + strings.ToUpper(id[:10])
}

// Report is a ticket filed through the API.
type Report struct {
	Subject      string         `json:"subject"`
	Message      string         `json:"message"`
	Priority     string         `json:"priority"`
	Source       string         `json:"source"`
	ErrorContext map[string]any `json:"errorContext"`
}

// ApplyDefaults fills the fields a client may leave empty on a new ticket:
// reference, status, priority, source, reporter and tenant.
func ApplyDefaults(app core.App, rec *core.Record, auth *core.Record) {
	if rec.GetString("reference") == "" {
		rec.Set("reference", NewReference())
	}
	if rec.GetString("status") == "" {
		rec.Set("status", catalog.TicketOpen)
	}
	if rec.GetString("priority") == "" {
		cfg, _ := settings.Get(app, settings.SupportTickets)
		rec.Set("priority", settings.String(cfg, "defaultPriority", "normal"))
	}
	if rec.GetString("source") == "" {
		rec.Set("source", SourceManual)
	}
	if auth == nil || auth.Collection().Name != "users" {
		return
	}
	if rec.GetString("reporter") == "" {
		rec.Set("reporter", auth.Id)
	}
	if rec.GetString("tenantId") == "" {
		rec.Set("tenantId", auth.GetString("tenantId"))
	}
}

// maxSubject matches the support_tickets.subject MaxLength, counted in runes.
const maxSubject = 200

// File saves a ticket for r on behalf of auth, which may be nil for
// superusers and background callers.
func File(app core.App, auth *core.Record, r Report) (*core.Record, error) {
	subject := strings.TrimSpace(r.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	if runes := []rune(subject); len(runes) > maxSubject {
		subject = strings.TrimSpace(string(runes[:maxSubject]))
	}

	col, err := app.FindCollectionByNameOrId(catalog.SupportTickets.Name)
	if err != nil {
		return nil, err
	}
	rec := core.NewRecord(col)
	rec.Set("subject", subject)
	rec.Set("message", r.Message)
	rec.Set("priority", r.Priority)
	rec.Set("source", r.Source)
	if len(r.ErrorContext) > 0 {
		rec.Set("error_context", r.ErrorContext)
	}
	ApplyDefaults(app, rec, auth)

	if err := app.Save(rec); err != nil {
		return nil, err
	}
	return rec, nil
}
