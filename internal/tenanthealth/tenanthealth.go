// Package tenanthealth computes per-tenant health snapshots and appends them
// to tenant_health_history.
package tenanthealth

import (
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusCritical = "critical"
)

const historyCollection = "tenant_health_history"

// Snapshot is one health measurement of a tenant.
type Snapshot struct {
	TenantID     string    `json:"tenantId"`
	TenantStatus string    `json:"tenantStatus"`
	ActiveUsers  int       `json:"activeUsers"`
	OpenTickets  int       `json:"openTickets"`
	Score        float64   `json:"score"`
	Status       string    `json:"status"`
	CheckedAt    time.Time `json:"checkedAt"`
}

// Score rates a tenant from 0 to 100.
//
// Each open ticket costs 5 points, up to 50. A tenant without users loses 30.
// Suspended and cancelled tenants are always critical.
func Score(activeUsers, openTickets int, tenantStatus string) (float64, string) {
	score := 100.0
	score -= float64(min(openTickets*5, 50))
	if activeUsers == 0 {
		score -= 30
	}
	score = max(score, 0)

	switch {
	case tenantStatus == "suspended" || tenantStatus == "cancelled":
		return min(score, 20), StatusCritical
	case score >= 80:
		return score, StatusHealthy
	case score >= 50:
		return score, StatusDegraded
	}
	return score, StatusCritical
}

// Take measures the tenant with the given id.
func Take(app core.App, tenantID string) (Snapshot, error) {
	tenant, err := app.FindRecordById("tenants", tenantID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("tenant %q: %w", tenantID, err)
	}

	users, err := app.CountRecords("users", dbx.HashExp{"tenantId": tenantID})
	if err != nil {
		return Snapshot{}, fmt.Errorf("count users: %w", err)
	}
	tickets, err := app.CountRecords("support_tickets", dbx.And(
		dbx.HashExp{"tenantId": tenantID},
		dbx.In("status", "open", "in_progress"),
	))
	if err != nil {
		return Snapshot{}, fmt.Errorf("count tickets: %w", err)
	}

	snap := Snapshot{
		TenantID:     tenantID,
		TenantStatus: tenant.GetString("status"),
		ActiveUsers:  int(users),
		OpenTickets:  int(tickets),
		CheckedAt:    time.Now().UTC(),
	}
	snap.Score, snap.Status = Score(snap.ActiveUsers, snap.OpenTickets, snap.TenantStatus)
	return snap, nil
}

// Record appends snap to tenant_health_history.
func Record(app core.App, snap Snapshot) error {
	col, err := app.FindCollectionByNameOrId(historyCollection)
	if err != nil {
		return err
	}
	rec := core.NewRecord(col)
	rec.Set("tenantId", snap.TenantID)
	rec.Set("score", snap.Score)
	rec.Set("status", snap.Status)
	rec.Set("active_users", snap.ActiveUsers)
	rec.Set("open_tickets", snap.OpenTickets)
	rec.Set("checked_at", snap.CheckedAt)
	rec.Set("details", map[string]any{"tenantStatus": snap.TenantStatus})
	return app.Save(rec)
}

// RecordAll snapshots every tenant. A failing tenant is logged and skipped;
// the joined errors are returned along with the number recorded.
func RecordAll(app core.App, logger zerolog.Logger) (int, error) {
	tenants, err := app.FindAllRecords("tenants")
	if err != nil {
		return 0, err
	}

	var errs []error
	recorded := 0
	for _, t := range tenants {
		snap, err := Take(app, t.Id)
		if err == nil {
			err = Record(app, snap)
		}
		if err != nil {
			logger.Error().Err(err).Str("tenant", t.Id).Msg("tenant health snapshot failed")
			errs = append(errs, fmt.Errorf("tenant %s: %w", t.Id, err))
			continue
		}
		recorded++
	}
	logger.Info().Int("recorded", recorded).Int("tenants", len(tenants)).Msg("tenant health snapshots taken")
	return recorded, errors.Join(errs...)
}

// Latest returns the most recent snapshot rows for a tenant, newest first.
func Latest(app core.App, tenantID string, limit int) ([]*core.Record, error) {
	return app.FindRecordsByFilter(
		historyCollection,
		"tenantId = {:tenant}",
		"-checked_at",
		limit,
		0,
		dbx.Params{"tenant": tenantID},
	)
}
