package tenanthealth_test

import (
	"fmt"
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"
	"github.com/rs/zerolog"

	"github.com/growyourneed/platform/internal/tenanthealth"

	// trigger init() registrations
	_ "github.com/growyourneed/platform/internal/migrations"
)

func mustSave(t *testing.T, app core.App, collection string, fields map[string]any) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		t.Fatal(err)
	}
	rec := core.NewRecord(col)
	for k, v := range fields {
		rec.Set(k, v)
	}
	if col.IsAuth() {
		rec.SetPassword("password123")
	}
	if err := app.Save(rec); err != nil {
		t.Fatalf("save %s: %v", collection, err)
	}
	return rec
}

func seedTenant(t *testing.T, app core.App, slug string, users, openTickets int) *core.Record {
	t.Helper()
	tenant := mustSave(t, app, "tenants", map[string]any{
		"name": slug, "slug": slug, "plan": "free", "status": "active",
	})
	for i := 0; i < users; i++ {
		mustSave(t, app, "users", map[string]any{
			"email": fmt.Sprintf("u%d@%s.test", i, slug), "tenantId": tenant.Id,
		})
	}
	for i := 0; i < openTickets; i++ {
		mustSave(t, app, "support_tickets", map[string]any{
			"tenantId": tenant.Id, "reference": fmt.Sprintf("%s-%d", slug, i),
			"subject": "help", "status": "open",
		})
	}
	mustSave(t, app, "support_tickets", map[string]any{
		"tenantId": tenant.Id, "reference": slug + "-closed", "subject": "done", "status": "closed",
	})
	return tenant
}

func TestTakeAndRecord(t *testing.T) {
	app, err := tests.NewTestApp()
	if err != nil {
		t.Fatal(err)
	}
	defer app.Cleanup()

	tenant := seedTenant(t, app, "acme", 2, 1)

	snap, err := tenanthealth.Take(app, tenant.Id)
	if err != nil {
		t.Fatal(err)
	}
	if snap.ActiveUsers != 2 || snap.OpenTickets != 1 {
		t.Errorf("expected 2 users and 1 open ticket, got %+v", snap)
	}
	if snap.Score != 95 || snap.Status != tenanthealth.StatusHealthy {
		t.Errorf("expected 95/healthy, got %v/%s", snap.Score, snap.Status)
	}

	if err := tenanthealth.Record(app, snap); err != nil {
		t.Fatal(err)
	}
	rows, err := tenanthealth.Latest(app, tenant.Id, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(rows))
	}
	if rows[0].GetString("status") != tenanthealth.StatusHealthy {
		t.Errorf("unexpected status %q", rows[0].GetString("status"))
	}
}

func TestTakeUnknownTenant(t *testing.T) {
	app, err := tests.NewTestApp()
	if err != nil {
		t.Fatal(err)
	}
	defer app.Cleanup()

	if _, err := tenanthealth.Take(app, "missing"); err == nil {
		t.Error("expected an error for an unknown tenant")
	}
}

func TestRecordAll(t *testing.T) {
	app, err := tests.NewTestApp()
	if err != nil {
		t.Fatal(err)
	}
	defer app.Cleanup()

	seedTenant(t, app, "alpha", 1, 0)
	seedTenant(t, app, "beta", 0, 3)

	n, err := tenanthealth.RecordAll(app, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 snapshots, got %d", n)
	}
	total, err := app.CountRecords("tenant_health_history")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("expected 2 history rows, got %d", total)
	}
}
