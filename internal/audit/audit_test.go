package audit_test

import (
	"testing"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/tests"

	"github.com/growyourneed/platform/internal/audit"

	// trigger init() registrations
	_ "github.com/growyourneed/platform/internal/migrations"
)

func TestWrite(t *testing.T) {
	app, err := tests.NewTestApp()
	if err != nil {
		t.Fatal(err)
	}
	defer app.Cleanup()

	audit.Write(app, audit.Entry{
		UserID:       "u1",
		UserEmail:    "owner@x.com",
		TenantID:     "t1",
		Action:       audit.ActionTenantCreate,
		ResourceType: "tenant",
		ResourceID:   "t1",
		Status:       audit.StatusSuccess,
		UserAgent:    "go-test",
	})

	rec, err := app.FindFirstRecordByFilter("audit_logs", "action = {:a}", dbx.Params{"a": audit.ActionTenantCreate})
	if err != nil {
		t.Fatalf("audit record not written: %v", err)
	}
	if rec.GetString("tenantId") != "t1" {
		t.Errorf("expected tenantId t1, got %q", rec.GetString("tenantId"))
	}
	detail := map[string]any{}
	if err := rec.UnmarshalJSONField("detail", &detail); err != nil {
		t.Fatal(err)
	}
	if detail["user_agent"] != "go-test" {
		t.Errorf("user agent should be merged into detail, got %v", detail)
	}
}

func TestWrite_InvalidStatusSkipped(t *testing.T) {
	app, err := tests.NewTestApp()
	if err != nil {
		t.Fatal(err)
	}
	defer app.Cleanup()

	audit.Write(app, audit.Entry{UserID: "u1", Action: "x.y", Status: "bogus"})

	n, err := app.CountRecords("audit_logs")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected no audit rows, got %d", n)
	}
}
