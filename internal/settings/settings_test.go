package settings_test

import (
	"encoding/json"
	"testing"

	"github.com/growyourneed/platform/internal/settings"
)

// ─── Int() tests ──────────────────────────────────────────────────────────

func TestInt_Float64(t *testing.T) {
	g := map[string]any{"pollSeconds": float64(42)}
	if got := settings.Int(g, "pollSeconds", 0); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestInt_JSONNumber(t *testing.T) {
	g := map[string]any{"n": json.Number("7")}
	if got := settings.Int(g, "n", 0); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestInt_StringNumeric(t *testing.T) {
	g := map[string]any{"n": "42"}
	if got := settings.Int(g, "n", 0); got != 42 {
		t.Errorf("expected 42 from string \"42\", got %d", got)
	}
}

func TestInt_Fallbacks(t *testing.T) {
	cases := map[string]map[string]any{
		"missing": {},
		"nil":     {"n": nil},
		"invalid": {"n": "abc"},
		"object":  {"n": map[string]any{}},
	}
	for name, g := range cases {
		if got := settings.Int(g, "n", 99); got != 99 {
			t.Errorf("%s: expected fallback 99, got %d", name, got)
		}
	}
}

// ─── Bool() / String() tests ──────────────────────────────────────────────

func TestBool(t *testing.T) {
	g := map[string]any{"a": true, "b": "false", "c": "maybe"}
	if !settings.Bool(g, "a", false) {
		t.Error("a should be true")
	}
	if settings.Bool(g, "b", true) {
		t.Error("b should be false")
	}
	if !settings.Bool(g, "c", true) {
		t.Error("c should fall back to true")
	}
}

func TestString(t *testing.T) {
	g := map[string]any{"plan": "free", "n": 123}
	if got := settings.String(g, "plan", ""); got != "free" {
		t.Errorf("expected free, got %q", got)
	}
	if got := settings.String(g, "n", "fb"); got != "fb" {
		t.Errorf("expected fallback fb, got %q", got)
	}
	if got := settings.String(g, "missing", "default"); got != "default" {
		t.Errorf("expected fallback default, got %q", got)
	}
}

// ─── StringSlice() tests ──────────────────────────────────────────────────

func TestStringSlice(t *testing.T) {
	g := map[string]any{
		"typed":  []string{" a ", "", "b"},
		"json":   []any{"a", 1, " b"},
		"csv":    "a, ,b",
		"number": 5,
	}
	for _, field := range []string{"typed", "json", "csv"} {
		got := settings.StringSlice(g, field)
		if len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Errorf("%s: expected [a b], got %v", field, got)
		}
	}
	if got := settings.StringSlice(g, "number"); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}

func TestDefaultsCoverPlatformGroups(t *testing.T) {
	for _, g := range []settings.Group{settings.DashboardRefresh, settings.SupportTickets, settings.TenantDefaults} {
		if _, ok := settings.Defaults[g]; !ok {
			t.Errorf("no defaults for %s", g)
		}
	}
	if got := settings.Int(settings.Defaults[settings.DashboardRefresh], "pollSeconds", 0); got != 30 {
		t.Errorf("expected 30s dashboard poll, got %d", got)
	}
}
