// Package settings reads and writes grouped platform settings stored in the
// app_settings collection.
//
// Each row is one group identified by (module, key), e.g. ("dashboard",
// "refresh") or ("support", "tickets"). The value column holds a JSON object
// with every field of the group.
//
// GetGroup always returns a non-nil map: on any error it returns the fallback
// together with the error, so  v, _ := GetGroup(...)  is safe. The typed
// readers (Int, Bool, String, StringSlice) never panic.
package settings

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"
)

const collection = "app_settings"

// Group names a settings row.
type Group struct {
	Module string
	Key    string
}

func (g Group) String() string { return g.Module + "/" + g.Key }

// Platform settings groups.
var (
	DashboardRefresh = Group{"dashboard", "refresh"}
	SupportTickets   = Group{"support", "tickets"}
	TenantDefaults   = Group{"tenants", "defaults"}
)

// Defaults holds the initial value of every platform group.
var Defaults = map[Group]map[string]any{
	DashboardRefresh: {
		"pollSeconds": 30,
	},
	SupportTickets: {
		"defaultPriority": "normal",
		"notifyOwners":    true,
	},
	TenantDefaults: {
		"plan":      "free",
		"status":    "trial",
		"trialDays": 14,
		"maxUsers":  25,
	},
}

// GetGroup loads the group identified by (module, key).
func GetGroup(app core.App, module, key string, fallback map[string]any) (map[string]any, error) {
	if fallback == nil {
		fallback = map[string]any{}
	}
	record, err := find(app, module, key)
	if err != nil {
		return fallback, fmt.Errorf("settings.GetGroup(%s/%s): %w", module, key, err)
	}

	raw := record.Get("value")
	if raw == nil {
		return fallback, fmt.Errorf("settings.GetGroup(%s/%s): value is nil", module, key)
	}

	// JSON fields come back as types.JSONRaw; normalise to bytes then unmarshal.
	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case json.RawMessage:
		data = v
	default:
		data, err = json.Marshal(v)
		if err != nil {
			return fallback, fmt.Errorf("settings.GetGroup(%s/%s): marshal raw value: %w", module, key, err)
		}
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return fallback, fmt.Errorf("settings.GetGroup(%s/%s): unmarshal: %w", module, key, err)
	}
	if result == nil {
		return fallback, nil
	}
	return result, nil
}

// Get loads g, falling back to its entry in Defaults.
func Get(app core.App, g Group) (map[string]any, error) {
	return GetGroup(app, g.Module, g.Key, Defaults[g])
}

// SetGroup upserts the group identified by (module, key).
func SetGroup(app core.App, module, key string, value map[string]any) error {
	record, err := find(app, module, key)
	if err != nil {
		col, colErr := app.FindCollectionByNameOrId(collection)
		if colErr != nil {
			return fmt.Errorf("settings.SetGroup(%s/%s): find collection: %w", module, key, colErr)
		}
		record = core.NewRecord(col)
		record.Set("module", module)
		record.Set("key", key)
	}

	record.Set("value", value)
	if err := app.Save(record); err != nil {
		return fmt.Errorf("settings.SetGroup(%s/%s): save: %w", module, key, err)
	}
	return nil
}

// SeedDefaults inserts every group of Defaults that has no row yet. Existing
// rows are left as the admin configured them. It returns the groups inserted.
func SeedDefaults(app core.App) ([]Group, error) {
	var seeded []Group
	for _, g := range []Group{DashboardRefresh, SupportTickets, TenantDefaults} {
		if _, err := find(app, g.Module, g.Key); err == nil {
			continue
		}
		if err := SetGroup(app, g.Module, g.Key, Defaults[g]); err != nil {
			return seeded, err
		}
		seeded = append(seeded, g)
	}
	return seeded, nil
}

func find(app core.App, module, key string) (*core.Record, error) {
	return app.FindFirstRecordByFilter(
		collection,
		"module = {:module} && key = {:key}",
		dbx.Params{"module": module, "key": key},
	)
}

// Int reads an integer field. Numbers, numeric strings and json.Number are
// accepted; anything else yields fallback.
func Int(group map[string]any, field string, fallback int) int {
	v, ok := group[field]
	if !ok || v == nil {
		return fallback
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return fallback
	}
	return n
}

// Bool reads a boolean field. "true"/"false" strings are accepted.
func Bool(group map[string]any, field string, fallback bool) bool {
	v, ok := group[field]
	if !ok || v == nil {
		return fallback
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return fallback
	}
	return b
}

// String reads a string field. Non-string values yield fallback.
func String(group map[string]any, field string, fallback string) string {
	v, ok := group[field]
	if !ok || v == nil {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

// StringSlice reads a string array, also accepting JSON-decoded []any and
// comma-separated strings. Entries are trimmed and empty ones dropped.
func StringSlice(group map[string]any, field string) []string {
	v, ok := group[field]
	if !ok || v == nil {
		return []string{}
	}

	var items []string
	switch raw := v.(type) {
	case []string:
		items = raw
	case []any:
		for _, item := range raw {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	case string:
		items = strings.Split(raw, ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
