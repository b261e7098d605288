package migrations

import (
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/growyourneed/platform/internal/catalog"
)

// Creates feature_flags (public read) and system_health (Owner read).
// Both are written by superusers and the backend only.
func init() {
	m.Register(
		create(catalog.FeatureFlags, catalog.SystemHealth),
		drop(catalog.FeatureFlags, catalog.SystemHealth),
	)
}
