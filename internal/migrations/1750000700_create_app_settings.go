package migrations

import (
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/growyourneed/platform/internal/catalog"
)

// Creates app_settings: one JSON row per (module, key) group, superuser read
// only. Backend code reads and writes it through the settings package.
func init() {
	m.Register(create(catalog.AppSettings), drop(catalog.AppSettings))
}
