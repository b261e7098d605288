package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/growyourneed/platform/internal/settings"
)

// Seeds the default settings groups. Rows an admin already customised are
// left alone; seed data is never rolled back.
func init() {
	m.Register(func(app core.App) error {
		_, err := settings.SeedDefaults(app)
		return err
	}, noop)
}
