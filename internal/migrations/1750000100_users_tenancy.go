package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/schema"
)

// Adds name, role and tenantId to the built-in users collection.
// Fields already present are kept as they are.
func init() {
	m.Register(func(app core.App) error {
		_, err := schema.Extend(app, catalog.Users)
		return err
	}, noop)
}
