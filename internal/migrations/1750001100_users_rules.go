package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"

	"github.com/growyourneed/platform/internal/catalog"
)

// Locks role and tenantId on the users collection.
func init() {
	m.Register(func(app core.App) error {
		col, err := app.FindCollectionByNameOrId(catalog.Users.Name)
		if err != nil {
			return err
		}
		col.CreateRule = types.Pointer(catalog.UsersCreateRule)
		col.UpdateRule = types.Pointer(catalog.UsersUpdateRule)
		return app.Save(col)
	}, noop)
}
