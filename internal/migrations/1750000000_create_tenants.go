package migrations

import (
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/growyourneed/platform/internal/catalog"
)

// Creates tenants, the root of every tenant scoped relation.
//
// Access rules:
//   - List/View: members of the tenant, or Owner
//   - Create/Update/Delete: Owner only
func init() {
	m.Register(create(catalog.Tenants), drop(catalog.Tenants))
}
