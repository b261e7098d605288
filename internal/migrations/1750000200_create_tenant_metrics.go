package migrations

import (
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/growyourneed/platform/internal/catalog"
)

// Creates tenant_usage and tenant_health_history. Rows are written by the
// backend only; tenant members and Owners may read them.
func init() {
	m.Register(
		create(catalog.TenantUsage, catalog.TenantHealthHistory),
		drop(catalog.TenantUsage, catalog.TenantHealthHistory),
	)
}
