package migrations

import (
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/growyourneed/platform/internal/catalog"
)

// Creates audit_logs.
//
// Access rules:
//   - List/View: the actor, Owners and superusers
//   - Create/Update/Delete: forbidden (all writes go through audit.Write on the backend)
func init() {
	m.Register(create(catalog.AuditLogs), drop(catalog.AuditLogs))
}
