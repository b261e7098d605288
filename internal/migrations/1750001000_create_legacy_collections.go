package migrations

import (
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/schema"
)

// Creates the collections dashboards read from that have no dedicated
// definition, using the minimal fallback schema.
func init() {
	defs := make([]schema.Definition, 0, len(catalog.Legacy))
	for _, l := range catalog.Legacy {
		defs = append(defs, catalog.FallbackFor(l.Name))
	}
	m.Register(create(defs...), drop(defs...))
}
