// Package migrations contains the PocketBase Go migrations for the platform
// collections.
//
// All migration files use init() to register with the PocketBase migration runner.
// The package must be blank-imported in main.go:
//
//	_ "github.com/growyourneed/platform/internal/migrations"
//
// Creation migrations skip collections that already exist, and their down
// deletes the collections the file declares. Patch and seed migrations have a
// no-op down: field, rule and data changes are never rolled back.
package migrations

import (
	"github.com/pocketbase/pocketbase/core"

	"github.com/growyourneed/platform/internal/schema"
)

// create returns an up func saving defs in order. A failure leaves the
// collections saved before it committed.
func create(defs ...schema.Definition) func(core.App) error {
	return func(app core.App) error {
		return schema.CreateAll(app, defs...)
	}
}

// drop returns a down func deleting defs in reverse order.
func drop(defs ...schema.Definition) func(core.App) error {
	return func(app core.App) error {
		return schema.Drop(app, schema.Names(defs)...)
	}
}

func noop(core.App) error { return nil }
