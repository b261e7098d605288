// Package backend adapts a PocketBase instance to the stores used by the
// reconciler and the user provisioner.
//
// Local works in-process on a core.App (migrations, hooks, workers).
// Remote works over REST through pbclient (ops CLI).
package backend

import (
	"github.com/rs/zerolog"

	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/provision"
	"github.com/growyourneed/platform/internal/reconcile"
)

// Store is everything the ops flows need from an instance.
type Store interface {
	reconcile.CollectionStore
	provision.UserStore
}

const usersCollection = "users"

var (
	_ Store = (*Local)(nil)
	_ Store = (*Remote)(nil)
)

// NewReconciler returns a reconciler for the platform catalog on store.
// Missing collections get their full definition when the catalog has one and
// the fallback schema otherwise.
func NewReconciler(store Store, logger zerolog.Logger) *reconcile.Reconciler {
	return &reconcile.Reconciler{
		Store:    store,
		Expected: catalog.Expected(),
		Define:   catalog.DefinitionFor,
		Logger:   logger,
	}
}
