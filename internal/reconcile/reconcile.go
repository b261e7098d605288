// Package reconcile compares the collections a PocketBase instance has with
// the collections the platform expects, and creates the missing ones.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/growyourneed/platform/internal/ensure"
	"github.com/growyourneed/platform/internal/schema"
)

// CollectionStore is the part of a PocketBase instance the reconciler uses.
// backend.Local and backend.Remote implement it.
type CollectionStore interface {
	CollectionNames(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, def schema.Definition) error
}

// Missing returns the names in expected that are not in actual, keeping the
// order of expected and dropping duplicates.
func Missing(expected, actual []string) []string {
	have := make(map[string]bool, len(actual))
	for _, name := range actual {
		have[name] = true
	}
	var out []string
	for _, name := range expected {
		if have[name] {
			continue
		}
		have[name] = true
		out = append(out, name)
	}
	return out
}

// Report is the outcome of a diff.
type Report struct {
	Expected []string `json:"expected"`
	Present  []string `json:"present"`
	Missing  []string `json:"missing"`
}

// Reconciler creates expected collections that do not exist yet.
type Reconciler struct {
	Store    CollectionStore
	Expected []string
	// Define returns the definition used to create a missing collection.
	Define func(name string) schema.Definition
	Logger   zerolog.Logger
}

// Diff lists the instance's collections and reports which expected ones are
// present and which are missing.
func (r *Reconciler) Diff(ctx context.Context) (Report, error) {
	actual, err := r.Store.CollectionNames(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list collections: %w", err)
	}

	missing := Missing(r.Expected, actual)
	isMissing := make(map[string]bool, len(missing))
	for _, name := range missing {
		isMissing[name] = true
	}

	rep := Report{Expected: r.Expected, Missing: missing}
	seen := map[string]bool{}
	for _, name := range r.Expected {
		if isMissing[name] || seen[name] {
			continue
		}
		seen[name] = true
		rep.Present = append(rep.Present, name)
	}
	return rep, nil
}

// Apply creates every missing collection. Each creation is independent; a
// failure is recorded in the result and the remaining collections are still
// attempted. Running Apply again only retries what is still missing.
func (r *Reconciler) Apply(ctx context.Context) (Report, ensure.Result, error) {
	rep, err := r.Diff(ctx)
	if err != nil {
		return Report{}, ensure.Result{}, err
	}
	if len(rep.Missing) == 0 {
		r.Logger.Debug().Int("expected", len(rep.Expected)).Msg("all collections present")
		return rep, ensure.Result{}, nil
	}

	store := ensure.Funcs[string]{
		// the diff already established absence
		ExistsFunc: func(context.Context, string) (bool, error) { return false, nil },
		CreateFunc: func(ctx context.Context, name string) error {
			return r.Store.CreateCollection(ctx, r.Define(name))
		},
	}
	res := ensure.Records[string](ctx, store, rep.Missing, func(name string) string { return name })

	for _, name := range res.Created {
		r.Logger.Info().Str("collection", name).Msg("collection created")
	}
	for _, f := range res.Failed {
		r.Logger.Error().Err(f.Err).Str("collection", f.Key).Msg("collection create failed")
	}
	return rep, res, nil
}
