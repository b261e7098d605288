// Package ensure implements the one "make sure these records exist" routine
// shared by collection reconciliation and user seeding.
//
// Items are processed in order and independently: a failing item is recorded
// and the run moves on. Nothing is retried and nothing is rolled back.
package ensure

import (
	"context"
	"errors"
	"fmt"
)

// Store checks and creates items of one kind.
type Store[T any] interface {
	Exists(ctx context.Context, item T) (bool, error)
	Create(ctx context.Context, item T) error
}

// Funcs adapts a pair of functions to Store.
type Funcs[T any] struct {
	ExistsFunc func(ctx context.Context, item T) (bool, error)
	CreateFunc func(ctx context.Context, item T) error
}

func (f Funcs[T]) Exists(ctx context.Context, item T) (bool, error) { return f.ExistsFunc(ctx, item) }
func (f Funcs[T]) Create(ctx context.Context, item T) error         { return f.CreateFunc(ctx, item) }

// Failure is one item that could not be ensured.
type Failure struct {
	Key string
	Err error
}

func (f Failure) Error() string { return fmt.Sprintf("%s: %v", f.Key, f.Err) }
func (f Failure) Unwrap() error { return f.Err }

// Result partitions the processed keys. Every input item appears in exactly
// one of Created, Skipped or Failed.
type Result struct {
	Created []string
	Skipped []string
	Failed  []Failure
}

// OK reports whether no item failed.
func (r Result) OK() bool { return len(r.Failed) == 0 }

// Err joins the item failures, or returns nil.
func (r Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Total is the number of items processed.
func (r Result) Total() int { return len(r.Created) + len(r.Skipped) + len(r.Failed) }

// Records ensures every item exists in store. key names an item in the result.
//
// Once ctx is done the remaining items are marked failed with the context
// error without touching the store.
func Records[T any](ctx context.Context, store Store[T], items []T, key func(T) string) Result {
	var res Result
	for _, item := range items {
		k := key(item)
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, Failure{Key: k, Err: err})
			continue
		}

		exists, err := store.Exists(ctx, item)
		if err != nil {
			res.Failed = append(res.Failed, Failure{Key: k, Err: fmt.Errorf("check: %w", err)})
			continue
		}
		if exists {
			res.Skipped = append(res.Skipped, k)
			continue
		}

		if err := store.Create(ctx, item); err != nil {
			res.Failed = append(res.Failed, Failure{Key: k, Err: fmt.Errorf("create: %w", err)})
			continue
		}
		res.Created = append(res.Created, k)
	}
	return res
}
