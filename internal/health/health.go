// Package health waits for a PocketBase instance to become reachable.
package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnhealthy is returned when every attempt failed.
var ErrUnhealthy = errors.New("health: instance did not become healthy")

// Checker probes the instance once.
type Checker interface {
	Health(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Health(ctx context.Context) error { return f(ctx) }

// Policy is a fixed retry schedule: Attempts probes, Delay apart.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPolicy retries for roughly half a minute.
var DefaultPolicy = Policy{Attempts: 30, Delay: time.Second}

// Wait probes c until it succeeds or the attempts run out. It returns the
// number of attempts used. The last probe error is wrapped together with
// ErrUnhealthy.
func Wait(ctx context.Context, c Checker, p Policy, logger zerolog.Logger) (int, error) {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		lastErr = c.Health(ctx)
		if lastErr == nil {
			logger.Debug().Int("attempt", attempt).Msg("instance healthy")
			return attempt, nil
		}
		logger.Warn().Err(lastErr).Int("attempt", attempt).Int("of", p.Attempts).Msg("instance not healthy yet")

		if attempt == p.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return attempt, fmt.Errorf("%w: %w", ErrUnhealthy, ctx.Err())
		case <-time.After(p.Delay):
		}
	}
	return p.Attempts, fmt.Errorf("%w after %d attempts: %w", ErrUnhealthy, p.Attempts, lastErr)
}
