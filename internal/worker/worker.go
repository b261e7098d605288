// Package worker manages the embedded Asynq task worker.
//
// The worker runs as a goroutine inside the PocketBase process,
// connecting to Redis for persistent async task processing. A scheduler
// enqueues the periodic tenant health snapshot.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog"

	"github.com/growyourneed/platform/internal/audit"
	"github.com/growyourneed/platform/internal/backend"
	"github.com/growyourneed/platform/internal/tenanthealth"
)

const (
	// Task type constants
	TaskSchemaReconcile      = "schema:reconcile"
	TaskTenantHealthSnapshot = "tenant:health_snapshot"
)

// Options configures the worker.
type Options struct {
	RedisAddr string
	// Schedule is the cron spec for tenant health snapshots, e.g. "@every 1h".
	// Empty disables the scheduler.
	Schedule string
	Logger   zerolog.Logger
}

// Worker manages the Asynq server, scheduler and a shared client for enqueuing tasks.
type Worker struct {
	server    *asynq.Server
	client    *asynq.Client
	scheduler *asynq.Scheduler
	handlers  *Handlers
	opts      Options
}

// New creates a Worker with Asynq server and shared client.
// Call Start() to begin processing and Shutdown() to stop.
func New(app core.App, opts Options) *Worker {
	if opts.RedisAddr == "" {
		opts.RedisAddr = "localhost:6379"
	}
	redisOpt := asynq.RedisClientOpt{Addr: opts.RedisAddr}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	w := &Worker{
		server:   srv,
		client:   asynq.NewClient(redisOpt),
		handlers: &Handlers{App: app, Logger: opts.Logger},
		opts:     opts,
	}
	if opts.Schedule != "" {
		w.scheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	}
	return w
}

// Start begins processing tasks in a background goroutine and registers the
// periodic snapshot. This should be called only once during the application
// lifecycle.
func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSchemaReconcile, w.handlers.HandleSchemaReconcile)
	mux.HandleFunc(TaskTenantHealthSnapshot, w.handlers.HandleTenantHealthSnapshot)

	if w.scheduler != nil {
		task, err := NewTenantHealthSnapshotTask("")
		if err != nil {
			return err
		}
		if _, err := w.scheduler.Register(w.opts.Schedule, task, asynq.Queue("low")); err != nil {
			return fmt.Errorf("register snapshot schedule %q: %w", w.opts.Schedule, err)
		}
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	go func() {
		if err := w.server.Run(mux); err != nil {
			w.opts.Logger.Error().Err(err).Msg("asynq worker error")
		}
	}()
	w.opts.Logger.Info().Str("redis", w.opts.RedisAddr).Str("schedule", w.opts.Schedule).Msg("worker started")
	return nil
}

// Client returns the shared Asynq client for enqueuing tasks.
func (w *Worker) Client() *asynq.Client {
	return w.client
}

// EnqueueSchemaReconcile queues a reconcile of the platform collections.
func (w *Worker) EnqueueSchemaReconcile(ctx context.Context) (*asynq.TaskInfo, error) {
	return w.client.EnqueueContext(ctx, asynq.NewTask(TaskSchemaReconcile, nil), asynq.Queue("critical"), asynq.MaxRetry(3))
}

// Shutdown gracefully stops the worker and closes the client connection.
func (w *Worker) Shutdown() {
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.server.Shutdown()
	_ = w.client.Close()
}

// SnapshotPayload targets one tenant; an empty TenantID snapshots all of them.
type SnapshotPayload struct {
	TenantID string `json:"tenantId,omitempty"`
}

// NewTenantHealthSnapshotTask builds a snapshot task for tenantID, or for
// every tenant when tenantID is empty.
func NewTenantHealthSnapshotTask(tenantID string) (*asynq.Task, error) {
	payload, err := json.Marshal(SnapshotPayload{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTenantHealthSnapshot, payload), nil
}

// Handlers holds the task handlers. They only need the app, so they can be
// exercised without Redis.
type Handlers struct {
	App    core.App
	Logger zerolog.Logger
}

// HandleSchemaReconcile creates missing platform collections. A partial
// failure is returned so Asynq retries; already created collections are
// skipped on the retry.
func (h *Handlers) HandleSchemaReconcile(ctx context.Context, t *asynq.Task) error {
	rep, res, err := backend.NewReconciler(backend.NewLocal(h.App), h.Logger).Apply(ctx)
	if err != nil {
		return err
	}

	status := audit.StatusSuccess
	if !res.OK() {
		status = audit.StatusFailed
	}
	audit.Write(h.App, audit.Entry{
		UserID:       "system",
		Action:       audit.ActionSchemaReconcile,
		ResourceType: "schema",
		Status:       status,
		Detail: map[string]any{
			"missing": len(rep.Missing),
			"created": res.Created,
			"failed":  len(res.Failed),
		},
	})
	return res.Err()
}

// HandleTenantHealthSnapshot records health snapshots.
func (h *Handlers) HandleTenantHealthSnapshot(ctx context.Context, t *asynq.Task) error {
	var p SnapshotPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	if p.TenantID == "" {
		_, err := tenanthealth.RecordAll(h.App, h.Logger)
		return err
	}

	snap, err := tenanthealth.Take(h.App, p.TenantID)
	if err != nil {
		return fmt.Errorf("tenant %s: %v: %w", p.TenantID, err, asynq.SkipRetry)
	}
	return tenanthealth.Record(h.App, snap)
}
