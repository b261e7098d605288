package routes

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"golang.org/x/time/rate"

	"github.com/growyourneed/platform/internal/audit"
	"github.com/growyourneed/platform/internal/support"
)

// registerSupportRoutes registers support routes for any authenticated caller.
//
// Endpoints:
//
//	POST /api/ext/support/report — file a ticket, used by the client error boundary
func registerSupportRoutes(g *router.RouterGroup[*core.RequestEvent]) {
	g.POST("/support/report", func(e *core.RequestEvent) error {
		if !reportLimiter.allow(reportKey(e)) {
			return e.Error(http.StatusTooManyRequests, "too many reports, try again later", nil)
		}

		var body support.Report
		if err := e.BindBody(&body); err != nil {
			return e.BadRequestError("invalid request body", err)
		}
		if body.Source == "" {
			body.Source = support.SourceErrorBoundary
		}

		rec, err := support.File(e.App, e.Auth, body)
		if errors.Is(err, support.ErrSubjectRequired) {
			return e.BadRequestError("subject is required", nil)
		}
		if err != nil {
			return e.BadRequestError("failed to file report", err)
		}

		audit.Write(e.App, audit.FromRequest(e, audit.Entry{
			TenantID:     rec.GetString("tenantId"),
			Action:       audit.ActionSupportReport,
			ResourceType: "support_ticket",
			ResourceID:   rec.Id,
			ResourceName: rec.GetString("reference"),
			Status:       audit.StatusSuccess,
			Detail:       map[string]any{"source": rec.GetString("source")},
		}))

		return e.JSON(http.StatusOK, map[string]any{
			"id":        rec.Id,
			"reference": rec.GetString("reference"),
			"status":    rec.GetString("status"),
		})
	})
}

// reportLimiter throttles error boundary reports per caller.
var reportLimiter = newKeyedLimiter(rate.Every(10*time.Second), 5)

func reportKey(e *core.RequestEvent) string {
	if e.Auth != nil {
		return e.Auth.Collection().Name + ":" + e.Auth.Id
	}
	return "ip:" + e.RealIP()
}

// keyedLimiter holds one token bucket per key. Buckets idle for longer than
// idleTTL are dropped on the next call.
type keyedLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	buckets map[string]*bucket
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newKeyedLimiter(limit rate.Limit, burst int) *keyedLimiter {
	return &keyedLimiter{
		limit:   limit,
		burst:   burst,
		idleTTL: 10 * time.Minute,
		buckets: map[string]*bucket{},
	}
}

func (k *keyedLimiter) allow(key string) bool {
	return k.allowAt(key, time.Now())
}

func (k *keyedLimiter) allowAt(key string, now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	for id, b := range k.buckets {
		if now.Sub(b.seen) > k.idleTTL {
			delete(k.buckets, id)
		}
	}

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}
