package routes

import (
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"github.com/growyourneed/platform/internal/tenanthealth"
)

const maxHealthHistory = 200

// registerTenantRoutes registers tenant health routes.
//
// Endpoints:
//
//	GET  /api/ext/tenants/{id}/health          — latest snapshots (tenant members, Owner)
//	POST /api/ext/tenants/{id}/health/snapshot — measure and record now (Owner)
func registerTenantRoutes(g *router.RouterGroup[*core.RequestEvent]) {
	t := g.Group("/tenants")

	t.GET("/{id}/health", func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if !canAccessTenant(e, id) {
			return e.ForbiddenError("not a member of this tenant", nil)
		}

		limit := 30
		if raw := e.Request.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return e.BadRequestError("limit must be a positive integer", err)
			}
			limit = min(n, maxHealthHistory)
		}

		rows, err := tenanthealth.Latest(e.App, id, limit)
		if err != nil {
			return e.InternalServerError("failed to load health history", err)
		}

		items := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			items = append(items, map[string]any{
				"score":       r.GetFloat("score"),
				"status":      r.GetString("status"),
				"activeUsers": r.GetInt("active_users"),
				"openTickets": r.GetInt("open_tickets"),
				"checkedAt":   r.GetDateTime("checked_at"),
			})
		}
		return e.JSON(http.StatusOK, map[string]any{"tenantId": id, "items": items})
	})

	t.POST("/{id}/health/snapshot", func(e *core.RequestEvent) error {
		if !isOwner(e) {
			return e.ForbiddenError("Owner access required", nil)
		}
		snap, err := tenanthealth.Take(e.App, e.Request.PathValue("id"))
		if err != nil {
			return e.NotFoundError("tenant not found", err)
		}
		if err := tenanthealth.Record(e.App, snap); err != nil {
			return e.InternalServerError("failed to record snapshot", err)
		}
		return e.JSON(http.StatusOK, snap)
	})
}
