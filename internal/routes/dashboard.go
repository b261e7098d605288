package routes

import (
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/settings"
)

// registerDashboardRoutes registers the owner dashboard routes.
//
// Endpoints:
//
//	GET /api/ext/dashboard/summary — platform counters plus the client poll interval
func registerDashboardRoutes(g *router.RouterGroup[*core.RequestEvent]) {
	d := g.Group("/dashboard")
	d.BindFunc(requireOwner)

	d.GET("/summary", func(e *core.RequestEvent) error {
		count := func(collection string, exprs ...dbx.Expression) int64 {
			n, err := e.App.CountRecords(collection, exprs...)
			if err != nil {
				// missing collections count as empty; reconcile reports them
				return 0
			}
			return n
		}

		tenants := map[string]int64{}
		for _, status := range []string{"trial", "active", "suspended", "cancelled"} {
			tenants[status] = count(catalog.Tenants.Name, dbx.HashExp{"status": status})
		}

		refresh, _ := settings.Get(e.App, settings.DashboardRefresh)

		return e.JSON(http.StatusOK, map[string]any{
			"tenants":             tenants,
			"users":               count(catalog.Users.Name),
			"openTickets":         count(catalog.SupportTickets.Name, dbx.HashExp{"status": catalog.TicketOpen}),
			"activeSubscriptions": count(catalog.Subscriptions.Name, dbx.HashExp{"status": "active"}),
			"criticalTenants":     criticalTenants(e.App),
			"pollSeconds":         settings.Int(refresh, "pollSeconds", 30),
		})
	})
}

// criticalTenants counts tenants whose latest health snapshot is critical.
func criticalTenants(app core.App) int {
	var rows []struct {
		Total int `db:"total"`
	}
	err := app.DB().NewQuery(`
		SELECT COUNT(*) AS total FROM tenant_health_history h
		WHERE h.status = 'critical'
		AND h.checked_at = (
			SELECT MAX(checked_at) FROM tenant_health_history WHERE tenantId = h.tenantId
		)`).All(&rows)
	if err != nil || len(rows) == 0 {
		return 0
	}
	return rows[0].Total
}
