package routes

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"github.com/growyourneed/platform/internal/catalog"
)

// registerDirectoryRoutes registers the account lookup used by Owner tooling
// to find which tenant and role an email belongs to.
//
// Endpoints:
//
//	GET /api/ext/directory/lookup?email= — account, role and tenant for an email (Owner)
func registerDirectoryRoutes(g *router.RouterGroup[*core.RequestEvent]) {
	dir := g.Group("/directory")
	dir.BindFunc(requireOwner)

	dir.GET("/lookup", func(e *core.RequestEvent) error {
		email := strings.ToLower(strings.TrimSpace(e.Request.URL.Query().Get("email")))
		if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
			return e.BadRequestError("a valid email is required", err)
		}

		// superuser accounts are only disclosed to superusers
		if e.HasSuperuserAuth() {
			if su, err := e.App.FindAuthRecordByEmail(core.CollectionNameSuperusers, email); err == nil {
				return e.JSON(http.StatusOK, map[string]any{
					"exists":     true,
					"collection": core.CollectionNameSuperusers,
					"id":         su.Id,
				})
			}
		}

		u, err := e.App.FindAuthRecordByEmail(catalog.Users.Name, email)
		if err != nil {
			return e.JSON(http.StatusOK, map[string]any{"exists": false})
		}

		out := map[string]any{
			"exists":     true,
			"collection": catalog.Users.Name,
			"id":         u.Id,
			"role":       u.GetString("role"),
			"tenantId":   u.GetString("tenantId"),
			"verified":   u.Verified(),
		}
		if tenantID := u.GetString("tenantId"); tenantID != "" {
			if t, err := e.App.FindRecordById(catalog.Tenants.Name, tenantID); err == nil {
				out["tenantName"] = t.GetString("name")
				out["tenantStatus"] = t.GetString("status")
			}
		}
		return e.JSON(http.StatusOK, out)
	})
}
