package routes

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"github.com/growyourneed/platform/internal/audit"
	"github.com/growyourneed/platform/internal/catalog"
)

// registerUserRoutes registers superuser-only user management ext routes.
//
// Routes:
//   - POST /api/ext/users/{collection}/{id}/reset-password — admin force-reset a user's password
func registerUserRoutes(g *router.RouterGroup[*core.RequestEvent]) {
	users := g.Group("/users")
	users.Bind(apis.RequireSuperuserAuth())

	// Admin directly sets a user's password without requiring the current password or email.
	// On success, PocketBase invalidates all existing tokens for that record.
	users.POST("/{collection}/{id}/reset-password", handleAdminResetPassword)
}

func handleAdminResetPassword(e *core.RequestEvent) error {
	collection := e.Request.PathValue("collection")
	id := e.Request.PathValue("id")

	if collection != catalog.Users.Name && collection != core.CollectionNameSuperusers {
		return apis.NewBadRequestError("invalid collection; must be 'users' or '_superusers'", nil)
	}

	var body struct {
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := e.BindBody(&body); err != nil {
		return apis.NewBadRequestError("invalid request body", err)
	}
	if err := validation.Validate(body.Password, validation.Required, validation.Length(8, 72)); err != nil {
		return apis.NewBadRequestError("password: "+err.Error(), nil)
	}
	if body.Password != body.PasswordConfirm {
		return apis.NewBadRequestError("passwords do not match", nil)
	}

	record, err := e.App.FindRecordById(collection, id)
	if err != nil {
		return apis.NewNotFoundError("user not found", err)
	}

	entry := audit.FromRequest(e, audit.Entry{
		TenantID:     record.GetString("tenantId"),
		Action:       audit.ActionPasswordReset,
		ResourceType: "user",
		ResourceID:   record.Id,
		ResourceName: record.Email(),
	})

	record.SetPassword(body.Password)
	if err := e.App.Save(record); err != nil {
		entry.Status = audit.StatusFailed
		entry.Detail = map[string]any{"errorMessage": err.Error()}
		audit.Write(e.App, entry)
		return apis.NewBadRequestError("failed to update password", err)
	}

	entry.Status = audit.StatusSuccess
	audit.Write(e.App, entry)
	return e.JSON(http.StatusOK, map[string]bool{"success": true})
}
