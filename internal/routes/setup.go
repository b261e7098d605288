package routes

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// registerSetupRoutes registers unauthenticated setup routes.
//
// Endpoints:
//
//	GET  /api/gyn/setup/status — check if initial setup is needed
//	POST /api/gyn/setup/init   — create first superuser (only when none exist)
func registerSetupRoutes(se *core.ServeEvent) {
	setup := se.Router.Group("/api/gyn/setup")

	setup.GET("/status", func(e *core.RequestEvent) error {
		needsSetup, err := checkNeedsSetup(e)
		if err != nil {
			// On error, assume setup needed
			needsSetup = true
		}
		return e.JSON(http.StatusOK, map[string]any{"needsSetup": needsSetup})
	})

	setup.POST("/init", func(e *core.RequestEvent) error {
		needsSetup, err := checkNeedsSetup(e)
		if err != nil {
			return e.InternalServerError("", err)
		}
		if !needsSetup {
			return e.JSON(http.StatusForbidden, map[string]string{
				"error": "Setup already completed",
			})
		}

		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := e.BindBody(&body); err != nil {
			return e.BadRequestError("Invalid request body", err)
		}
		body.Email = strings.TrimSpace(body.Email)
		err = validation.Errors{
			"email":    validation.Validate(body.Email, validation.Required, is.EmailFormat),
			"password": validation.Validate(body.Password, validation.Required, validation.Length(10, 72)),
		}.Filter()
		if err != nil {
			return e.BadRequestError("Invalid setup data", err)
		}

		collection, err := e.App.FindCollectionByNameOrId(core.CollectionNameSuperusers)
		if err != nil {
			return e.InternalServerError("", err)
		}

		record := core.NewRecord(collection)
		record.SetEmail(body.Email)
		record.SetPassword(body.Password)

		if err := e.App.Save(record); err != nil {
			return e.BadRequestError("Failed to create superuser", err)
		}

		return e.JSON(http.StatusOK, map[string]string{
			"message": "Setup completed",
		})
	})
}

func checkNeedsSetup(e *core.RequestEvent) (bool, error) {
	// PocketBase auto-creates an installer superuser on fresh databases.
	// Exclude it to match PB's own needInstallerSuperuser check.
	total, err := e.App.CountRecords(core.CollectionNameSuperusers, dbx.Not(dbx.HashExp{
		"email": core.DefaultInstallerEmail,
	}))
	if err != nil {
		return false, err
	}
	return total == 0, nil
}
