package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"

	"github.com/growyourneed/platform/internal/schema"
)

// Adds an assignee to support_tickets and lets the assignee update the ticket.
func init() {
	m.Register(func(app core.App) error {
		_, err := schema.Extend(app, schema.Definition{
			Name: "support_tickets",
			Fields: []schema.Field{
				{Name: "assignee", Type: schema.FieldRelation, Constraints: schema.Constraints{Target: "users", MaxSelect: 1}},
			},
		})
		if err != nil {
			return err
		}

		col, err := app.FindCollectionByNameOrId("support_tickets")
		if err != nil {
			return err
		}
		col.UpdateRule = types.Pointer("assignee = @request.auth.id || (@request.auth.tenantId = tenantId && @request.auth.role = 'Admin') || @request.auth.role = 'Owner'")
		return app.Save(col)
	}, noop)
}
