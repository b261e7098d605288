package migrations

import (
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/growyourneed/platform/internal/catalog"
)

// Creates support_tickets, notifications and announcements.
func init() {
	m.Register(
		create(catalog.SupportTickets, catalog.Notifications, catalog.Announcements),
		drop(catalog.SupportTickets, catalog.Notifications, catalog.Announcements),
	)
}
