package migrations

import (
	m "github.com/pocketbase/pocketbase/migrations"

	"github.com/growyourneed/platform/internal/catalog"
)

// Creates billing_plans, subscriptions and invoices.
//
// Access rules:
//   - billing_plans: public read, Owner write
//   - subscriptions: tenant Admins read, Owner write
//   - invoices: tenant Admins read, backend write
func init() {
	m.Register(
		create(catalog.BillingPlans, catalog.Subscriptions, catalog.Invoices),
		drop(catalog.BillingPlans, catalog.Subscriptions, catalog.Invoices),
	)
}
