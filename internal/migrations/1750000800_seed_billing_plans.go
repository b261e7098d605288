package migrations

import (
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

var defaultPlans = []map[string]any{
	{"key": "free", "name": "Free", "price_cents": 0, "currency": "usd", "interval": "month",
		"features": []string{"25 users", "community support"}},
	{"key": "basic", "name": "Basic", "price_cents": 2900, "currency": "usd", "interval": "month",
		"features": []string{"100 users", "email support"}},
	{"key": "pro", "name": "Pro", "price_cents": 9900, "currency": "usd", "interval": "month",
		"features": []string{"1000 users", "priority support", "custom domain"}},
}

// Seeds the public billing plans, insert-if-not-exists by key.
func init() {
	m.Register(func(app core.App) error {
		col, err := app.FindCollectionByNameOrId("billing_plans")
		if err != nil {
			return err
		}
		for _, plan := range defaultPlans {
			_, err := app.FindFirstRecordByFilter(col, "key = {:key}", dbx.Params{"key": plan["key"]})
			if err == nil {
				continue // already seeded
			}
			rec := core.NewRecord(col)
			for k, v := range plan {
				rec.Set(k, v)
			}
			rec.Set("active", true)
			if err := app.Save(rec); err != nil {
				return err
			}
		}
		return nil
	}, noop)
}
