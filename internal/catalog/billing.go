package catalog

import "github.com/growyourneed/platform/internal/schema"

// BillingPlans is the public price list.
var BillingPlans = schema.Definition{
	Name: "billing_plans",
	Fields: []schema.Field{
		{Name: "key", Type: schema.FieldText, Required: true, Unique: true, Constraints: schema.Constraints{
			MaxLength: 64,
			Pattern:   `^[a-z0-9_]+$`,
		}},
		{Name: "name", Type: schema.FieldText, Required: true, Constraints: schema.Constraints{MaxLength: 120}},
		{Name: "price_cents", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0), OnlyInt: true}},
		{Name: "currency", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 3}},
		{Name: "interval", Type: schema.FieldSelect, Constraints: schema.Constraints{Values: []string{"month", "year"}}},
		{Name: "features", Type: schema.FieldJSON},
		{Name: "stripe_price_id", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 255}},
		{Name: "active", Type: schema.FieldBool},
	},
	Rules: schema.Rules{
		List:   schema.Rule(""),
		View:   schema.Rule(""),
		Create: ruleOwner,
		Update: ruleOwner,
		Delete: ruleOwner,
	},
}

// Subscriptions links a tenant to its current plan.
var Subscriptions = schema.Definition{
	Name: "subscriptions",
	Fields: []schema.Field{
		tenantRef(true),
		{Name: "plan", Type: schema.FieldRelation, Required: true, Constraints: schema.Constraints{Target: "billing_plans", MaxSelect: 1}},
		{Name: "status", Type: schema.FieldSelect, Required: true, Constraints: schema.Constraints{
			Values: []string{"trialing", "active", "past_due", "cancelled"},
		}},
		{Name: "stripe_customer_id", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 255}},
		{Name: "stripe_subscription_id", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 255}},
		{Name: "current_period_end", Type: schema.FieldDate},
	},
	Indexes: []schema.Index{
		{Name: "idx_subscriptions_tenant", Columns: []string{"tenantId"}},
	},
	Rules: schema.Rules{
		List:   ruleTenantAdmin,
		View:   ruleTenantAdmin,
		Create: ruleOwner,
		Update: ruleOwner,
		Delete: ruleOwner,
	},
	TenantScoped: true,
}

// Invoices are written by the payment flow; tenants only read them.
var Invoices = schema.Definition{
	Name: "invoices",
	Fields: []schema.Field{
		tenantRef(true),
		{Name: "subscription", Type: schema.FieldRelation, Constraints: schema.Constraints{Target: "subscriptions", MaxSelect: 1}},
		{Name: "number", Type: schema.FieldText, Required: true, Unique: true, Constraints: schema.Constraints{MaxLength: 64}},
		{Name: "amount_cents", Type: schema.FieldNumber, Constraints: schema.Constraints{Min: schema.Float(0), OnlyInt: true}},
		{Name: "currency", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 3}},
		{Name: "status", Type: schema.FieldSelect, Required: true, Constraints: schema.Constraints{
			Values: []string{"draft", "open", "paid", "void", "uncollectible"},
		}},
		{Name: "payment_intent", Type: schema.FieldText, Constraints: schema.Constraints{MaxLength: 255}},
		{Name: "issued_at", Type: schema.FieldDate},
		{Name: "due_at", Type: schema.FieldDate},
		{Name: "pdf", Type: schema.FieldFile, Constraints: schema.Constraints{
			MaxSelect: 1,
			MaxSize:   5 << 20,
			MimeTypes: []string{"application/pdf"},
		}},
	},
	Indexes: []schema.Index{
		{Name: "idx_invoices_tenant", Columns: []string{"tenantId", "issued_at"}},
	},
	Rules: schema.Rules{
		List: ruleTenantAdmin,
		View: ruleTenantAdmin,
	},
	TenantScoped: true,
}
