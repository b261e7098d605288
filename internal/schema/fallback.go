package schema

// Fallback returns the minimal definition used when a collection is expected
// but has no dedicated definition: a name, a JSON data blob and, for tenant
// scoped collections, a plain-text tenantId.
//
// The fallback never declares relations, so fallback collections can be
// created in any order. Rules default to authenticated read and superuser
// write; tenant scoped fallbacks are isolated per tenant.
func Fallback(name string, tenantScoped bool) Definition {
	def := Definition{
		Name: name,
		Fields: []Field{
			{Name: "name", Type: FieldText, Constraints: Constraints{MaxLength: 255}},
			{Name: "data", Type: FieldJSON},
		},
		Rules: Rules{
			List: Rule("@request.auth.id != ''"),
			View: Rule("@request.auth.id != ''"),
		},
	}
	if tenantScoped {
		def.TenantScoped = true
		def.Fields = append(def.Fields, Field{Name: "tenantId", Type: FieldText, Constraints: Constraints{MaxLength: 64}})
		def.Rules.List = Rule("@request.auth.tenantId = tenantId")
		def.Rules.View = Rule("@request.auth.tenantId = tenantId")
	}
	return def
}
