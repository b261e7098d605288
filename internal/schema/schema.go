// Package schema describes platform collections as plain data.
//
// A Definition is the source of truth for one PocketBase collection: its
// name, ordered fields, indexes and the five access-rule slots. Definitions
// are turned into PocketBase collections either in-process (ToCollection,
// Create, Drop) or as REST payloads for a remote instance (Payload).
package schema

// FieldType is the fixed set of field kinds a definition may use.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldBool     FieldType = "bool"
	FieldSelect   FieldType = "select"
	FieldJSON     FieldType = "json"
	FieldRelation FieldType = "relation"
	FieldFile     FieldType = "file"
	FieldDate     FieldType = "date"
	FieldEmail    FieldType = "email"
	FieldURL      FieldType = "url"
	FieldEditor   FieldType = "editor"
)

var knownFieldTypes = map[FieldType]bool{
	FieldText: true, FieldNumber: true, FieldBool: true, FieldSelect: true,
	FieldJSON: true, FieldRelation: true, FieldFile: true, FieldDate: true,
	FieldEmail: true, FieldURL: true, FieldEditor: true,
}

// Constraints holds the type-specific options of a field. Only the members
// relevant to the field's type are read.
type Constraints struct {
	// text
	MinLength int    `json:"minLength,omitempty"`
	MaxLength int    `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// number
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	OnlyInt bool     `json:"onlyInt,omitempty"`

	// select
	Values []string `json:"values,omitempty"`

	// select, relation, file
	MaxSelect int `json:"maxSelect,omitempty"`

	// relation: Target is a collection name, resolved to an id at save time.
	Target        string `json:"target,omitempty"`
	CascadeDelete bool   `json:"cascadeDelete,omitempty"`

	// file, json, editor
	MaxSize   int64    `json:"maxSize,omitempty"`
	MimeTypes []string `json:"mimeTypes,omitempty"`
}

// Field is one column of a collection.
type Field struct {
	Name        string      `json:"name"`
	Type        FieldType   `json:"type"`
	Required    bool        `json:"required,omitempty"`
	Unique      bool        `json:"unique,omitempty"`
	Hidden      bool        `json:"hidden,omitempty"`
	Constraints Constraints `json:"constraints,omitempty"`
}

// Index is a declarative index hint over one or more fields.
type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

// Rules holds the five access-rule slots.
// nil means superuser only; "" means always allowed.
type Rules struct {
	List   *string `json:"listRule"`
	View   *string `json:"viewRule"`
	Create *string `json:"createRule"`
	Update *string `json:"updateRule"`
	Delete *string `json:"deleteRule"`
}

// Slots returns the rule slots keyed by action, in a stable order.
func (r Rules) Slots() []Slot {
	return []Slot{
		{"list", r.List},
		{"view", r.View},
		{"create", r.Create},
		{"update", r.Update},
		{"delete", r.Delete},
	}
}

// Slot pairs an action name with its rule.
type Slot struct {
	Action string
	Rule   *string
}

// Same returns a Rules value with rule in every slot.
func Same(rule *string) Rules {
	return Rules{List: rule, View: rule, Create: rule, Update: rule, Delete: rule}
}

// Definition describes one collection.
type Definition struct {
	Name string `json:"name"`
	// Auth marks an auth collection. Auth definitions are only ever patched,
	// never created, by this codebase.
	Auth    bool    `json:"auth,omitempty"`
	Fields  []Field `json:"fields"`
	Indexes []Index `json:"indexes,omitempty"`
	Rules   Rules   `json:"rules"`
	// TenantScoped collections carry a tenantId field and are isolated per tenant.
	TenantScoped bool `json:"tenantScoped,omitempty"`
}

// Field returns the named field, or nil.
func (d Definition) Field(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// Targets returns the relation targets referenced by the definition.
func (d Definition) Targets() []string {
	var out []string
	for _, f := range d.Fields {
		if f.Type == FieldRelation && f.Constraints.Target != "" {
			out = append(out, f.Constraints.Target)
		}
	}
	return out
}

// Names returns the collection names of defs in order.
func Names(defs []Definition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Name)
	}
	return out
}

// Float returns a pointer to v, for number constraints.
func Float(v float64) *float64 {
	return &v
}

// Rule returns a pointer to s, for rule slots.
func Rule(s string) *string {
	return &s
}
