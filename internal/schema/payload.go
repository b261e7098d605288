package schema

import (
	"fmt"
	"strings"
)

// Payload renders def as the JSON body accepted by POST /api/collections.
//
// resolve maps a relation target name to a collection id on the remote
// instance. Created/updated autodate fields are appended like ToCollection.
func Payload(def Definition, resolve func(name string) (string, error)) (map[string]any, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}

	typ := "base"
	if def.Auth {
		typ = "auth"
	}

	fields := make([]map[string]any, 0, len(def.Fields)+2)
	for _, f := range def.Fields {
		out := map[string]any{
			"name":     f.Name,
			"type":     string(f.Type),
			"required": f.Required,
			"hidden":   f.Hidden,
		}
		c := f.Constraints
		switch f.Type {
		case FieldText:
			out["min"] = c.MinLength
			out["max"] = c.MaxLength
			out["pattern"] = c.Pattern
		case FieldNumber:
			if c.Min != nil {
				out["min"] = *c.Min
			}
			if c.Max != nil {
				out["max"] = *c.Max
			}
			out["onlyInt"] = c.OnlyInt
		case FieldSelect:
			out["values"] = c.Values
			out["maxSelect"] = maxSelect(c.MaxSelect)
		case FieldRelation:
			id, err := resolve(c.Target)
			if err != nil {
				return nil, fmt.Errorf("collection %q: field %q: %w", def.Name, f.Name, err)
			}
			out["collectionId"] = id
			out["cascadeDelete"] = c.CascadeDelete
			out["maxSelect"] = maxSelect(c.MaxSelect)
		case FieldFile:
			out["maxSelect"] = maxSelect(c.MaxSelect)
			out["maxSize"] = c.MaxSize
			out["mimeTypes"] = c.MimeTypes
		case FieldJSON, FieldEditor:
			out["maxSize"] = c.MaxSize
		}
		fields = append(fields, out)
	}
	if def.Field("created") == nil {
		fields = append(fields, map[string]any{"name": "created", "type": "autodate", "onCreate": true})
	}
	if def.Field("updated") == nil {
		fields = append(fields, map[string]any{"name": "updated", "type": "autodate", "onCreate": true, "onUpdate": true})
	}

	return map[string]any{
		"name":       def.Name,
		"type":       typ,
		"fields":     fields,
		"indexes":    indexStatements(def),
		"listRule":   def.Rules.List,
		"viewRule":   def.Rules.View,
		"createRule": def.Rules.Create,
		"updateRule": def.Rules.Update,
		"deleteRule": def.Rules.Delete,
	}, nil
}

func indexStatements(def Definition) []string {
	out := []string{}
	for _, f := range def.Fields {
		if f.Unique {
			out = append(out, fmt.Sprintf(
				"CREATE UNIQUE INDEX `idx_%s_%s` ON `%s` (%s)",
				def.Name, f.Name, def.Name, quoteColumn(f.Name),
			))
		}
	}
	for _, idx := range def.Indexes {
		stmt := "CREATE INDEX"
		if idx.Unique {
			stmt = "CREATE UNIQUE INDEX"
		}
		cols := make([]string, 0, len(idx.Columns))
		for _, c := range idx.Columns {
			cols = append(cols, quoteColumn(c))
		}
		out = append(out, fmt.Sprintf("%s `%s` ON `%s` (%s)", stmt, idx.Name, def.Name, strings.Join(cols, ", ")))
	}
	return out
}
