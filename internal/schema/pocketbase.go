package schema

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// ToCollection builds an unsaved PocketBase collection from def.
//
// Relation targets are resolved by name through app, except self references
// which point at the collection being built. Base collections get explicit
// created/updated autodate fields since PocketBase does not add them.
func ToCollection(app core.App, def Definition) (*core.Collection, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}

	var col *core.Collection
	if def.Auth {
		col = core.NewAuthCollection(def.Name)
	} else {
		col = core.NewBaseCollection(def.Name)
	}
	applyRules(col, def.Rules)

	resolve := func(target string) (string, error) {
		if target == def.Name {
			return col.Id, nil
		}
		return resolveTarget(app, target)
	}

	for _, f := range def.Fields {
		if col.Fields.GetByName(f.Name) != nil {
			continue
		}
		field, err := buildField(f, resolve)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", def.Name, err)
		}
		col.Fields.Add(field)
	}

	if col.Fields.GetByName("created") == nil {
		col.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	}
	if col.Fields.GetByName("updated") == nil {
		col.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	}

	addIndexes(col, def)
	return col, nil
}

// Create saves def unless a collection with the same name already exists.
//
// It reports whether the collection was created. Errors from PocketBase
// (duplicate index, invalid rule, unknown relation target) are returned as is;
// nothing is retried.
func Create(app core.App, def Definition) (bool, error) {
	_, err := app.FindCollectionByNameOrId(def.Name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("lookup collection %q: %w", def.Name, err)
	}

	col, err := ToCollection(app, def)
	if err != nil {
		return false, err
	}
	if err := app.Save(col); err != nil {
		return false, fmt.Errorf("save collection %q: %w", def.Name, err)
	}
	return true, nil
}

// CreateAll creates defs in order and stops at the first error.
// Collections saved before the failure stay committed.
func CreateAll(app core.App, defs ...Definition) error {
	for _, def := range defs {
		if _, err := Create(app, def); err != nil {
			return err
		}
	}
	return nil
}

// Extend adds the fields and indexes of def that an existing collection lacks.
// Existing fields are left untouched. It returns the names of added fields.
func Extend(app core.App, def Definition) ([]string, error) {
	col, err := app.FindCollectionByNameOrId(def.Name)
	if err != nil {
		return nil, fmt.Errorf("extend collection %q: %w", def.Name, err)
	}

	resolve := func(target string) (string, error) {
		if target == def.Name {
			return col.Id, nil
		}
		return resolveTarget(app, target)
	}

	var added []string
	for _, f := range def.Fields {
		if col.Fields.GetByName(f.Name) != nil {
			continue
		}
		field, err := buildField(f, resolve)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", def.Name, err)
		}
		col.Fields.Add(field)
		added = append(added, f.Name)
	}
	addIndexes(col, def)

	if err := app.Save(col); err != nil {
		return nil, fmt.Errorf("save collection %q: %w", def.Name, err)
	}
	return added, nil
}

// Drop deletes the named collections in reverse order. Collections that do not
// exist are skipped.
func Drop(app core.App, names ...string) error {
	for i := len(names) - 1; i >= 0; i-- {
		col, err := app.FindCollectionByNameOrId(names[i])
		if errors.Is(err, sql.ErrNoRows) {
			continue // already deleted
		}
		if err != nil {
			return fmt.Errorf("lookup collection %q: %w", names[i], err)
		}
		if err := app.Delete(col); err != nil {
			return fmt.Errorf("delete collection %q: %w", names[i], err)
		}
	}
	return nil
}

func resolveTarget(app core.App, target string) (string, error) {
	col, err := app.FindCollectionByNameOrId(target)
	if err != nil {
		return "", fmt.Errorf("relation target %q: %w", target, err)
	}
	return col.Id, nil
}

func applyRules(col *core.Collection, r Rules) {
	col.ListRule = clone(r.List)
	col.ViewRule = clone(r.View)
	col.CreateRule = clone(r.Create)
	col.UpdateRule = clone(r.Update)
	col.DeleteRule = clone(r.Delete)
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func addIndexes(col *core.Collection, def Definition) {
	for _, f := range def.Fields {
		if !f.Unique {
			continue
		}
		name := fmt.Sprintf("idx_%s_%s", def.Name, f.Name)
		if col.GetIndex(name) == "" {
			col.AddIndex(name, true, quoteColumn(f.Name), "")
		}
	}
	for _, idx := range def.Indexes {
		if col.GetIndex(idx.Name) != "" {
			continue
		}
		cols := make([]string, 0, len(idx.Columns))
		for _, c := range idx.Columns {
			cols = append(cols, quoteColumn(c))
		}
		col.AddIndex(idx.Name, idx.Unique, strings.Join(cols, ", "), "")
	}
}

func quoteColumn(name string) string {
	return "`" + name + "`"
}

func maxSelect(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func buildField(f Field, resolve func(string) (string, error)) (core.Field, error) {
	c := f.Constraints
	switch f.Type {
	case FieldText:
		return &core.TextField{
			Name: f.Name, Required: f.Required, Hidden: f.Hidden,
			Min: c.MinLength, Max: c.MaxLength, Pattern: c.Pattern,
		}, nil
	case FieldNumber:
		return &core.NumberField{
			Name: f.Name, Required: f.Required, Hidden: f.Hidden,
			Min: c.Min, Max: c.Max, OnlyInt: c.OnlyInt,
		}, nil
	case FieldBool:
		return &core.BoolField{Name: f.Name, Required: f.Required, Hidden: f.Hidden}, nil
	case FieldSelect:
		return &core.SelectField{
			Name: f.Name, Required: f.Required, Hidden: f.Hidden,
			Values: c.Values, MaxSelect: maxSelect(c.MaxSelect),
		}, nil
	case FieldJSON:
		return &core.JSONField{Name: f.Name, Required: f.Required, Hidden: f.Hidden, MaxSize: c.MaxSize}, nil
	case FieldRelation:
		id, err := resolve(c.Target)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		return &core.RelationField{
			Name: f.Name, Required: f.Required, Hidden: f.Hidden,
			CollectionId: id, CascadeDelete: c.CascadeDelete, MaxSelect: maxSelect(c.MaxSelect),
		}, nil
	case FieldFile:
		return &core.FileField{
			Name: f.Name, Required: f.Required, Hidden: f.Hidden,
			MaxSelect: maxSelect(c.MaxSelect), MaxSize: c.MaxSize, MimeTypes: c.MimeTypes,
		}, nil
	case FieldDate:
		return &core.DateField{Name: f.Name, Required: f.Required, Hidden: f.Hidden}, nil
	case FieldEmail:
		return &core.EmailField{Name: f.Name, Required: f.Required, Hidden: f.Hidden}, nil
	case FieldURL:
		return &core.URLField{Name: f.Name, Required: f.Required, Hidden: f.Hidden}, nil
	case FieldEditor:
		return &core.EditorField{Name: f.Name, Required: f.Required, Hidden: f.Hidden, MaxSize: c.MaxSize}, nil
	}
	return nil, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
}
