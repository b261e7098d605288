package schema

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/growyourneed/platform/internal/rules"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// fieldNamePattern also admits camelCase, which the platform uses for tenantId.
var fieldNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Validate checks a single definition. All problems are reported together.
func Validate(def Definition) error {
	var errs []error

	if !namePattern.MatchString(def.Name) {
		errs = append(errs, fmt.Errorf("name %q must be snake_case", def.Name))
	}

	seen := make(map[string]bool, len(def.Fields))
	for i, f := range def.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("field #%d: missing name", i))
			continue
		}
		if !fieldNamePattern.MatchString(f.Name) {
			errs = append(errs, fmt.Errorf("field %q: invalid name", f.Name))
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("field %q: duplicate name", f.Name))
		}
		seen[f.Name] = true

		if !knownFieldTypes[f.Type] {
			errs = append(errs, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type))
			continue
		}
		switch f.Type {
		case FieldSelect:
			if len(f.Constraints.Values) == 0 {
				errs = append(errs, fmt.Errorf("field %q: select requires values", f.Name))
			}
		case FieldRelation:
			if f.Constraints.Target == "" {
				errs = append(errs, fmt.Errorf("field %q: relation requires a target", f.Name))
			}
		case FieldNumber:
			c := f.Constraints
			if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
				errs = append(errs, fmt.Errorf("field %q: min > max", f.Name))
			}
		}
	}

	if def.TenantScoped && def.Field("tenantId") == nil {
		errs = append(errs, errors.New("tenant scoped collection requires a tenantId field"))
	}

	for _, idx := range def.Indexes {
		if idx.Name == "" || len(idx.Columns) == 0 {
			errs = append(errs, fmt.Errorf("index %q: name and columns are required", idx.Name))
			continue
		}
		for _, col := range idx.Columns {
			if !seen[col] && col != "id" && col != "created" && col != "updated" {
				errs = append(errs, fmt.Errorf("index %q: unknown column %q", idx.Name, col))
			}
		}
	}

	for _, slot := range def.Rules.Slots() {
		if _, err := rules.Compile(slot.Rule); err != nil {
			errs = append(errs, fmt.Errorf("%s rule: %w", slot.Action, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("collection %q: %w", def.Name, errors.Join(errs...))
}

// ValidateSet validates every definition and the relationships between them.
//
// Collection names must be unique within the set. A relation target must
// either exist already (existing) or be defined anywhere in the set; forward
// references are resolved once the whole set has been applied.
func ValidateSet(defs []Definition, existing []string) error {
	var errs []error

	known := make(map[string]bool, len(defs)+len(existing))
	for _, name := range existing {
		known[name] = true
	}

	names := make(map[string]bool, len(defs))
	for _, d := range defs {
		if err := Validate(d); err != nil {
			errs = append(errs, err)
		}
		if names[d.Name] {
			errs = append(errs, fmt.Errorf("collection %q: defined more than once", d.Name))
		}
		names[d.Name] = true
		known[d.Name] = true
	}

	for _, d := range defs {
		for _, target := range d.Targets() {
			if !known[target] {
				errs = append(errs, fmt.Errorf("collection %q: relation target %q does not exist", d.Name, target))
			}
		}
	}

	return errors.Join(errs...)
}
