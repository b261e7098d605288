// Package rules models PocketBase collection access rules as a small tagged
// expression tree.
//
// A rule slot holds one of three things:
//   - nil   — no rule; only superusers (and backend code) may perform the action
//   - ""    — empty rule; everyone may perform the action
//   - expr  — a boolean predicate over @request.auth.* and record fields
//
// The supported grammar is the subset the platform actually uses: = and !=
// comparisons joined by && and ||, with parentheses. Enforcement belongs to
// PocketBase; this package exists for dry-run checks, schema validation and
// tests.
package rules

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedOperator = errors.New("rules: unsupported operator")
	ErrUnsupportedOperand  = errors.New("rules: unsupported operand")
	ErrEmptyExpression     = errors.New("rules: empty expression")
)

// Context is the request-side view a rule is evaluated against.
//
// Auth is nil for unauthenticated requests. Record holds the target record
// fields (for list/view/update/delete) or the submitted body (for create).
type Context struct {
	Superuser bool
	Auth      map[string]any
	Record    map[string]any
}

// Rule is a compiled rule slot.
type Rule struct {
	raw  *string
	expr Expr
}

// Compile parses a rule slot. A nil slot and an empty slot are both valid.
func Compile(raw *string) (*Rule, error) {
	r := &Rule{raw: raw}
	if raw == nil || *raw == "" {
		return r, nil
	}
	expr, err := Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("compile rule %q: %w", *raw, err)
	}
	r.expr = expr
	return r, nil
}

// MustCompile is like Compile but panics on error. Meant for static tables.
func MustCompile(raw *string) *Rule {
	r, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// Locked reports whether the slot is nil (superuser only).
func (r *Rule) Locked() bool {
	return r.raw == nil
}

// Public reports whether the slot is the empty rule.
func (r *Rule) Public() bool {
	return r.raw != nil && *r.raw == ""
}

// Expr returns the parsed expression, or nil for locked and public slots.
func (r *Rule) Expr() Expr {
	return r.expr
}

// Allow reports whether ctx satisfies the rule. Superusers bypass every rule.
func (r *Rule) Allow(ctx Context) bool {
	if ctx.Superuser {
		return true
	}
	if r.raw == nil {
		return false
	}
	if r.expr == nil {
		return true
	}
	return r.expr.Eval(ctx)
}

// String renders the slot back into rule syntax. Locked slots render as "null".
func (r *Rule) String() string {
	if r.raw == nil {
		return "null"
	}
	if r.expr == nil {
		return ""
	}
	return r.expr.String()
}

// Ptr returns a pointer to s. Handy for building rule slots inline.
func Ptr(s string) *string {
	return &s
}
