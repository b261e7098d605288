package rules

import (
	"strings"

	"github.com/spf13/cast"
)

// Expr is a node of the rule expression tree.
type Expr interface {
	Eval(ctx Context) bool
	String() string
}

// Op is a comparison operator.
type Op string

const (
	Eq  Op = "="
	Neq Op = "!="
)

// OperandKind tags an Operand.
type OperandKind int

const (
	Literal OperandKind = iota
	AuthField
	RecordField
)

const authPrefix = "@request.auth."

// Operand is one side of a comparison.
//
// For AuthField, Value is the field name without the @request.auth. prefix.
// For RecordField, Value is a field name or dotted path.
// For Literal, Value is the literal text; Quoted distinguishes 'text' from
// bare numbers and the true/false/null keywords.
type Operand struct {
	Kind   OperandKind
	Value  string
	Quoted bool
}

// Auth builds an @request.auth.<field> operand.
func Auth(field string) Operand { return Operand{Kind: AuthField, Value: field} }

// Field builds a record field operand.
func Field(path string) Operand { return Operand{Kind: RecordField, Value: path} }

// Text builds a quoted literal operand.
func Text(v string) Operand { return Operand{Kind: Literal, Value: v, Quoted: true} }

func (o Operand) resolve(ctx Context) string {
	switch o.Kind {
	case AuthField:
		if ctx.Auth == nil {
			return ""
		}
		return lookup(ctx.Auth, o.Value)
	case RecordField:
		return lookup(ctx.Record, o.Value)
	}
	if !o.Quoted && o.Value == "null" {
		return ""
	}
	return o.Value
}

func (o Operand) String() string {
	switch o.Kind {
	case AuthField:
		return authPrefix + o.Value
	case RecordField:
		return o.Value
	}
	if !o.Quoted {
		return o.Value
	}
	return "'" + strings.ReplaceAll(o.Value, "'", `\'`) + "'"
}

// lookup resolves a plain key first, then walks a dotted path through nested maps.
func lookup(m map[string]any, path string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[path]; ok {
		return stringify(v)
	}
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		next, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = next[part]
		if !ok {
			return ""
		}
	}
	return stringify(cur)
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// Compare is a binary comparison between two operands.
type Compare struct {
	Op    Op
	Left  Operand
	Right Operand
}

func (c Compare) Eval(ctx Context) bool {
	l, r := c.Left.resolve(ctx), c.Right.resolve(ctx)
	if c.Op == Neq {
		return l != r
	}
	return l == r
}

func (c Compare) String() string {
	return c.Left.String() + " " + string(c.Op) + " " + c.Right.String()
}

// And is true when both sides are true.
type And struct {
	Left, Right Expr
}

func (a And) Eval(ctx Context) bool { return a.Left.Eval(ctx) && a.Right.Eval(ctx) }

func (a And) String() string {
	return wrap(a.Left, true) + " && " + wrap(a.Right, true)
}

// Or is true when either side is true.
type Or struct {
	Left, Right Expr
}

func (o Or) Eval(ctx Context) bool { return o.Left.Eval(ctx) || o.Right.Eval(ctx) }

func (o Or) String() string {
	return wrap(o.Left, false) + " || " + wrap(o.Right, false)
}

// wrap parenthesizes an Or nested under an And so String round-trips through Parse.
func wrap(e Expr, underAnd bool) string {
	if _, ok := e.(Or); ok && underAnd {
		return "(" + e.String() + ")"
	}
	return e.String()
}
