package rules

import (
	"fmt"
	"strings"

	"github.com/ganigeorgiev/fexpr"
)

// Parse turns rule text into an expression tree.
//
// Tokenizing is delegated to fexpr, the same parser PocketBase uses for
// filters and rules. && binds tighter than ||, matching the SQL PocketBase
// generates from a rule.
func Parse(text string) (Expr, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyExpression
	}
	groups, err := fexpr.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return fold(groups)
}

func fold(groups []fexpr.ExprGroup) (Expr, error) {
	if len(groups) == 0 {
		return nil, ErrEmptyExpression
	}

	var disjuncts []Expr
	var current Expr
	for i, g := range groups {
		item, err := convertItem(g.Item)
		if err != nil {
			return nil, err
		}
		switch {
		case current == nil:
			current = item
		case i > 0 && g.Join == fexpr.JoinOr:
			disjuncts = append(disjuncts, current)
			current = item
		default:
			current = And{Left: current, Right: item}
		}
	}
	disjuncts = append(disjuncts, current)

	out := disjuncts[0]
	for _, d := range disjuncts[1:] {
		out = Or{Left: out, Right: d}
	}
	return out, nil
}

func convertItem(item any) (Expr, error) {
	switch v := item.(type) {
	case fexpr.Expr:
		return convertExpr(v)
	case []fexpr.ExprGroup:
		return fold(v)
	}
	return nil, fmt.Errorf("rules: unexpected expression item %T", item)
}

func convertExpr(e fexpr.Expr) (Expr, error) {
	var op Op
	switch e.Op {
	case fexpr.SignEq:
		op = Eq
	case fexpr.SignNeq:
		op = Neq
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedOperator, e.Op)
	}

	left, err := convertToken(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := convertToken(e.Right)
	if err != nil {
		return nil, err
	}
	return Compare{Op: op, Left: left, Right: right}, nil
}

func convertToken(t fexpr.Token) (Operand, error) {
	switch t.Type {
	case fexpr.TokenText:
		return Text(t.Literal), nil
	case fexpr.TokenNumber:
		return Operand{Kind: Literal, Value: t.Literal}, nil
	case fexpr.TokenIdentifier:
		return convertIdentifier(t.Literal)
	}
	return Operand{}, fmt.Errorf("%w %q (%s)", ErrUnsupportedOperand, t.Literal, t.Type)
}

func convertIdentifier(id string) (Operand, error) {
	switch id {
	case "true", "false", "null":
		return Operand{Kind: Literal, Value: id}, nil
	}
	if strings.Contains(id, ":") {
		return Operand{}, fmt.Errorf("%w %q: modifiers are not supported", ErrUnsupportedOperand, id)
	}
	if strings.HasPrefix(id, authPrefix) {
		field := strings.TrimPrefix(id, authPrefix)
		if field == "" {
			return Operand{}, fmt.Errorf("%w %q", ErrUnsupportedOperand, id)
		}
		return Auth(field), nil
	}
	if strings.HasPrefix(id, "@") {
		return Operand{}, fmt.Errorf("%w %q", ErrUnsupportedOperand, id)
	}
	return Field(id), nil
}
