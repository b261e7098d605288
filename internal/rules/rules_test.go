package rules_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growyourneed/platform/internal/rules"
)

func TestParseShapes(t *testing.T) {
	t.Run("single comparison", func(t *testing.T) {
		expr, err := rules.Parse("@request.auth.role = 'Owner'")
		require.NoError(t, err)
		assert.Equal(t, rules.Compare{
			Op:    rules.Eq,
			Left:  rules.Auth("role"),
			Right: rules.Text("Owner"),
		}, expr)
	})

	t.Run("field against auth", func(t *testing.T) {
		expr, err := rules.Parse("provider_user = @request.auth.id")
		require.NoError(t, err)
		assert.Equal(t, rules.Compare{
			Op:    rules.Eq,
			Left:  rules.Field("provider_user"),
			Right: rules.Auth("id"),
		}, expr)
	})

	t.Run("and binds tighter than or", func(t *testing.T) {
		expr, err := rules.Parse("a = 1 || b = 2 && c = 3")
		require.NoError(t, err)
		or, ok := expr.(rules.Or)
		require.True(t, ok, "expected Or at the root, got %T", expr)
		_, ok = or.Right.(rules.And)
		assert.True(t, ok, "expected And on the right, got %T", or.Right)
	})

	t.Run("parentheses group", func(t *testing.T) {
		expr, err := rules.Parse("(a = 1 || b = 2) && c = 3")
		require.NoError(t, err)
		and, ok := expr.(rules.And)
		require.True(t, ok, "expected And at the root, got %T", expr)
		_, ok = and.Left.(rules.Or)
		assert.True(t, ok)
	})
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		text string
		want error
	}{
		{"empty", "   ", rules.ErrEmptyExpression},
		{"numeric comparison", "age > 18", rules.ErrUnsupportedOperator},
		{"like operator", "name ~ 'abc'", rules.ErrUnsupportedOperator},
		{"request body", "@request.body.role = 'Owner'", rules.ErrUnsupportedOperand},
		{"collection join", "@collection.tenants.id = tenantId", rules.ErrUnsupportedOperand},
		{"modifier", "tags:length = 2", rules.ErrUnsupportedOperand},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := rules.Parse(tc.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	t.Run("syntax error", func(t *testing.T) {
		_, err := rules.Parse("role = 'Owner' &&")
		assert.Error(t, err)
	})
}

func TestEval(t *testing.T) {
	owner := map[string]any{"id": "u1", "role": "Owner", "tenantId": "t1"}
	teacher := map[string]any{"id": "u2", "role": "Teacher", "tenantId": "t1"}
	outsider := map[string]any{"id": "u3", "role": "Admin", "tenantId": "t2"}
	record := map[string]any{"id": "r1", "tenantId": "t1", "user": "u2"}

	isolation := "@request.auth.tenantId = tenantId || @request.auth.role = 'Owner'"

	cases := []struct {
		name string
		rule string
		auth map[string]any
		want bool
	}{
		{"owner passes role gate", isolation, owner, true},
		{"same tenant passes", isolation, teacher, true},
		{"other tenant denied", isolation, outsider, false},
		{"guest denied", isolation, nil, false},
		{"authenticated check", "@request.auth.id != ''", teacher, true},
		{"authenticated check for guest", "@request.auth.id != ''", nil, false},
		{"owner field", "user = @request.auth.id", teacher, true},
		{"owner field mismatch", "user = @request.auth.id", owner, false},
		{"null literal matches missing field", "archived = null", teacher, true},
		{"dotted path", "meta.plan = 'pro'", teacher, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := rules.Compile(rules.Ptr(tc.rule))
			require.NoError(t, err)
			got := rule.Allow(rules.Context{Auth: tc.auth, Record: record})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvalNestedRecord(t *testing.T) {
	rule := rules.MustCompile(rules.Ptr("meta.plan = 'pro' && seats = 10"))
	ctx := rules.Context{
		Auth:   map[string]any{"id": "u1"},
		Record: map[string]any{"meta": map[string]any{"plan": "pro"}, "seats": float64(10)},
	}
	assert.True(t, rule.Allow(ctx))
}

func TestQuotedLiteralKeepsInnerQuotes(t *testing.T) {
	expr, err := rules.Parse(`name = "'quoted'"`)
	require.NoError(t, err)
	assert.Equal(t, rules.Compare{Op: rules.Eq, Left: rules.Field("name"), Right: rules.Text("'quoted'")}, expr)

	rule := rules.MustCompile(rules.Ptr(`name = "'quoted'"`))
	assert.True(t, rule.Allow(rules.Context{Auth: map[string]any{"id": "u1"}, Record: map[string]any{"name": "'quoted'"}}))
	assert.False(t, rule.Allow(rules.Context{Auth: map[string]any{"id": "u1"}, Record: map[string]any{"name": "quoted"}}))
}

func TestSlotSemantics(t *testing.T) {
	locked := rules.MustCompile(nil)
	public := rules.MustCompile(rules.Ptr(""))

	assert.True(t, locked.Locked())
	assert.False(t, locked.Allow(rules.Context{Auth: map[string]any{"id": "u1", "role": "Owner"}}))
	assert.True(t, locked.Allow(rules.Context{Superuser: true}))

	assert.True(t, public.Public())
	assert.True(t, public.Allow(rules.Context{}))

	gated := rules.MustCompile(rules.Ptr("@request.auth.role = 'Owner'"))
	assert.True(t, gated.Allow(rules.Context{Superuser: true}))
}

func TestStringRoundTrip(t *testing.T) {
	inputs := []string{
		"@request.auth.role = 'Owner'",
		"@request.auth.tenantId = tenantId || @request.auth.role = 'Owner'",
		"(a = 1 || b = 2) && c != 'x'",
		"@request.auth.id != '' && user = @request.auth.id",
	}
	for _, in := range inputs {
		first, err := rules.Parse(in)
		require.NoError(t, err, in)
		second, err := rules.Parse(first.String())
		require.NoError(t, err, first.String())
		assert.Equal(t, first, second, in)
	}
}
