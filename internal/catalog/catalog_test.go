package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growyourneed/platform/internal/rules"
	"github.com/growyourneed/platform/internal/schema"
)

func TestCatalogValidates(t *testing.T) {
	require.NoError(t, schema.ValidateSet(All(), nil))
}

func TestEveryRuleCompiles(t *testing.T) {
	for _, def := range All() {
		for _, slot := range def.Rules.Slots() {
			_, err := rules.Compile(slot.Rule)
			assert.NoError(t, err, "%s.%s", def.Name, slot.Action)
		}
	}
	for _, l := range Legacy {
		def := FallbackFor(l.Name)
		for _, slot := range def.Rules.Slots() {
			_, err := rules.Compile(slot.Rule)
			assert.NoError(t, err, "%s.%s", def.Name, slot.Action)
		}
	}
}

func TestRelationTargetsComeFirst(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range All() {
		for _, target := range def.Targets() {
			if target == def.Name {
				continue
			}
			assert.True(t, seen[target], "%s references %s before it is defined", def.Name, target)
		}
		seen[def.Name] = true
	}
}

func TestExpectedIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range Expected() {
		assert.False(t, seen[name], "duplicate expected collection %s", name)
		seen[name] = true
	}
	assert.True(t, seen["tenant_health_history"])
	assert.True(t, seen["school_classes"])
}

func TestTenantScopedCollectionsCarryTenantID(t *testing.T) {
	for _, def := range All() {
		if def.TenantScoped {
			assert.NotNil(t, def.Field("tenantId"), def.Name)
		}
	}
}

func TestDefinitionFor(t *testing.T) {
	def := DefinitionFor("tenants")
	assert.Equal(t, Tenants.Name, def.Name)
	assert.NotNil(t, def.Field("slug"))

	// auth collections are never created, only patched
	def = DefinitionFor("users")
	assert.Nil(t, def.Field("role"))
	assert.NotNil(t, def.Field("data"))

	def = DefinitionFor("school_classes")
	assert.True(t, def.TenantScoped)
	assert.NotNil(t, def.Field("tenantId"))

	def = DefinitionFor("unknown_things")
	assert.False(t, def.TenantScoped)
}

func TestTenantIsolationRule(t *testing.T) {
	rule := rules.MustCompile(TenantHealthHistory.Rules.List)

	own := rules.Context{
		Auth:   map[string]any{"id": "u1", "tenantId": "t1", "role": RoleAdmin},
		Record: map[string]any{"tenantId": "t1"},
	}
	other := rules.Context{
		Auth:   map[string]any{"id": "u1", "tenantId": "t1", "role": RoleAdmin},
		Record: map[string]any{"tenantId": "t2"},
	}
	owner := rules.Context{
		Auth:   map[string]any{"id": "o1", "role": RoleOwner},
		Record: map[string]any{"tenantId": "t2"},
	}

	assert.True(t, rule.Allow(own))
	assert.False(t, rule.Allow(other))
	assert.True(t, rule.Allow(owner))
	assert.False(t, rule.Allow(rules.Context{Record: map[string]any{"tenantId": "t1"}}))
}
