package reconcile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growyourneed/platform/internal/reconcile"
	"github.com/growyourneed/platform/internal/schema"
)

type fakeStore struct {
	names   []string
	reject  map[string]bool
	listErr error
	created []schema.Definition
}

func (f *fakeStore) CollectionNames(context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.names...), nil
}

func (f *fakeStore) CreateCollection(_ context.Context, def schema.Definition) error {
	if f.reject[def.Name] {
		return errors.New("validation failed")
	}
	f.created = append(f.created, def)
	f.names = append(f.names, def.Name)
	return nil
}

func newReconciler(store *fakeStore, expected ...string) *reconcile.Reconciler {
	return &reconcile.Reconciler{
		Store:    store,
		Expected: expected,
		Define:   func(name string) schema.Definition { return schema.Fallback(name, false) },
		Logger:   zerolog.Nop(),
	}
}

func TestMissing(t *testing.T) {
	expected := []string{"tenants", "users", "invoices", "tenants"}
	actual := []string{"users", "_superusers", "other"}

	assert.Equal(t, []string{"tenants", "invoices"}, reconcile.Missing(expected, actual))
	assert.Empty(t, reconcile.Missing(expected, append(actual, "tenants", "invoices")))
	assert.Empty(t, reconcile.Missing(nil, actual))
}

func TestDiff(t *testing.T) {
	store := &fakeStore{names: []string{"users", "tenants"}}
	r := newReconciler(store, "tenants", "users", "notifications")

	rep, err := r.Diff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tenants", "users"}, rep.Present)
	assert.Equal(t, []string{"notifications"}, rep.Missing)
	assert.Empty(t, store.created)
}

func TestDiff_ListError(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection refused")}
	_, err := newReconciler(store, "tenants").Diff(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestApply_SecondRunFindsNothing(t *testing.T) {
	store := &fakeStore{names: []string{"users"}}
	r := newReconciler(store, "users", "tenants", "tenant_health_history")

	rep, res, err := r.Apply(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tenants", "tenant_health_history"}, rep.Missing)
	assert.ElementsMatch(t, rep.Missing, res.Created)
	assert.True(t, res.OK())

	rep, res, err = r.Apply(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rep.Missing)
	assert.Zero(t, res.Total())
}

func TestApply_PartialFailure(t *testing.T) {
	store := &fakeStore{reject: map[string]bool{"invoices": true}}
	r := newReconciler(store, "tenants", "invoices", "notifications")

	_, res, err := r.Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tenants", "notifications"}, res.Created)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "invoices", res.Failed[0].Key)

	rep, res, err := r.Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"invoices"}, rep.Missing)
	assert.Len(t, res.Failed, 1)
}

func TestApply_UsesDefine(t *testing.T) {
	store := &fakeStore{}
	r := newReconciler(store, "crm_contacts")
	r.Define = func(name string) schema.Definition { return schema.Fallback(name, true) }

	_, _, err := r.Apply(context.Background())
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.True(t, store.created[0].TenantScoped)
}

func TestAuditSources(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("pb_migrations/1700_health.js", `migrate((app) => {
  const collection = new Collection({
    "name": "tenant_health_history",
    "type": "base"
  });
})`)
	write("migrations/1750_tenants.go", `col := core.NewBaseCollection("tenants")`)
	write("schema.json", `[{"name":"invoices","fields":[]}]`)
	write("node_modules/x/index.js", `{"name": "notifications"}`)
	write("README.md", `"name": "announcements"`)
	write("seed/users.js", `const owner = { username: "subscriptions", display_name: 'feature_flags' }`)

	rep, err := reconcile.AuditSources(root, []string{"tenant_health_history", "tenants", "invoices", "notifications", "announcements", "subscriptions", "feature_flags"})
	require.NoError(t, err)

	assert.Contains(t, rep.Present, "tenant_health_history")
	assert.Contains(t, rep.Present, "tenants")
	assert.Contains(t, rep.Present, "invoices")
	assert.Equal(t, []string{"notifications", "announcements", "subscriptions", "feature_flags"}, rep.Missing)
	assert.Len(t, rep.Present["tenant_health_history"], 1)
}
