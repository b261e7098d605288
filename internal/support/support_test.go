package support_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/support"

	// trigger init() registrations
	_ "github.com/growyourneed/platform/internal/migrations"
)

func TestNewReference(t *testing.T) {
	a, b := support.NewReference(), support.NewReference()
	assert.True(t, strings.HasPrefix(a, "GYN-"))
	assert.Len(t, a, 14)
	assert.NotEqual(t, a, b)
}

func newUser(t *testing.T, app core.App, email, tenantID string) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId("users")
	require.NoError(t, err)
	u := core.NewRecord(col)
	u.SetEmail(email)
	u.SetPassword("password123")
	u.Set("tenantId", tenantID)
	u.Set("role", catalog.RoleTeacher)
	require.NoError(t, app.Save(u))
	return u
}

func newTenant(t *testing.T, app core.App, slug string) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId("tenants")
	require.NoError(t, err)
	rec := core.NewRecord(col)
	rec.Set("name", slug)
	rec.Set("slug", slug)
	rec.Set("plan", "free")
	rec.Set("status", "active")
	require.NoError(t, app.Save(rec))
	return rec
}

func TestFile(t *testing.T) {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	defer app.Cleanup()

	tenant := newTenant(t, app, "acme")
	user := newUser(t, app, "teacher@acme.test", tenant.Id)

	rec, err := support.File(app, user, support.Report{
		Subject:      "  Page crashed  ",
		Source:       support.SourceErrorBoundary,
		ErrorContext: map[string]any{"route": "/dashboard"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Page crashed", rec.GetString("subject"))
	assert.Equal(t, catalog.TicketOpen, rec.GetString("status"))
	assert.Equal(t, "normal", rec.GetString("priority"))
	assert.Equal(t, support.SourceErrorBoundary, rec.GetString("source"))
	assert.Equal(t, user.Id, rec.GetString("reporter"))
	assert.Equal(t, tenant.Id, rec.GetString("tenantId"))
	assert.True(t, strings.HasPrefix(rec.GetString("reference"), "GYN-"))
}

func TestFileWithoutAuth(t *testing.T) {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	defer app.Cleanup()

	rec, err := support.File(app, nil, support.Report{Subject: "billing question", Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, "high", rec.GetString("priority"))
	assert.Equal(t, support.SourceManual, rec.GetString("source"))
	assert.Empty(t, rec.GetString("reporter"))
	assert.Empty(t, rec.GetString("tenantId"))
}

func TestFileRequiresSubject(t *testing.T) {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	defer app.Cleanup()

	_, err = support.File(app, nil, support.Report{Subject: "   "})
	assert.ErrorIs(t, err, support.ErrSubjectRequired)
}

func TestFileTruncatesSubjectOnRunes(t *testing.T) {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	defer app.Cleanup()

	rec, err := support.File(app, nil, support.Report{Subject: strings.Repeat("é", 250), Source: support.SourceManual})
	require.NoError(t, err)

	subject := rec.GetString("subject")
	assert.True(t, utf8.ValidString(subject))
	assert.Equal(t, 200, utf8.RuneCountInString(subject))
}
