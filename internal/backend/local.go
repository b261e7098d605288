package backend

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"github.com/growyourneed/platform/internal/provision"
	"github.com/growyourneed/platform/internal/schema"
)

// Local is an in-process PocketBase app. Writes bypass access rules.
type Local struct {
	App core.App
}

// NewLocal wraps app.
func NewLocal(app core.App) *Local { return &Local{App: app} }

func (l *Local) CollectionNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cols, err := l.App.FindAllCollections()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names, nil
}

func (l *Local) CreateCollection(ctx context.Context, def schema.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := schema.Create(l.App, def)
	return err
}

func (l *Local) UserExists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n, err := l.App.CountRecords(usersCollection, dbx.HashExp{"email": email})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *Local) CreateUser(ctx context.Context, u provision.SeedUser) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	col, err := l.App.FindCollectionByNameOrId(usersCollection)
	if err != nil {
		return fmt.Errorf("users collection: %w", err)
	}

	rec := core.NewRecord(col)
	rec.SetEmail(u.Email)
	rec.SetPassword(u.Password)
	rec.SetVerified(true)
	setIfField(col, rec, "name", u.Name)
	setIfField(col, rec, "role", u.Role)
	if u.TenantID != "" {
		setIfField(col, rec, "tenantId", u.TenantID)
	}
	return l.App.Save(rec)
}

func setIfField(col *core.Collection, rec *core.Record, name string, value any) {
	if col.Fields.GetByName(name) != nil {
		rec.Set(name, value)
	}
}
