package backend

import (
	"context"

	"github.com/growyourneed/platform/internal/pbclient"
	"github.com/growyourneed/platform/internal/provision"
	"github.com/growyourneed/platform/internal/schema"
)

// Remote is a PocketBase instance reached over REST. The client must be
// authenticated as a superuser.
type Remote struct {
	Client *pbclient.Client
}

// NewRemote wraps client.
func NewRemote(client *pbclient.Client) *Remote { return &Remote{Client: client} }

func (r *Remote) CollectionNames(ctx context.Context) ([]string, error) {
	cols, err := r.Client.Collections(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names, nil
}

func (r *Remote) CreateCollection(ctx context.Context, def schema.Definition) error {
	payload, err := schema.Payload(def, func(name string) (string, error) {
		col, err := r.Client.Collection(ctx, name)
		if err != nil {
			return "", err
		}
		return col.ID, nil
	})
	if err != nil {
		return err
	}
	_, err = r.Client.CreateCollection(ctx, payload)
	return err
}

func (r *Remote) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := r.Client.FirstRecord(ctx, usersCollection, "email = "+pbclient.Quote(email))
	if pbclient.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Remote) CreateUser(ctx context.Context, u provision.SeedUser) error {
	body := map[string]any{
		"email":           u.Email,
		"emailVisibility": false,
		"password":        u.Password,
		"passwordConfirm": u.Password,
		"verified":        true,
		"name":            u.Name,
		"role":            u.Role,
	}
	if u.TenantID != "" {
		body["tenantId"] = u.TenantID
	}
	_, err := r.Client.CreateRecord(ctx, usersCollection, body)
	return err
}
