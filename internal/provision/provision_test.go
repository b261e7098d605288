package provision_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growyourneed/platform/internal/provision"
)

type memUsers struct {
	users map[string]provision.SeedUser
	fail  string
}

func (m *memUsers) UserExists(_ context.Context, email string) (bool, error) {
	_, ok := m.users[email]
	return ok, nil
}

func (m *memUsers) CreateUser(_ context.Context, u provision.SeedUser) error {
	if u.Email == m.fail {
		return errors.New("email already used")
	}
	m.users[u.Email] = u
	return nil
}

func TestSeed_Idempotent(t *testing.T) {
	store := &memUsers{users: map[string]provision.SeedUser{}}
	seeds := []provision.SeedUser{{Email: "owner@x.com", Name: "Owner", Role: "Owner", Password: "password123"}}

	res := provision.Seed(context.Background(), store, seeds, zerolog.Nop())
	assert.Equal(t, []string{"owner@x.com"}, res.Created)
	assert.Empty(t, res.Skipped)

	res = provision.Seed(context.Background(), store, seeds, zerolog.Nop())
	assert.Empty(t, res.Created)
	assert.Equal(t, []string{"owner@x.com"}, res.Skipped)
	assert.Len(t, store.users, 1)
}

func TestSeed_NormalizesEmail(t *testing.T) {
	store := &memUsers{users: map[string]provision.SeedUser{}}
	seeds := []provision.SeedUser{
		{Email: " Owner@X.com ", Role: "Owner", Password: "password123"},
		{Email: "owner@x.com", Role: "Owner", Password: "password123"},
	}

	res := provision.Seed(context.Background(), store, seeds, zerolog.Nop())
	assert.Equal(t, []string{"owner@x.com"}, res.Created)
	assert.Equal(t, []string{"owner@x.com"}, res.Skipped)
}

func TestSeed_InvalidAndFailedSeeds(t *testing.T) {
	store := &memUsers{users: map[string]provision.SeedUser{}, fail: "taken@x.com"}
	seeds := []provision.SeedUser{
		{Email: "not-an-email", Role: "Owner", Password: "password123"},
		{Email: "a@x.com", Role: "Wizard", Password: "password123"},
		{Email: "b@x.com", Role: "Admin", Password: "short"},
		{Email: "taken@x.com", Role: "Admin", Password: "password123"},
		{Email: "ok@x.com", Role: "Teacher", Password: "password123"},
	}

	res := provision.Seed(context.Background(), store, seeds, zerolog.Nop())
	assert.Equal(t, []string{"ok@x.com"}, res.Created)
	require.Len(t, res.Failed, 4)
	assert.Equal(t, "not-an-email", res.Failed[0].Key)
	assert.Equal(t, "taken@x.com", res.Failed[3].Key)
	assert.Equal(t, 5, res.Total())
}

func TestDefaultUsersAreValid(t *testing.T) {
	users := provision.DefaultUsers("changeme123")
	require.NotEmpty(t, users)
	for _, u := range users {
		assert.NoError(t, u.Validate(), u.Email)
	}
}
