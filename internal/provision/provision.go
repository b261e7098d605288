// Package provision seeds the platform's initial user accounts.
package provision

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rs/zerolog"

	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/ensure"
)

// SeedUser is one account to provision.
type SeedUser struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId,omitempty"`
	Password string `json:"-"`
}

// Validate checks the seed before anything is sent to the store.
func (u SeedUser) Validate() error {
	roles := make([]any, 0, len(catalog.Roles))
	for _, r := range catalog.Roles {
		roles = append(roles, r)
	}
	return validation.ValidateStruct(&u,
		validation.Field(&u.Email, validation.Required, is.EmailFormat),
		validation.Field(&u.Role, validation.Required, validation.In(roles...)),
		validation.Field(&u.Password, validation.Required, validation.Length(8, 72)),
	)
}

// UserStore is the users collection of a PocketBase instance.
type UserStore interface {
	UserExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u SeedUser) error
}

// Seed makes sure every user exists, matching on email. Existing users are
// never modified. Invalid seeds are reported as failures without touching
// the store.
func Seed(ctx context.Context, store UserStore, users []SeedUser, logger zerolog.Logger) ensure.Result {
	var invalid []ensure.Failure
	valid := make([]SeedUser, 0, len(users))
	for _, u := range users {
		u.Email = normalizeEmail(u.Email)
		if err := u.Validate(); err != nil {
			invalid = append(invalid, ensure.Failure{Key: u.Email, Err: err})
			continue
		}
		valid = append(valid, u)
	}

	res := ensure.Records[SeedUser](ctx, ensure.Funcs[SeedUser]{
		ExistsFunc: func(ctx context.Context, u SeedUser) (bool, error) { return store.UserExists(ctx, u.Email) },
		CreateFunc: store.CreateUser,
	}, valid, func(u SeedUser) string { return u.Email })
	res.Failed = append(invalid, res.Failed...)

	for _, email := range res.Created {
		logger.Info().Str("email", email).Msg("user created")
	}
	for _, email := range res.Skipped {
		logger.Debug().Str("email", email).Msg("user exists, skipped")
	}
	for _, f := range res.Failed {
		logger.Error().Err(f.Err).Str("email", f.Key).Msg("user seed failed")
	}
	return res
}

// DefaultUsers is the initial account set: one platform owner and one admin
// per demo tenant role. All share password.
func DefaultUsers(password string) []SeedUser {
	return []SeedUser{
		{Email: "owner@growyourneed.com", Name: "Platform Owner", Role: catalog.RoleOwner, Password: password},
		{Email: "admin@growyourneed.com", Name: "School Admin", Role: catalog.RoleAdmin, Password: password},
		{Email: "teacher@growyourneed.com", Name: "Demo Teacher", Role: catalog.RoleTeacher, Password: password},
		{Email: "student@growyourneed.com", Name: "Demo Student", Role: catalog.RoleStudent, Password: password},
		{Email: "parent@growyourneed.com", Name: "Demo Parent", Role: catalog.RoleParent, Password: password},
		{Email: "individual@growyourneed.com", Name: "Demo Individual", Role: catalog.RoleIndividual, Password: password},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
