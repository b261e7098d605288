package main

import (
	"testing"

	"github.com/pocketbase/pocketbase/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growyourneed/platform/internal/config"
)

func TestApplySMTP(t *testing.T) {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	defer app.Cleanup()

	err = applySMTP(app, config.SMTP{
		Host:          "smtp.example.com",
		Port:          2525,
		Username:      "mailer",
		Password:      "secret",
		SenderAddress: "noreply@growyourneed.com",
		SenderName:    "Grow Your Need",
	})
	require.NoError(t, err)

	s := app.Settings()
	assert.True(t, s.SMTP.Enabled)
	assert.Equal(t, "smtp.example.com", s.SMTP.Host)
	assert.Equal(t, 2525, s.SMTP.Port)
	assert.Equal(t, "mailer", s.SMTP.Username)
	assert.Equal(t, "noreply@growyourneed.com", s.Meta.SenderAddress)
	assert.Equal(t, "Grow Your Need", s.Meta.SenderName)
}
