package payments_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growyourneed/platform/internal/payments"
)

func TestDisabledGateway(t *testing.T) {
	cases := map[string]struct {
		cfg    payments.Config
		reason string
	}{
		"feature off": {payments.Config{Enabled: false, SecretKey: "sk_test_x"}, "FEATURE_PAYMENTS"},
		"no key":      {payments.Config{Enabled: true, SecretKey: "  "}, "STRIPE_SECRET_KEY"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			g := payments.New(tc.cfg)
			assert.False(t, g.Enabled())

			_, err := g.CreatePaymentIntent(context.Background(), payments.IntentParams{AmountCents: 100, Currency: "usd"})
			require.ErrorIs(t, err, payments.ErrNotConfigured)
			assert.Contains(t, err.Error(), tc.reason)

			_, err = g.CreateCustomer(context.Background(), "a@x.com", "A", nil)
			require.ErrorIs(t, err, payments.ErrNotConfigured)
		})
	}
}

func TestEnabledGateway(t *testing.T) {
	g := payments.New(payments.Config{Enabled: true, SecretKey: "sk_test_123"})
	assert.True(t, g.Enabled())

	// invalid params never reach Stripe
	_, err := g.CreatePaymentIntent(context.Background(), payments.IntentParams{AmountCents: 0, Currency: "usd"})
	assert.ErrorIs(t, err, payments.ErrInvalidAmount)
}

func TestIntentParamsValidate(t *testing.T) {
	assert.NoError(t, payments.IntentParams{AmountCents: 1999, Currency: "EUR"}.Validate())
	assert.ErrorIs(t, payments.IntentParams{AmountCents: -5, Currency: "usd"}.Validate(), payments.ErrInvalidAmount)
	assert.ErrorIs(t, payments.IntentParams{AmountCents: 5, Currency: "dollars"}.Validate(), payments.ErrInvalidAmount)
}
