// Package payments wraps Stripe behind the FEATURE_PAYMENTS flag.
//
// When the feature is off or no secret key is configured, every operation
// fails with ErrNotConfigured instead of reaching Stripe.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrNotConfigured is returned by every operation of a disabled gateway.
var ErrNotConfigured = errors.New("payments: not configured")

// ErrInvalidAmount is returned for non-positive amounts or malformed currencies.
var ErrInvalidAmount = errors.New("payments: invalid amount")

// Config selects the gateway.
type Config struct {
	Enabled   bool
	SecretKey string
}

// IntentParams describes one payment.
type IntentParams struct {
	AmountCents int64
	Currency    string
	CustomerID  string
	Email       string
	Description string
	Metadata    map[string]string
}

// Intent is the client-facing part of a Stripe PaymentIntent.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
	AmountCents  int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Gateway is the payment operations the platform uses.
type Gateway interface {
	Enabled() bool
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error)
	CreatePaymentIntent(ctx context.Context, p IntentParams) (Intent, error)
}

// New returns a Stripe gateway, or a disabled one explaining what is missing.
func New(cfg Config) Gateway {
	switch {
	case !cfg.Enabled:
		return disabled{reason: "FEATURE_PAYMENTS is off"}
	case strings.TrimSpace(cfg.SecretKey) == "":
		return disabled{reason: "STRIPE_SECRET_KEY is not set"}
	}
	return &stripeGateway{api: client.New(cfg.SecretKey, nil)}
}

type disabled struct {
	reason string
}

func (d disabled) Enabled() bool { return false }

func (d disabled) err() error { return fmt.Errorf("%w: %s", ErrNotConfigured, d.reason) }

func (d disabled) CreateCustomer(context.Context, string, string, map[string]string) (string, error) {
	return "", d.err()
}

func (d disabled) CreatePaymentIntent(context.Context, IntentParams) (Intent, error) {
	return Intent{}, d.err()
}

type stripeGateway struct {
	api *client.API
}

func (g *stripeGateway) Enabled() bool { return true }

func (g *stripeGateway) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("payments: create customer: %w", err)
	}
	return c.ID, nil
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, p IntentParams) (Intent, error) {
	if err := p.Validate(); err != nil {
		return Intent{}, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountCents),
		Currency: stripe.String(strings.ToLower(p.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	}
	if p.Email != "" {
		params.ReceiptEmail = stripe.String(p.Email)
	}
	if p.Description != "" {
		params.Description = stripe.String(p.Description)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("payments: create payment intent: %w", err)
	}
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// Validate checks amount and currency before any call to Stripe.
func (p IntentParams) Validate() error {
	if p.AmountCents <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if len(p.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter ISO code", ErrInvalidAmount)
	}
	return nil
}
