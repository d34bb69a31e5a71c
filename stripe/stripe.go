package stripe

import (
	"context"
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

var ErrNotConfigured = errors.New("payment provider not configured")

// Provider creates payment intents with an external processor.
type Provider interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (clientSecret string, err error)
}

// Client is a card-only Provider backed by the Stripe API.
type Client struct {
	api *client.API
}

// New returns a Client for the given secret key. An empty key yields a
// client whose calls fail with ErrNotConfigured.
func New(key string) *Client {
	if key == "" {
		return &Client{}
	}
	api := &client.API{}
	api.Init(key, nil)
	return &Client{api: api}
}

func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	if c.api == nil {
		return "", ErrNotConfigured
	}
	params := &stripeapi.PaymentIntentParams{
		Amount:             stripeapi.Int64(amount),
		Currency:           stripeapi.String(currency),
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
