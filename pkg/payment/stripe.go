// Package payment wraps the external payment processor.
package payment

import (
	"context"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Intent is the subset of a processor payment intent the API hands back to the browser.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Processor creates payment intents for an amount in minor units.
type Processor interface {
	CreateIntent(ctx context.Context, amount int64) (*Intent, error)
}

// StripeProcessor creates card payment intents through the Stripe API.
type StripeProcessor struct {
	api      *client.API
	currency string
}

// NewStripeProcessor returns nil when no secret key is configured.
func NewStripeProcessor(secretKey, currency string) *StripeProcessor {
	if secretKey == "" {
		return nil
	}
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeProcessor{api: client.New(secretKey, nil), currency: currency}
}

// MinorUnits converts a price into the integer minor-unit amount (price x 100, truncated).
func MinorUnits(price float64) int64 {
	return int64(math.Trunc(price * 100))
}

// CreateIntent asks the processor for a card payment intent of the given minor-unit amount.
func (p *StripeProcessor) CreateIntent(ctx context.Context, amount int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(p.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Amount: pi.Amount, Currency: string(pi.Currency)}, nil
}
