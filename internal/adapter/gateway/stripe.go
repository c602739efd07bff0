package gateway

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/the-inv-riya/pixify/internal/core/billing"
	"github.com/the-inv-riya/pixify/internal/core/domain"
)

// StripeGateway drives Stripe's hosted checkout. It carries its own API
// client so the secret key is injected, never read from global state.
type StripeGateway struct {
	api        *client.API
	successURL string
	cancelURL  string
}

// NewStripeGateway builds a gateway from the injected secret key. The
// success URL carries Stripe's session id placeholder so the client can
// hand the id back for verification after the redirect.
func NewStripeGateway(secretKey, frontendURL string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{
		api:        api,
		successURL: frontendURL + "/?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  frontendURL + "/buy",
	}
}

func (g *StripeGateway) CreateSession(ctx context.Context, plan domain.Plan, metadata map[string]string) (billing.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(plan.ID + " Credit Plan"),
						Description: stripe.String(fmt.Sprintf("%d Credits", plan.Credits)),
					},
					// Stripe wants minor units.
					UnitAmount: stripe.Int64(plan.Amount * 100),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return billing.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return billing.CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

func (g *StripeGateway) GetSession(ctx context.Context, id string) (billing.Session, error) {
	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	session, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return billing.Session{}, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return billing.Session{
		ID:       session.ID,
		Paid:     session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: session.Metadata,
	}, nil
}
