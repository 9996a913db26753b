package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/subscription"
)

// StripeClient implements CheckoutClient against the Stripe API.
type StripeClient struct{}

// NewStripeClient wires the Stripe API key and returns a client.
func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{}
}

// CreateSession opens a Stripe Checkout session for the single line item.
func (c *StripeClient) CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	item := &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(1),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(params.Item.Currency),
			UnitAmount: stripe.Int64(params.Item.UnitAmount),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(params.Item.Name),
			},
		},
	}
	if params.Item.Recurring {
		item.PriceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval:      stripe.String("month"),
			IntervalCount: stripe.Int64(1),
		}
	}

	opts := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(params.Mode)),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{item},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	opts.Context = ctx
	for key, value := range params.Metadata {
		opts.AddMetadata(key, value)
	}

	sess, err := session.New(opts)
	if err != nil {
		return nil, err
	}
	return fromStripeSession(sess), nil
}

// GetSession fetches a Stripe Checkout session by id.
func (c *StripeClient) GetSession(ctx context.Context, id string, expandSubscription bool) (*Session, error) {
	opts := &stripe.CheckoutSessionParams{}
	opts.Context = ctx
	if expandSubscription {
		opts.AddExpand("subscription")
	}
	sess, err := session.Get(id, opts)
	if err != nil {
		return nil, err
	}
	return fromStripeSession(sess), nil
}

// SubscriptionPeriodEnd resolves the current period end of a subscription.
func (c *StripeClient) SubscriptionPeriodEnd(ctx context.Context, subscriptionID string) (time.Time, error) {
	opts := &stripe.SubscriptionParams{}
	opts.Context = ctx
	sub, err := subscription.Get(subscriptionID, opts)
	if err != nil {
		return time.Time{}, err
	}
	if sub.CurrentPeriodEnd <= 0 {
		return time.Time{}, fmt.Errorf("subscription %s has no current period end", subscriptionID)
	}
	return time.Unix(sub.CurrentPeriodEnd, 0).UTC(), nil
}

// fromStripeSession maps the Stripe response onto the provider-agnostic
// session shape.
func fromStripeSession(sess *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            sess.ID,
		URL:           sess.URL,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		Metadata:      sess.Metadata,
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	return out
}
