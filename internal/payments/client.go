package payments

import (
	"context"
	"time"
)

// SessionMode selects between a one-off payment and a recurring purchase.
type SessionMode string

// SessionMode constants.
const (
	// ModePayment creates a single one-off payment session.
	ModePayment SessionMode = "payment"
	// ModeSubscription creates a recurring monthly subscription session.
	ModeSubscription SessionMode = "subscription"
)

// LineItem describes the single item of a checkout session.
type LineItem struct {
	Name       string // Product label shown at checkout.
	UnitAmount int64  // Price in minor currency units.
	Currency   string // Lowercase ISO currency code.
	Recurring  bool   // Monthly recurring when true.
}

// CreateSessionParams carries everything needed to open a checkout session.
type CreateSessionParams struct {
	Mode       SessionMode
	Item       LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Session is the provider's view of a checkout session. Status and
// PaymentStatus are opaque strings; callers compare them case-insensitively
// against "complete" and "paid".
type Session struct {
	ID             string
	URL            string
	Status         string
	PaymentStatus  string
	Metadata       map[string]string
	SubscriptionID string
}

// CheckoutClient is the narrow surface of the external payment provider
// consumed by the orchestrator. Tests substitute a stub.
type CheckoutClient interface {
	// CreateSession opens a new checkout session.
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	// GetSession fetches the authoritative session state, optionally
	// expanding the attached subscription.
	GetSession(ctx context.Context, id string, expandSubscription bool) (*Session, error)
	// SubscriptionPeriodEnd resolves the current period end of a
	// subscription.
	SubscriptionPeriodEnd(ctx context.Context, subscriptionID string) (time.Time, error)
}
