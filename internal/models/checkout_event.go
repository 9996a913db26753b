package models

import (
	"time"

	"gorm.io/datatypes"
)

// CheckoutEventKind identifies the checkout lifecycle step an event records.
type CheckoutEventKind string

// CheckoutEventKind constants define audited checkout steps.
const (
	// CheckoutEventQuoteSessionCreated records a quote payment session creation.
	CheckoutEventQuoteSessionCreated CheckoutEventKind = "quote_session_created"
	// CheckoutEventQuotePaid records a confirmed quote payment.
	CheckoutEventQuotePaid CheckoutEventKind = "quote_paid"
	// CheckoutEventSubscriptionSessionCreated records a subscription checkout creation.
	CheckoutEventSubscriptionSessionCreated CheckoutEventKind = "subscription_session_created"
	// CheckoutEventSubscriptionConfirmed records a confirmed subscription purchase.
	CheckoutEventSubscriptionConfirmed CheckoutEventKind = "subscription_confirmed"
)

// CheckoutEvent is an append-only audit record of checkout session activity.
// Reconciliation never reads it; it exists for diagnostics.
type CheckoutEvent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID    uint64            `gorm:"not null;index"`             // Acting user ID.
	Kind      CheckoutEventKind `gorm:"type:varchar(64);not null"`  // Lifecycle step recorded.
	SessionID string            `gorm:"type:varchar(255);index"`    // Provider session ID.
	Payload   datatypes.JSON    `gorm:"type:jsonb"`                 // Snapshot of the relevant request/response fields.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
