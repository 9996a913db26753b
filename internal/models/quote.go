package models

import "time"

// PaymentStatus represents the payment lifecycle state of a quote.
type PaymentStatus string

// PaymentStatus constants define quote payment states.
const (
	// PaymentStatusNew marks a quote with no payment session yet.
	PaymentStatusNew PaymentStatus = "new"
	// PaymentStatusPending marks a quote with a checkout session awaiting payment.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusPaid marks a quote whose payment was confirmed.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusCanceled is reserved; no flow transitions into it yet.
	PaymentStatusCanceled PaymentStatus = "canceled"
)

// Quote records a priced offer issued to a client.
type Quote struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ClientID uint64 `gorm:"not null;index"`      // Owning client ID.
	Client   Client `gorm:"foreignKey:ClientID"` // Owning client record.

	Name       string  `gorm:"type:varchar(255);not null"`            // Quote reference name.
	Amount     float64 `gorm:"type:decimal(10,2);not null;default:0"` // Net amount.
	VATPercent float64 `gorm:"type:decimal(5,2);not null;default:0"`  // VAT percentage applied.

	PaymentURL       string        `gorm:"type:text"`                                    // Checkout URL of the latest payment session.
	PaymentSessionID string        `gorm:"type:varchar(255);index"`                      // Provider session ID, join key for confirmation.
	PaymentStatus    PaymentStatus `gorm:"type:varchar(16);not null;default:'new'"`      // Payment lifecycle state.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Total returns the gross amount including VAT.
func (q *Quote) Total() float64 {
	return q.Amount + q.Amount*q.VATPercent/100
}
