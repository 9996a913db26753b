package models

import "time"

// Client represents a customer a user issues quotes to.
type Client struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	OwnerID uint64 `gorm:"not null;index"`     // Owning user ID.
	Owner   User   `gorm:"foreignKey:OwnerID"` // Owning user record.

	Name      string `gorm:"type:varchar(255);not null"` // Client display name.
	Address   string `gorm:"type:text"`                  // Postal address.
	VATNumber string `gorm:"type:varchar(64)"`           // VAT registration number.

	Quotes []Quote `gorm:"foreignKey:ClientID"` // Quotes issued to this client.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
