package models

import "time"

// User represents an end-user account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email           string `gorm:"type:text;not null"`             // Email address as entered.
	EmailNormalized string `gorm:"type:text;not null;uniqueIndex"` // Lowercased email used for lookups.
	Password        string `gorm:"type:text;not null"`             // Hashed password.

	Clients []Client `gorm:"foreignKey:OwnerID"` // Clients owned by this user.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
