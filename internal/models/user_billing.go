package models

import "time"

// UserBilling stores the current subscription plan per user.
//
// Absence of a row means the free plan. A CurrentPeriodEndUTC in the past
// demotes the effective plan to free on read; the stored value is only
// rewritten by the next subscription confirmation.
type UserBilling struct {
	UserID uint64 `gorm:"primaryKey"` // Owning user ID.

	Plan                string     `gorm:"type:varchar(32);not null;default:'free'"` // Stored plan name.
	CurrentPeriodEndUTC *time.Time `gorm:""`                                         // Subscription period end, nil for free users.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
