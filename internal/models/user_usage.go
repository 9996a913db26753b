package models

import "time"

// UserUsage tracks metered PDF generations per user.
//
// DailyCount only applies to WindowDate; readers must treat it as zero when
// WindowDate is not the current UTC day. TotalCount never resets.
type UserUsage struct {
	UserID uint64 `gorm:"primaryKey"` // Owning user ID.

	WindowDate string `gorm:"type:varchar(10);not null"` // UTC day (YYYY-MM-DD) the daily counter applies to.
	DailyCount int    `gorm:"not null;default:0"`        // Generations committed on WindowDate.
	TotalCount int    `gorm:"not null;default:0"`        // Lifetime generations committed.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
