package models

// CategoryBudget is a monthly spending limit attached to a single expense
// category. Amounts are minor units. The budget period starts on ResetDay
// each month, clamped to the month length.
type CategoryBudget struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	// Uniqueness per live category is enforced by a partial index in the
	// migrations so a soft-deleted budget does not block a replacement.
	CategoryID  string `gorm:"type:uuid;not null;index" json:"category_id"`
	LimitAmount int64  `gorm:"column:limit_amount;type:bigint;not null" json:"limit_amount"`
	WarningAt   int    `gorm:"default:80" json:"warning_at"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
	ResetDay    int    `gorm:"default:1" json:"reset_day"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
