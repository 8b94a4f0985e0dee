package models

import "time"

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// PromoCode is a discount voucher with a validity window and usage cap.
// UsageLimit of 0 means uncapped. Invariant: UsedCount never exceeds
// UsageLimit when a limit is set — the increment is guarded (see pricing).
type PromoCode struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	Code           string       `json:"code" gorm:"uniqueIndex;not null"`
	DiscountType   DiscountType `json:"discount_type" gorm:"not null"`
	DiscountValue  float64      `json:"discount_value" gorm:"not null"`
	MinOrderAmount float64      `json:"min_order_amount"`
	ValidFrom      time.Time    `json:"valid_from"`
	ValidTo        time.Time    `json:"valid_to"`
	UsageLimit     int          `json:"usage_limit"`
	UsedCount      int          `json:"used_count" gorm:"default:0"`
	IsActive       bool         `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
