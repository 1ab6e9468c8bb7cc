package models

import (
	"time"
)

// Coupon is a discount code. UserID nil means the code is global; a non-nil
// UserID scopes the code to a single customer.
type Coupon struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Code             string    `json:"code" gorm:"size:50;uniqueIndex;not null"`
	DiscountPercent  int       `json:"discount_percent" gorm:"not null;check:discount_percent > 0 AND discount_percent <= 100"`
	Active           bool      `json:"active" gorm:"default:true"`
	UserID           *uint     `json:"user_id" gorm:"index"`
	UsageLimit       int       `json:"usage_limit" gorm:"default:1"`
	FirstBookingOnly bool      `json:"first_booking_only" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Coupon model
func (Coupon) TableName() string {
	return "coupons"
}

// IsGlobal reports whether the coupon is usable by any customer.
func (c *Coupon) IsGlobal() bool {
	return c.UserID == nil
}
