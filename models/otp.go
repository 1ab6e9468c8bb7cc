package models

import (
	"time"
)

// OTPCode is a one-time passcode sent over SMS. At most one unused, unexpired
// code per phone is expected; sending a new code marks prior unused codes used.
type OTPCode struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Phone     string    `json:"phone" gorm:"size:20;not null;index"`
	Code      string    `json:"-" gorm:"size:10;not null"` // Hidden from JSON
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	Used      bool      `json:"used" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the OTPCode model
func (OTPCode) TableName() string {
	return "otp_codes"
}
