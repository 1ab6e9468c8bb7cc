package models

import (
	"time"
)

type PaymentOrderStatus string

const (
	PaymentOrderCreated PaymentOrderStatus = "created"
	PaymentOrderPaid    PaymentOrderStatus = "paid"
)

// PaymentOrder tracks a Razorpay order from creation through signature
// verification. OrderID is the provider-issued id, Receipt is ours.
type PaymentOrder struct {
	ID        uint               `json:"id" gorm:"primaryKey"`
	OrderID   string             `json:"order_id" gorm:"size:64;uniqueIndex;not null"`
	UserID    uint               `json:"user_id" gorm:"not null;index"`
	BookingID *uint              `json:"booking_id" gorm:"index"`
	Amount    int64              `json:"amount" gorm:"not null"` // paise
	Currency  string             `json:"currency" gorm:"size:10;not null;default:'INR'"`
	Receipt   string             `json:"receipt" gorm:"size:100"`
	Status    PaymentOrderStatus `json:"status" gorm:"type:varchar(20);default:'created';check:status IN ('created','paid')"`
	PaymentID string             `json:"payment_id" gorm:"size:64"`
	CreatedAt time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the PaymentOrder model
func (PaymentOrder) TableName() string {
	return "payment_orders"
}
