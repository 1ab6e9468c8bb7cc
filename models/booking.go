package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "Pending"
	BookingStatusConfirmed   BookingStatus = "Confirmed"
	BookingStatusCompleted   BookingStatus = "Completed"
	BookingStatusRescheduled BookingStatus = "Rescheduled"
	BookingStatusCancelled   BookingStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodWallet   PaymentMethod = "wallet"
	PaymentMethodPayLater PaymentMethod = "pay_later"
)

type Booking struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;index"`

	ServiceName      string  `json:"service_name" gorm:"size:255;not null"`
	VehicleType      string  `json:"vehicle_type" gorm:"size:50"` // hatchback, sedan, suv
	VehicleNumber    string  `json:"vehicle_number" gorm:"size:20"`
	VehicleMakeModel string  `json:"vehicle_make_model" gorm:"size:255"`
	ServiceMode      string  `json:"service_mode" gorm:"size:50"` // doorstep, pickup
	Address          string  `json:"address" gorm:"size:500"`
	LocationLat      *float64 `json:"location_lat"`
	LocationLng      *float64 `json:"location_lng"`

	PreferredDateTime string  `json:"preferred_date_time" gorm:"size:50"`
	Notes             *string `json:"notes" gorm:"size:1000"`

	TotalAmount    int64   `json:"total_amount" gorm:"not null"`
	DiscountAmount int64   `json:"discount_amount" gorm:"default:0"`
	CouponCode     *string `json:"coupon_code" gorm:"size:50;index"`

	Status        BookingStatus `json:"status" gorm:"type:varchar(20);default:'Pending';check:status IN ('Pending','Confirmed','Completed','Rescheduled','Cancelled')"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(10);default:'unpaid';check:payment_status IN ('paid','unpaid')"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(20);check:payment_method IN ('razorpay','wallet','pay_later')"`
	RescheduledBy string        `json:"rescheduled_by" gorm:"size:20"` // user, admin

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// IsWalletPaid reports whether cancelling this booking owes a wallet refund.
func (b *Booking) IsWalletPaid() bool {
	return b.PaymentMethod == PaymentMethodWallet && b.PaymentStatus == PaymentStatusPaid
}
