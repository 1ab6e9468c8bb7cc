package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID            uint     `json:"id" gorm:"primaryKey"`
	FullName      string   `json:"full_name" gorm:"size:255;not null"`
	Email         string   `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Phone         string   `json:"phone" gorm:"size:20;uniqueIndex;not null"`
	PasswordHash  string   `json:"-" gorm:"size:255;not null"` // Hidden from JSON
	Role          UserRole `json:"role" gorm:"type:varchar(20);not null;default:'customer';check:role IN ('customer','admin')"`
	WalletBalance int64    `json:"wallet_balance" gorm:"not null;default:0"` // whole rupees
	Verified      bool     `json:"verified" gorm:"default:false"`
	Blocked       bool     `json:"blocked" gorm:"default:false"`

	// Address captured from the app's location picker
	Address        string   `json:"address" gorm:"size:500"`
	City           string   `json:"city" gorm:"size:100"`
	Pincode        string   `json:"pincode" gorm:"size:10"`
	ManualLocation string   `json:"manual_location" gorm:"size:500"`
	LocationLat    *float64 `json:"location_lat"`
	LocationLng    *float64 `json:"location_lng"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Bookings     []Booking           `json:"bookings,omitempty" gorm:"foreignKey:UserID"`
	Transactions []WalletTransaction `json:"transactions,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return nil
}

// IsAdmin checks if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
