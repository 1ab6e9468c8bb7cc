package models

import (
	"time"
)

// ServicePrice is a catalog row with per-vehicle-type pricing in whole rupees.
type ServicePrice struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceID      string    `json:"service_id" gorm:"size:100;uniqueIndex;not null"`
	ServiceName    string    `json:"service_name" gorm:"size:255;not null"`
	HatchbackPrice int64     `json:"hatchback_price" gorm:"not null;default:0"`
	SedanPrice     int64     `json:"sedan_price" gorm:"not null;default:0"`
	SUVPrice       int64     `json:"suv_price" gorm:"not null;default:0"`
	Active         bool      `json:"active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the ServicePrice model
func (ServicePrice) TableName() string {
	return "service_prices"
}
