package database

import (
	"log"

	"urban-auto-server/models"
)

// defaultServices is the launch catalog. Prices are whole rupees per
// vehicle class.
var defaultServices = []models.ServicePrice{
	{ServiceID: "basic-wash", ServiceName: "Basic Wash", HatchbackPrice: 299, SedanPrice: 349, SUVPrice: 449, Active: true},
	{ServiceID: "premium-wash", ServiceName: "Premium Wash", HatchbackPrice: 499, SedanPrice: 599, SUVPrice: 749, Active: true},
	{ServiceID: "interior-detailing", ServiceName: "Interior Detailing", HatchbackPrice: 1499, SedanPrice: 1799, SUVPrice: 2299, Active: true},
	{ServiceID: "exterior-detailing", ServiceName: "Exterior Detailing", HatchbackPrice: 1999, SedanPrice: 2399, SUVPrice: 2999, Active: true},
	{ServiceID: "ceramic-coating", ServiceName: "Ceramic Coating", HatchbackPrice: 7999, SedanPrice: 9499, SUVPrice: 11999, Active: true},
	{ServiceID: "general-service", ServiceName: "General Service", HatchbackPrice: 2499, SedanPrice: 2999, SUVPrice: 3799, Active: true},
	{ServiceID: "ac-service", ServiceName: "AC Service", HatchbackPrice: 1299, SedanPrice: 1499, SUVPrice: 1899, Active: true},
}

var defaultAppConfig = []models.AppConfig{
	{Key: "signup_carousel", Value: `{"images":[]}`},
	{Key: "payment_config", Value: `{"razorpay_enabled":true,"wallet_enabled":true,"pay_later_enabled":true}`},
}

// Seed inserts the default service catalog and app configuration. Existing
// rows are left alone so admin edits survive restarts.
func Seed() {
	seeded := 0
	for _, svc := range defaultServices {
		var existing models.ServicePrice
		if err := DB.Where("service_id = ?", svc.ServiceID).First(&existing).Error; err == nil {
			continue
		}
		if err := DB.Create(&svc).Error; err != nil {
			log.Printf("❌ Failed to seed service %s: %v", svc.ServiceID, err)
			continue
		}
		seeded++
	}
	if seeded > 0 {
		log.Printf("🌱 Seeded %d services", seeded)
	}

	for _, cfg := range defaultAppConfig {
		var existing models.AppConfig
		if err := DB.Where("key = ?", cfg.Key).First(&existing).Error; err == nil {
			continue
		}
		if err := DB.Create(&cfg).Error; err != nil {
			log.Printf("❌ Failed to seed config %s: %v", cfg.Key, err)
		}
	}
}
