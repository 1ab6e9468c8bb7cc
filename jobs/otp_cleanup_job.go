package jobs

import (
	"log"
	"time"

	"urban-auto-server/database"
	"urban-auto-server/models"
)

// OTPCleanupJob expires stale verification codes and purges old rows
type OTPCleanupJob struct {
	stopChan chan bool
}

// NewOTPCleanupJob creates a new OTP cleanup job
func NewOTPCleanupJob() *OTPCleanupJob {
	return &OTPCleanupJob{
		stopChan: make(chan bool),
	}
}

// Start begins the OTP cleanup job
func (j *OTPCleanupJob) Start() {
	go j.run()
	log.Println("🚀 OTP cleanup job started")
}

// Stop stops the OTP cleanup job
func (j *OTPCleanupJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 OTP cleanup job stopped")
}

func (j *OTPCleanupJob) run() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.stopChan:
			return
		}
	}
}

// cleanup marks expired unused codes as used so they can never verify, then
// deletes rows older than a day
func (j *OTPCleanupJob) cleanup() {
	now := time.Now()

	result := database.DB.Model(&models.OTPCode{}).
		Where("used = ? AND expires_at < ?", false, now).
		Update("used", true)
	if result.Error != nil {
		log.Printf("❌ Error expiring OTP codes: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("⏰ Expired %d stale OTP codes", result.RowsAffected)
	}

	cutoff := now.Add(-24 * time.Hour)
	if err := database.DB.Where("created_at < ?", cutoff).Delete(&models.OTPCode{}).Error; err != nil {
		log.Printf("❌ Error purging old OTP codes: %v", err)
	}
}
