package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"urban-auto-server/models"
	"urban-auto-server/utils"
)

const (
	otpLength         = 6
	otpTTL            = 5 * time.Minute
	otpResendCooldown = 60 * time.Second
)

var (
	ErrOTPInvalid   = errors.New("invalid or expired OTP")
	ErrOTPThrottled = errors.New("please wait before requesting another code")
)

// OTPStore is the persistence surface the OTP workflow needs.
type OTPStore interface {
	InvalidateUnused(phone string) error
	Insert(otp *models.OTPCode) error
	FindValid(phone, code string, now time.Time) (*models.OTPCode, error)
	MarkUsed(id uint) error
	// FindRecentlyVerified returns the newest used code for the phone that is
	// still inside its expiry window, or nil.
	FindRecentlyVerified(phone string, now time.Time) (*models.OTPCode, error)
}

// OTPService issues and verifies one-time passcodes.
type OTPService struct {
	store OTPStore
	sms   SMSSender
	rdb   *redis.Client
}

// NewOTPService creates an OTP service
func NewOTPService(store OTPStore, sms SMSSender, rdb *redis.Client) *OTPService {
	return &OTPService{store: store, sms: sms, rdb: rdb}
}

// Send invalidates prior unused codes for the phone, stores a fresh 6-digit
// code with a 5 minute expiry and dispatches it over SMS. Delivery failure is
// logged, not surfaced: the code row exists either way.
func (s *OTPService) Send(ctx context.Context, phone string) error {
	ok, err := utils.SetNX(ctx, s.rdb, "otp:cooldown:"+phone, otpResendCooldown)
	if err != nil {
		log.Printf("⚠️ OTP cooldown check failed for %s: %v", phone, err)
	} else if !ok {
		return ErrOTPThrottled
	}

	if err := s.store.InvalidateUnused(phone); err != nil {
		return fmt.Errorf("failed to invalidate prior codes: %w", err)
	}

	code, err := generateNumericCode(otpLength)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	otp := &models.OTPCode{
		Phone:     phone,
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := s.store.Insert(otp); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	body := fmt.Sprintf("Your Urban Auto verification code is: %s. Valid for 5 minutes.", code)
	if err := s.sms.Send(phone, body); err != nil {
		log.Printf("❌ SMS delivery failed for %s, falling back to log: %v", phone, err)
		log.Printf("📱 [FALLBACK] OTP for %s: %s", phone, code)
	}

	return nil
}

// Verify marks the matching unused, unexpired code as used. A code can only
// succeed once.
func (s *OTPService) Verify(phone, code string) error {
	otp, err := s.store.FindValid(phone, code, time.Now())
	if err != nil || otp == nil {
		return ErrOTPInvalid
	}

	if err := s.store.MarkUsed(otp.ID); err != nil {
		return fmt.Errorf("failed to mark code used: %w", err)
	}

	return nil
}

// RecentlyVerified reports whether the phone completed OTP verification
// within the current expiry window. Password reset requires this.
func (s *OTPService) RecentlyVerified(phone string) bool {
	otp, err := s.store.FindRecentlyVerified(phone, time.Now())
	return err == nil && otp != nil
}

// generateNumericCode returns a crypto-random numeric string of n digits
func generateNumericCode(n int) (string, error) {
	code := make([]byte, n)
	for i := range code {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + d.Int64())
	}
	return string(code), nil
}

// gormOTPStore is the GORM-backed OTPStore.
type gormOTPStore struct {
	db *gorm.DB
}

// NewOTPStore creates a GORM-backed OTP store
func NewOTPStore(db *gorm.DB) OTPStore {
	return &gormOTPStore{db: db}
}

func (s *gormOTPStore) InvalidateUnused(phone string) error {
	return s.db.Model(&models.OTPCode{}).
		Where("phone = ? AND used = ?", phone, false).
		Update("used", true).Error
}

func (s *gormOTPStore) Insert(otp *models.OTPCode) error {
	return s.db.Create(otp).Error
}

func (s *gormOTPStore) FindValid(phone, code string, now time.Time) (*models.OTPCode, error) {
	var otp models.OTPCode
	err := s.db.Where("phone = ? AND code = ? AND used = ? AND expires_at >= ?", phone, code, false, now).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &otp, nil
}

func (s *gormOTPStore) MarkUsed(id uint) error {
	return s.db.Model(&models.OTPCode{}).Where("id = ?", id).Update("used", true).Error
}

func (s *gormOTPStore) FindRecentlyVerified(phone string, now time.Time) (*models.OTPCode, error) {
	var otp models.OTPCode
	err := s.db.Where("phone = ? AND used = ? AND expires_at >= ?", phone, true, now).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &otp, nil
}
