package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"urban-auto-server/models"
)

var (
	ErrCouponNotFound         = errors.New("invalid coupon code")
	ErrCouponNotEligible      = errors.New("this coupon is not available for you")
	ErrCouponLimitReached     = errors.New("you have already used this coupon")
	ErrCouponFirstBookingOnly = errors.New("this coupon is only valid for your first booking")
)

// CouponResult is the validated discount returned to the booking flow.
type CouponResult struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

// CouponStore is the persistence surface coupon validation needs.
type CouponStore interface {
	ActiveByCode(code string) ([]models.Coupon, error)
	// CountBookingsWithCoupon counts a user's non-cancelled bookings carrying
	// the code.
	CountBookingsWithCoupon(userID uint, code string) (int64, error)
	// CountBookings counts a user's non-cancelled bookings.
	CountBookings(userID uint) (int64, error)
}

// CouponService validates coupon codes against a user's booking history.
type CouponService struct {
	store CouponStore
}

// NewCouponService creates a coupon service
func NewCouponService(store CouponStore) *CouponService {
	return &CouponService{store: store}
}

// Validate resolves a code for a user. A row scoped to the user wins over a
// global row with the same code; a row scoped to a different user is never
// usable, regardless of active.
func (s *CouponService) Validate(code string, userID uint) (*CouponResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCouponNotFound
	}

	coupons, err := s.store.ActiveByCode(code)
	if err != nil {
		return nil, err
	}
	if len(coupons) == 0 {
		return nil, ErrCouponNotFound
	}

	coupon := pickCoupon(coupons, userID)
	if coupon == nil {
		return nil, ErrCouponNotEligible
	}

	if userID != 0 {
		limit := coupon.UsageLimit
		if limit <= 0 {
			limit = 1
		}
		used, err := s.store.CountBookingsWithCoupon(userID, coupon.Code)
		if err != nil {
			return nil, err
		}
		if used >= int64(limit) {
			return nil, ErrCouponLimitReached
		}

		if coupon.FirstBookingOnly {
			total, err := s.store.CountBookings(userID)
			if err != nil {
				return nil, err
			}
			if total > 0 {
				return nil, ErrCouponFirstBookingOnly
			}
		}
	}

	return &CouponResult{Code: coupon.Code, DiscountPercent: coupon.DiscountPercent}, nil
}

// pickCoupon prefers the row scoped to the user, then a global row. Rows
// scoped to other users make the code ineligible rather than invisible.
func pickCoupon(coupons []models.Coupon, userID uint) *models.Coupon {
	for i := range coupons {
		if coupons[i].UserID != nil && userID != 0 && *coupons[i].UserID == userID {
			return &coupons[i]
		}
	}
	for i := range coupons {
		if coupons[i].IsGlobal() {
			return &coupons[i]
		}
	}
	return nil
}

// Offers lists active coupons visible to a user: their own plus global ones,
// dropping first-booking-only codes once the user has any booking.
func (s *CouponService) Offers(userID uint) ([]models.Coupon, error) {
	coupons, err := s.store.ActiveByCode("")
	if err != nil {
		return nil, err
	}

	visible := make([]models.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.IsGlobal() || (userID != 0 && c.UserID != nil && *c.UserID == userID) {
			visible = append(visible, c)
		}
	}

	if userID != 0 && hasFirstBookingOffer(visible) {
		total, err := s.store.CountBookings(userID)
		if err != nil {
			return nil, err
		}
		if total > 0 {
			filtered := visible[:0]
			for _, c := range visible {
				if !c.FirstBookingOnly {
					filtered = append(filtered, c)
				}
			}
			visible = filtered
		}
	}

	return visible, nil
}

func hasFirstBookingOffer(coupons []models.Coupon) bool {
	for _, c := range coupons {
		if c.FirstBookingOnly {
			return true
		}
	}
	return false
}

// gormCouponStore is the GORM-backed CouponStore.
type gormCouponStore struct {
	db *gorm.DB
}

// NewCouponStore creates a GORM-backed coupon store
func NewCouponStore(db *gorm.DB) CouponStore {
	return &gormCouponStore{db: db}
}

// ActiveByCode lists active coupons matching the code. An empty code lists
// all active coupons (used by Offers).
func (s *gormCouponStore) ActiveByCode(code string) ([]models.Coupon, error) {
	var coupons []models.Coupon
	q := s.db.Where("active = ?", true)
	if code != "" {
		q = q.Where("code = ?", code)
	}
	if err := q.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (s *gormCouponStore) CountBookingsWithCoupon(userID uint, code string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Booking{}).
		Where("user_id = ? AND coupon_code = ? AND status <> ?", userID, code, models.BookingStatusCancelled).
		Count(&count).Error
	return count, err
}

func (s *gormCouponStore) CountBookings(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Booking{}).
		Where("user_id = ? AND status <> ?", userID, models.BookingStatusCancelled).
		Count(&count).Error
	return count, err
}
