package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"urban-auto-server/models"
)

type mockCouponStore struct {
	mock.Mock
}

func (m *mockCouponStore) ActiveByCode(code string) ([]models.Coupon, error) {
	args := m.Called(code)
	return args.Get(0).([]models.Coupon), args.Error(1)
}

func (m *mockCouponStore) CountBookingsWithCoupon(userID uint, code string) (int64, error) {
	args := m.Called(userID, code)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCouponStore) CountBookings(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func uintPtr(v uint) *uint { return &v }

func TestValidateCoupon_UnknownCode(t *testing.T) {
	store := new(mockCouponStore)
	store.On("ActiveByCode", "NOPE").Return([]models.Coupon{}, nil)

	svc := NewCouponService(store)
	_, err := svc.Validate("nope", 1)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestValidateCoupon_GlobalCoupon(t *testing.T) {
	store := new(mockCouponStore)
	store.On("ActiveByCode", "SAVE20").Return([]models.Coupon{
		{Code: "SAVE20", DiscountPercent: 20, Active: true, UsageLimit: 1},
	}, nil)
	store.On("CountBookingsWithCoupon", uint(1), "SAVE20").Return(int64(0), nil)

	svc := NewCouponService(store)
	result, err := svc.Validate("  save20 ", 1)
	assert.NoError(t, err)
	assert.Equal(t, "SAVE20", result.Code)
	assert.Equal(t, 20, result.DiscountPercent)
}

func TestValidateCoupon_OtherUsersCoupon(t *testing.T) {
	store := new(mockCouponStore)
	store.On("ActiveByCode", "VIP50").Return([]models.Coupon{
		{Code: "VIP50", DiscountPercent: 50, Active: true, UserID: uintPtr(42), UsageLimit: 1},
	}, nil)

	svc := NewCouponService(store)
	_, err := svc.Validate("VIP50", 1)
	assert.ErrorIs(t, err, ErrCouponNotEligible)
}

func TestValidateCoupon_UserScopedPreferredOverGlobal(t *testing.T) {
	store := new(mockCouponStore)
	store.On("ActiveByCode", "SAVE20").Return([]models.Coupon{
		{Code: "SAVE20", DiscountPercent: 10, Active: true, UsageLimit: 1},
		{Code: "SAVE20", DiscountPercent: 30, Active: true, UserID: uintPtr(7), UsageLimit: 1},
	}, nil)
	store.On("CountBookingsWithCoupon", uint(7), "SAVE20").Return(int64(0), nil)

	svc := NewCouponService(store)
	result, err := svc.Validate("SAVE20", 7)
	assert.NoError(t, err)
	assert.Equal(t, 30, result.DiscountPercent)
}

func TestValidateCoupon_UsageLimitReached(t *testing.T) {
	store := new(mockCouponStore)
	store.On("ActiveByCode", "SAVE20").Return([]models.Coupon{
		{Code: "SAVE20", DiscountPercent: 20, Active: true, UsageLimit: 2},
	}, nil)
	store.On("CountBookingsWithCoupon", uint(1), "SAVE20").Return(int64(2), nil)

	svc := NewCouponService(store)
	_, err := svc.Validate("SAVE20", 1)
	assert.ErrorIs(t, err, ErrCouponLimitReached)
}

func TestValidateCoupon_UnsetUsageLimitDefaultsToOne(t *testing.T) {
	store := new(mockCouponStore)
	store.On("ActiveByCode", "ONCE").Return([]models.Coupon{
		{Code: "ONCE", DiscountPercent: 15, Active: true, UsageLimit: 0},
	}, nil)
	store.On("CountBookingsWithCoupon", uint(1), "ONCE").Return(int64(1), nil)

	svc := NewCouponService(store)
	_, err := svc.Validate("ONCE", 1)
	assert.ErrorIs(t, err, ErrCouponLimitReached)
}

func TestValidateCoupon_FirstBookingOnly(t *testing.T) {
	store := new(mockCouponStore)
	store.On("ActiveByCode", "WELCOME").Return([]models.Coupon{
		{Code: "WELCOME", DiscountPercent: 25, Active: true, UsageLimit: 1, FirstBookingOnly: true},
	}, nil)
	store.On("CountBookingsWithCoupon", uint(1), "WELCOME").Return(int64(0), nil)
	store.On("CountBookings", uint(1)).Return(int64(3), nil)

	svc := NewCouponService(store)
	_, err := svc.Validate("WELCOME", 1)
	assert.ErrorIs(t, err, ErrCouponFirstBookingOnly)
}

func TestValidateCoupon_FirstBookingOnlyNewUser(t *testing.T) {
	store := new(mockCouponStore)
	store.On("ActiveByCode", "WELCOME").Return([]models.Coupon{
		{Code: "WELCOME", DiscountPercent: 25, Active: true, UsageLimit: 1, FirstBookingOnly: true},
	}, nil)
	store.On("CountBookingsWithCoupon", uint(1), "WELCOME").Return(int64(0), nil)
	store.On("CountBookings", uint(1)).Return(int64(0), nil)

	svc := NewCouponService(store)
	result, err := svc.Validate("WELCOME", 1)
	assert.NoError(t, err)
	assert.Equal(t, 25, result.DiscountPercent)
}

func TestOffers_DropsFirstBookingOffersForReturningUsers(t *testing.T) {
	store := new(mockCouponStore)
	store.On("ActiveByCode", "").Return([]models.Coupon{
		{Code: "WELCOME", DiscountPercent: 25, Active: true, FirstBookingOnly: true},
		{Code: "SAVE20", DiscountPercent: 20, Active: true},
		{Code: "VIP50", DiscountPercent: 50, Active: true, UserID: uintPtr(9)},
	}, nil)
	store.On("CountBookings", uint(1)).Return(int64(2), nil)

	svc := NewCouponService(store)
	offers, err := svc.Offers(1)
	assert.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Equal(t, "SAVE20", offers[0].Code)
}
