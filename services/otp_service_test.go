package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"urban-auto-server/models"
)

// fakeOTPStore mirrors the invariant the real store enforces: one unused,
// unexpired code per phone at a time.
type fakeOTPStore struct {
	codes  []models.OTPCode
	nextID uint
}

func (f *fakeOTPStore) InvalidateUnused(phone string) error {
	for i := range f.codes {
		if f.codes[i].Phone == phone && !f.codes[i].Used {
			f.codes[i].Used = true
		}
	}
	return nil
}

func (f *fakeOTPStore) Insert(otp *models.OTPCode) error {
	f.nextID++
	otp.ID = f.nextID
	f.codes = append(f.codes, *otp)
	return nil
}

func (f *fakeOTPStore) FindValid(phone, code string, now time.Time) (*models.OTPCode, error) {
	for i := len(f.codes) - 1; i >= 0; i-- {
		c := f.codes[i]
		if c.Phone == phone && c.Code == code && !c.Used && !now.After(c.ExpiresAt) {
			clone := c
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeOTPStore) MarkUsed(id uint) error {
	for i := range f.codes {
		if f.codes[i].ID == id {
			f.codes[i].Used = true
		}
	}
	return nil
}

func (f *fakeOTPStore) FindRecentlyVerified(phone string, now time.Time) (*models.OTPCode, error) {
	for i := len(f.codes) - 1; i >= 0; i-- {
		c := f.codes[i]
		if c.Phone == phone && c.Used && !now.After(c.ExpiresAt) {
			clone := c
			return &clone, nil
		}
	}
	return nil, nil
}

// recordingSender captures the last SMS body so tests can pull the code out.
type recordingSender struct {
	phone string
	body  string
}

func (r *recordingSender) Send(phone, body string) error {
	r.phone = phone
	r.body = body
	return nil
}

func latestCode(store *fakeOTPStore) string {
	return store.codes[len(store.codes)-1].Code
}

func TestOTPSendAndVerify(t *testing.T) {
	store := &fakeOTPStore{}
	sms := &recordingSender{}
	svc := NewOTPService(store, sms, nil)

	assert.NoError(t, svc.Send(context.Background(), "9876543210"))
	assert.Equal(t, "9876543210", sms.phone)
	assert.Contains(t, sms.body, latestCode(store))
	assert.Len(t, latestCode(store), 6)

	assert.NoError(t, svc.Verify("9876543210", latestCode(store)))
}

func TestOTPVerify_SingleUse(t *testing.T) {
	store := &fakeOTPStore{}
	svc := NewOTPService(store, &recordingSender{}, nil)

	assert.NoError(t, svc.Send(context.Background(), "9876543210"))
	code := latestCode(store)

	assert.NoError(t, svc.Verify("9876543210", code))
	assert.ErrorIs(t, svc.Verify("9876543210", code), ErrOTPInvalid)
}

func TestOTPVerify_WrongCode(t *testing.T) {
	store := &fakeOTPStore{}
	svc := NewOTPService(store, &recordingSender{}, nil)

	assert.NoError(t, svc.Send(context.Background(), "9876543210"))
	assert.ErrorIs(t, svc.Verify("9876543210", "000000"), ErrOTPInvalid)
}

func TestOTPVerify_Expired(t *testing.T) {
	store := &fakeOTPStore{}
	store.Insert(&models.OTPCode{
		Phone:     "9876543210",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	svc := NewOTPService(store, &recordingSender{}, nil)
	assert.ErrorIs(t, svc.Verify("9876543210", "123456"), ErrOTPInvalid)
}

func TestOTPSend_InvalidatesPriorCodes(t *testing.T) {
	store := &fakeOTPStore{}
	svc := NewOTPService(store, &recordingSender{}, nil)

	assert.NoError(t, svc.Send(context.Background(), "9876543210"))
	first := latestCode(store)
	assert.NoError(t, svc.Send(context.Background(), "9876543210"))
	second := latestCode(store)

	assert.ErrorIs(t, svc.Verify("9876543210", first), ErrOTPInvalid)
	assert.NoError(t, svc.Verify("9876543210", second))
}

func TestRecentlyVerified(t *testing.T) {
	store := &fakeOTPStore{}
	svc := NewOTPService(store, &recordingSender{}, nil)

	assert.False(t, svc.RecentlyVerified("9876543210"), "nothing sent yet")

	assert.NoError(t, svc.Send(context.Background(), "9876543210"))
	assert.False(t, svc.RecentlyVerified("9876543210"), "sent but not verified")

	assert.NoError(t, svc.Verify("9876543210", latestCode(store)))
	assert.True(t, svc.RecentlyVerified("9876543210"))
}

func TestRecentlyVerified_ExpiredWindow(t *testing.T) {
	store := &fakeOTPStore{}
	store.Insert(&models.OTPCode{
		Phone:     "9876543210",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
		Used:      true,
	})

	svc := NewOTPService(store, &recordingSender{}, nil)
	assert.False(t, svc.RecentlyVerified("9876543210"))
}

func TestGenerateNumericCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := generateNumericCode(6)
		assert.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "codes should not all collide")
}
