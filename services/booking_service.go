package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"urban-auto-server/models"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

// BookingStore extends the wallet store with booking rows so a wallet debit
// or refund and the booking write share one transaction.
type BookingStore interface {
	WalletStore
	WithBookingTx(fn func(BookingStore) error) error
	CreateBooking(b *models.Booking) error
	BookingForUpdate(id uint) (*models.Booking, error)
	UpdateBooking(id uint, fields map[string]interface{}) error
	UserBookings(userID uint) ([]models.Booking, error)
	CreatePaymentOrder(o *models.PaymentOrder) error
	FindPaymentOrder(orderID string) (*models.PaymentOrder, error)
	UpdatePaymentOrder(orderID string, fields map[string]interface{}) error
}

// BookingEvent is pushed to listeners (push dispatch, admin feed) after a
// booking mutation commits.
type BookingEvent struct {
	Booking *models.Booking
	Status  models.BookingStatus
}

// BookingListener receives booking events. Failures are the listener's
// problem; the booking write has already committed.
type BookingListener func(BookingEvent)

// BookingService owns the booking lifecycle: creation with wallet payment and
// cancellation with refund. Customer and admin cancellation both go through
// Cancel, so the refund rule lives in exactly one place.
type BookingService struct {
	store     BookingStore
	wallet    *WalletService
	listeners []BookingListener
}

// NewBookingService creates a booking service
func NewBookingService(store BookingStore, wallet *WalletService) *BookingService {
	return &BookingService{store: store, wallet: wallet}
}

// Subscribe registers a listener for booking events
func (s *BookingService) Subscribe(l BookingListener) {
	s.listeners = append(s.listeners, l)
}

func (s *BookingService) notify(b *models.Booking, status models.BookingStatus) {
	for _, l := range s.listeners {
		l(BookingEvent{Booking: b, Status: status})
	}
}

// Create persists a booking. For wallet payment the balance check, debit,
// ledger row and booking row are a single transaction: either the booking
// exists and is paid, or nothing happened.
func (s *BookingService) Create(b *models.Booking) error {
	if b.TotalAmount < 0 {
		return ErrInvalidAmount
	}

	if b.PaymentMethod == models.PaymentMethodWallet {
		err := s.store.WithBookingTx(func(tx BookingStore) error {
			balance, err := tx.BalanceForUpdate(b.UserID)
			if err != nil {
				return err
			}
			if balance < b.TotalAmount {
				return ErrInsufficientBalance
			}
			if err := tx.SetBalance(b.UserID, balance-b.TotalAmount); err != nil {
				return err
			}
			b.PaymentStatus = models.PaymentStatusPaid
			if err := tx.CreateBooking(b); err != nil {
				return err
			}
			return tx.InsertLedger(&models.WalletTransaction{
				UserID:      b.UserID,
				Amount:      b.TotalAmount,
				Type:        models.TransactionDebit,
				Description: fmt.Sprintf("Payment for %s", b.ServiceName),
				BookingID:   &b.ID,
				Reference:   uuid.NewString(),
			})
		})
		if err != nil {
			return err
		}
		s.wallet.invalidateCache(b.UserID)
		logrus.WithFields(logrus.Fields{
			"user_id":    b.UserID,
			"booking_id": b.ID,
			"amount":     b.TotalAmount,
			"type":       "debit",
		}).Info("Wallet transaction")
	} else {
		if err := s.store.CreateBooking(b); err != nil {
			return err
		}
	}

	s.notify(b, b.Status)
	return nil
}

// Cancel transitions a booking to Cancelled. A wallet-paid booking gets
// exactly one refund credit equal to its total amount, written with the
// status flip in one transaction. userID scopes the lookup for customer
// cancellation; 0 means admin.
func (s *BookingService) Cancel(bookingID, userID uint) (*models.Booking, error) {
	var booking *models.Booking
	var refunded bool

	err := s.store.WithBookingTx(func(tx BookingStore) error {
		b, err := tx.BookingForUpdate(bookingID)
		if err != nil {
			return err
		}
		if userID != 0 && b.UserID != userID {
			return ErrBookingNotFound
		}
		if b.Status == models.BookingStatusCancelled {
			return ErrAlreadyCancelled
		}

		if b.IsWalletPaid() && b.TotalAmount > 0 {
			balance, err := tx.BalanceForUpdate(b.UserID)
			if err != nil {
				return err
			}
			if err := tx.SetBalance(b.UserID, balance+b.TotalAmount); err != nil {
				return err
			}
			if err := tx.InsertLedger(&models.WalletTransaction{
				UserID:      b.UserID,
				Amount:      b.TotalAmount,
				Type:        models.TransactionCredit,
				Description: fmt.Sprintf("Refund for cancelled booking: %s", b.ServiceName),
				BookingID:   &b.ID,
				Reference:   uuid.NewString(),
			}); err != nil {
				return err
			}
			refunded = true
		}

		if err := tx.UpdateBooking(b.ID, map[string]interface{}{"status": models.BookingStatusCancelled}); err != nil {
			return err
		}
		b.Status = models.BookingStatusCancelled
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refunded {
		s.wallet.invalidateCache(booking.UserID)
		logrus.WithFields(logrus.Fields{
			"user_id":    booking.UserID,
			"booking_id": booking.ID,
			"amount":     booking.TotalAmount,
			"type":       "credit",
		}).Info("Wallet transaction")
	}

	s.notify(booking, models.BookingStatusCancelled)
	return booking, nil
}

// UpdateStatus sets a booking's status. Cancelled goes through Cancel so the
// refund rule applies; other statuses are a plain update plus an event.
func (s *BookingService) UpdateStatus(bookingID uint, status models.BookingStatus) (*models.Booking, error) {
	if status == models.BookingStatusCancelled {
		return s.Cancel(bookingID, 0)
	}

	var booking *models.Booking
	err := s.store.WithBookingTx(func(tx BookingStore) error {
		b, err := tx.BookingForUpdate(bookingID)
		if err != nil {
			return err
		}
		if err := tx.UpdateBooking(b.ID, map[string]interface{}{"status": status}); err != nil {
			return err
		}
		b.Status = status
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(booking, status)
	return booking, nil
}

// Reschedule moves a booking to a new slot and records who moved it
func (s *BookingService) Reschedule(bookingID uint, dateTime, by string) (*models.Booking, error) {
	var booking *models.Booking
	err := s.store.WithBookingTx(func(tx BookingStore) error {
		b, err := tx.BookingForUpdate(bookingID)
		if err != nil {
			return err
		}
		if b.Status == models.BookingStatusCancelled {
			return ErrAlreadyCancelled
		}
		fields := map[string]interface{}{
			"status":              models.BookingStatusRescheduled,
			"preferred_date_time": dateTime,
			"rescheduled_by":      by,
		}
		if err := tx.UpdateBooking(b.ID, fields); err != nil {
			return err
		}
		b.Status = models.BookingStatusRescheduled
		b.PreferredDateTime = dateTime
		b.RescheduledBy = by
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(booking, models.BookingStatusRescheduled)
	return booking, nil
}

// UserBookings returns a user's bookings, newest first
func (s *BookingService) UserBookings(userID uint) ([]models.Booking, error) {
	return s.store.UserBookings(userID)
}

// gormBookingStore is the GORM-backed BookingStore.
type gormBookingStore struct {
	gormWalletStore
}

// NewBookingStore creates a GORM-backed booking store
func NewBookingStore(db *gorm.DB) BookingStore {
	return &gormBookingStore{gormWalletStore{db: db}}
}

func (s *gormBookingStore) WithBookingTx(fn func(BookingStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormBookingStore{gormWalletStore{db: tx}})
	})
}

func (s *gormBookingStore) CreateBooking(b *models.Booking) error {
	return s.db.Create(b).Error
}

func (s *gormBookingStore) BookingForUpdate(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *gormBookingStore) UpdateBooking(id uint, fields map[string]interface{}) error {
	return s.db.Model(&models.Booking{}).Where("id = ?", id).Updates(fields).Error
}

func (s *gormBookingStore) CreatePaymentOrder(o *models.PaymentOrder) error {
	return s.db.Create(o).Error
}

func (s *gormBookingStore) FindPaymentOrder(orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := s.db.Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *gormBookingStore) UpdatePaymentOrder(orderID string, fields map[string]interface{}) error {
	return s.db.Model(&models.PaymentOrder{}).Where("order_id = ?", orderID).Updates(fields).Error
}

func (s *gormBookingStore) UserBookings(userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}
