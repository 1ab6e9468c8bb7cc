package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"urban-auto-server/models"
)

// fakeBookingStore layers bookings and payment orders on the wallet fake.
type fakeBookingStore struct {
	*fakeWalletStore
	bookings map[uint]*models.Booking
	orders   map[string]*models.PaymentOrder
	nextID   uint
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		fakeWalletStore: newFakeWalletStore(),
		bookings:        map[uint]*models.Booking{},
		orders:          map[string]*models.PaymentOrder{},
	}
}

func (f *fakeBookingStore) WithBookingTx(fn func(BookingStore) error) error {
	return f.WithTx(func(WalletStore) error { return fn(f) })
}

func (f *fakeBookingStore) CreateBooking(b *models.Booking) error {
	f.nextID++
	b.ID = f.nextID
	clone := *b
	f.bookings[b.ID] = &clone
	return nil
}

func (f *fakeBookingStore) BookingForUpdate(id uint) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingStore) UpdateBooking(id uint, fields map[string]interface{}) error {
	b := f.bookings[id]
	if v, ok := fields["status"]; ok {
		b.Status = v.(models.BookingStatus)
	}
	if v, ok := fields["payment_status"]; ok {
		b.PaymentStatus = v.(models.PaymentStatus)
	}
	if v, ok := fields["payment_method"]; ok {
		b.PaymentMethod = v.(models.PaymentMethod)
	}
	if v, ok := fields["preferred_date_time"]; ok {
		b.PreferredDateTime = v.(string)
	}
	if v, ok := fields["rescheduled_by"]; ok {
		b.RescheduledBy = v.(string)
	}
	return nil
}

func (f *fakeBookingStore) UserBookings(userID uint) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) CreatePaymentOrder(o *models.PaymentOrder) error {
	clone := *o
	f.orders[o.OrderID] = &clone
	return nil
}

func (f *fakeBookingStore) FindPaymentOrder(orderID string) (*models.PaymentOrder, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (f *fakeBookingStore) UpdatePaymentOrder(orderID string, fields map[string]interface{}) error {
	o := f.orders[orderID]
	if v, ok := fields["status"]; ok {
		o.Status = v.(models.PaymentOrderStatus)
	}
	if v, ok := fields["payment_id"]; ok {
		o.PaymentID = v.(string)
	}
	return nil
}

func newBookingFixture(store *fakeBookingStore) (*BookingService, *WalletService) {
	wallet := NewWalletService(store, nil)
	return NewBookingService(store, wallet), wallet
}

func TestCreateBooking_WalletPayment(t *testing.T) {
	store := newFakeBookingStore()
	store.balances[1] = 1000
	svc, _ := newBookingFixture(store)

	booking := &models.Booking{
		UserID:        1,
		ServiceName:   "Premium Wash",
		TotalAmount:   599,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		PaymentMethod: models.PaymentMethodWallet,
	}
	err := svc.Create(booking)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, booking.PaymentStatus)
	assert.Equal(t, int64(401), store.balances[1])
	assert.Len(t, store.ledger, 1)
	assert.Equal(t, models.TransactionDebit, store.ledger[0].Type)
}

func TestCreateBooking_NegativeAmount(t *testing.T) {
	store := newFakeBookingStore()
	svc, _ := newBookingFixture(store)

	booking := &models.Booking{
		UserID:        1,
		ServiceName:   "Basic Wash",
		TotalAmount:   -50,
		PaymentMethod: models.PaymentMethodPayLater,
	}
	err := svc.Create(booking)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Empty(t, store.bookings)
}

func TestCreateBooking_WalletInsufficientLeavesNothing(t *testing.T) {
	store := newFakeBookingStore()
	store.balances[1] = 100
	svc, _ := newBookingFixture(store)

	booking := &models.Booking{
		UserID:        1,
		ServiceName:   "Ceramic Coating",
		TotalAmount:   7999,
		PaymentMethod: models.PaymentMethodWallet,
	}
	err := svc.Create(booking)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(100), store.balances[1])
	assert.Empty(t, store.ledger)
	assert.Empty(t, store.bookings)
}

func TestCreateBooking_PayLaterSkipsWallet(t *testing.T) {
	store := newFakeBookingStore()
	svc, _ := newBookingFixture(store)

	booking := &models.Booking{
		UserID:        1,
		ServiceName:   "Basic Wash",
		TotalAmount:   299,
		PaymentStatus: models.PaymentStatusUnpaid,
		PaymentMethod: models.PaymentMethodPayLater,
	}
	err := svc.Create(booking)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnpaid, booking.PaymentStatus)
	assert.Empty(t, store.ledger)
}

func TestCancelBooking_RefundsWalletPaidExactlyOnce(t *testing.T) {
	store := newFakeBookingStore()
	store.balances[1] = 1000
	svc, _ := newBookingFixture(store)

	booking := &models.Booking{
		UserID:        1,
		ServiceName:   "Premium Wash",
		TotalAmount:   599,
		PaymentMethod: models.PaymentMethodWallet,
	}
	assert.NoError(t, svc.Create(booking))
	assert.Equal(t, int64(401), store.balances[1])

	cancelled, err := svc.Cancel(booking.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(1000), store.balances[1])

	var credits int
	for _, entry := range store.ledger {
		if entry.Type == models.TransactionCredit {
			credits++
			assert.Equal(t, int64(599), entry.Amount)
		}
	}
	assert.Equal(t, 1, credits)

	// A second cancel is rejected before any further refund
	_, err = svc.Cancel(booking.ID, 1)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, int64(1000), store.balances[1])
}

func TestCancelBooking_UnpaidGetsNoRefund(t *testing.T) {
	store := newFakeBookingStore()
	svc, _ := newBookingFixture(store)

	booking := &models.Booking{
		UserID:        1,
		ServiceName:   "Basic Wash",
		TotalAmount:   299,
		PaymentMethod: models.PaymentMethodPayLater,
	}
	assert.NoError(t, svc.Create(booking))

	cancelled, err := svc.Cancel(booking.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Empty(t, store.ledger)
}

func TestCancelBooking_ScopedToOwner(t *testing.T) {
	store := newFakeBookingStore()
	svc, _ := newBookingFixture(store)

	booking := &models.Booking{UserID: 1, ServiceName: "Basic Wash", TotalAmount: 299, PaymentMethod: models.PaymentMethodPayLater}
	assert.NoError(t, svc.Create(booking))

	_, err := svc.Cancel(booking.ID, 2)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	// Admin path (userID 0) can cancel anyone's booking
	_, err = svc.Cancel(booking.ID, 0)
	assert.NoError(t, err)
}

func TestUpdateStatus_CancelledRoutesThroughRefund(t *testing.T) {
	store := newFakeBookingStore()
	store.balances[1] = 1000
	svc, _ := newBookingFixture(store)

	booking := &models.Booking{
		UserID:        1,
		ServiceName:   "Premium Wash",
		TotalAmount:   599,
		PaymentMethod: models.PaymentMethodWallet,
	}
	assert.NoError(t, svc.Create(booking))

	updated, err := svc.UpdateStatus(booking.ID, models.BookingStatusCancelled)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, updated.Status)
	assert.Equal(t, int64(1000), store.balances[1])
}

func TestReschedule(t *testing.T) {
	store := newFakeBookingStore()
	svc, _ := newBookingFixture(store)

	booking := &models.Booking{UserID: 1, ServiceName: "AC Service", TotalAmount: 1299, PaymentMethod: models.PaymentMethodPayLater}
	assert.NoError(t, svc.Create(booking))

	updated, err := svc.Reschedule(booking.ID, "2026-09-15 10:00", "admin")
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusRescheduled, updated.Status)
	assert.Equal(t, "2026-09-15 10:00", updated.PreferredDateTime)
	assert.Equal(t, "admin", updated.RescheduledBy)
}

func TestBookingEventsNotifyListeners(t *testing.T) {
	store := newFakeBookingStore()
	svc, _ := newBookingFixture(store)

	var events []BookingEvent
	svc.Subscribe(func(ev BookingEvent) { events = append(events, ev) })

	booking := &models.Booking{UserID: 1, ServiceName: "Basic Wash", TotalAmount: 299, PaymentMethod: models.PaymentMethodPayLater}
	assert.NoError(t, svc.Create(booking))
	_, err := svc.Cancel(booking.ID, 1)
	assert.NoError(t, err)

	assert.Len(t, events, 2)
	assert.Equal(t, models.BookingStatusCancelled, events[1].Status)
}

func TestMarkPaid(t *testing.T) {
	store := newFakeBookingStore()
	svc, _ := newBookingFixture(store)

	booking := &models.Booking{UserID: 1, ServiceName: "Basic Wash", TotalAmount: 299, PaymentMethod: models.PaymentMethodRazorpay}
	assert.NoError(t, svc.Create(booking))

	order := &models.PaymentOrder{OrderID: "order_123", UserID: 1, BookingID: &booking.ID, Amount: 29900, Status: models.PaymentOrderCreated}
	assert.NoError(t, store.CreatePaymentOrder(order))

	assert.NoError(t, MarkPaid(store, order, "pay_456"))

	stored, err := store.FindPaymentOrder("order_123")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentOrderPaid, stored.Status)
	assert.Equal(t, "pay_456", stored.PaymentID)
	assert.Equal(t, models.PaymentStatusPaid, store.bookings[booking.ID].PaymentStatus)
}
