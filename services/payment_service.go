package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"

	"urban-auto-server/config"
	"urban-auto-server/models"
)

var (
	ErrPaymentsUnavailable = errors.New("online payments are not configured")
	ErrOrderNotFound       = errors.New("payment order not found")
)

// PaymentOrderResult is what the client's checkout widget needs.
type PaymentOrderResult struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// PaymentService creates Razorpay orders and verifies payment signatures.
type PaymentService struct {
	client    *razorpay.Client
	keySecret string
}

// NewPaymentService creates a payment service. A nil client means Razorpay is
// unconfigured and order creation fails with ErrPaymentsUnavailable.
func NewPaymentService() *PaymentService {
	cfg := config.AppConfig.Razorpay
	svc := &PaymentService{keySecret: cfg.KeySecret}
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		svc.client = razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	}
	return svc
}

// CreateOrder registers an order with Razorpay for the given rupee amount.
// Razorpay amounts are in paise.
func (s *PaymentService) CreateOrder(userID uint, amountRupees int64) (*PaymentOrderResult, error) {
	if s.client == nil {
		return nil, ErrPaymentsUnavailable
	}
	if amountRupees <= 0 {
		return nil, ErrInvalidAmount
	}

	receipt := fmt.Sprintf("booking_%d_%s", userID, uuid.NewString()[:8])
	data := map[string]interface{}{
		"amount":   amountRupees * 100,
		"currency": "INR",
		"receipt":  receipt,
	}

	order, err := s.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	orderID, _ := order["id"].(string)
	if orderID == "" {
		return nil, errors.New("razorpay returned no order id")
	}

	return &PaymentOrderResult{
		OrderID:  orderID,
		Amount:   amountRupees * 100,
		Currency: "INR",
		Receipt:  receipt,
	}, nil
}

// VerifySignature recomputes HMAC-SHA256(key_secret, orderID|paymentID) and
// compares it to the client-supplied signature in constant time.
func (s *PaymentService) VerifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" || signature == "" {
		return false
	}
	expected := SignPayment(s.keySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignPayment computes the hex HMAC-SHA256 over "orderID|paymentID"
func SignPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// MarkPaid flags the booking and its payment order paid after verification
func MarkPaid(store BookingStore, order *models.PaymentOrder, paymentID string) error {
	return store.WithBookingTx(func(tx BookingStore) error {
		if order.BookingID != nil {
			b, err := tx.BookingForUpdate(*order.BookingID)
			if err != nil {
				return err
			}
			if err := tx.UpdateBooking(b.ID, map[string]interface{}{
				"payment_status": models.PaymentStatusPaid,
				"payment_method": models.PaymentMethodRazorpay,
			}); err != nil {
				return err
			}
		}
		return tx.UpdatePaymentOrder(order.OrderID, map[string]interface{}{
			"status":     models.PaymentOrderPaid,
			"payment_id": paymentID,
		})
	})
}
