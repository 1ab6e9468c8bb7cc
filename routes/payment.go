package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"urban-auto-server/models"
	"urban-auto-server/services"
)

// RegisterPaymentRoutes registers Razorpay payment routes (auth required)
func RegisterPaymentRoutes(router *gin.RouterGroup) {
	router.POST("/payments/create-order", createPaymentOrder)
	router.POST("/payments/verify", verifyPayment)
}

// createPaymentOrder registers an order with Razorpay and persists it so
// verification can find it later
func createPaymentOrder(c *gin.Context) {
	var req struct {
		Amount    int64 `json:"amount" binding:"required"` // rupees
		BookingID *uint `json:"booking_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount is required"})
		return
	}

	userID := c.GetUint("user_id")
	result, err := deps.Payments.CreateOrder(userID, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrPaymentsUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Online payments are temporarily unavailable"})
			return
		}
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
			return
		}
		log.Printf("❌ Razorpay order creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment order"})
		return
	}

	order := models.PaymentOrder{
		OrderID:   result.OrderID,
		UserID:    userID,
		BookingID: req.BookingID,
		Amount:    result.Amount,
		Currency:  result.Currency,
		Receipt:   result.Receipt,
		Status:    models.PaymentOrderCreated,
	}
	if err := deps.Store.CreatePaymentOrder(&order); err != nil {
		log.Printf("❌ Failed to persist payment order %s: %v", result.OrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId":  result.OrderID,
		"amount":   result.Amount,
		"currency": result.Currency,
		"receipt":  result.Receipt,
	})
}

// verifyPayment checks the Razorpay signature and marks the order paid
func verifyPayment(c *gin.Context) {
	var req struct {
		OrderID   string `json:"razorpay_order_id" binding:"required"`
		PaymentID string `json:"razorpay_payment_id" binding:"required"`
		Signature string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order ID, payment ID and signature are required"})
		return
	}

	if !deps.Payments.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		log.Printf("⚠️ Payment signature mismatch for order %s", req.OrderID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment verification failed"})
		return
	}

	order, err := deps.Store.FindPaymentOrder(req.OrderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment order not found"})
		return
	}
	if order.UserID != c.GetUint("user_id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment order not found"})
		return
	}

	if err := services.MarkPaid(deps.Store, order, req.PaymentID); err != nil {
		log.Printf("❌ Failed to mark order %s paid: %v", req.OrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	log.Printf("💳 Payment verified for order %s", req.OrderID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment verified"})
}
