package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"urban-auto-server/models"
	"urban-auto-server/services"
)

// CreateBookingRequest is the booking creation payload
type CreateBookingRequest struct {
	ServiceName       string   `json:"service_name" binding:"required"`
	VehicleType       string   `json:"vehicle_type" binding:"required"`
	VehicleNumber     string   `json:"vehicle_number"`
	VehicleMakeModel  string   `json:"vehicle_make_model"`
	ServiceMode       string   `json:"service_mode"`
	Address           string   `json:"address"`
	LocationLat       *float64 `json:"location_lat"`
	LocationLng       *float64 `json:"location_lng"`
	PreferredDateTime string   `json:"preferred_date_time" binding:"required"`
	Notes             *string  `json:"notes"`
	TotalAmount       int64    `json:"total_amount" binding:"required"`
	CouponCode        string   `json:"coupon_code"`
	PaymentMethod     string   `json:"payment_method" binding:"required"`
}

// RegisterBookingRoutes registers booking routes (auth required)
func RegisterBookingRoutes(router *gin.RouterGroup) {
	router.POST("/bookings", createBooking)
	router.GET("/bookings", listBookings)
	router.POST("/bookings/cancel", cancelBooking)
}

// createBooking creates a booking; the coupon (if any) is revalidated here so
// a stale client-side validation cannot apply an expired discount
func createBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking data", "message": err.Error()})
		return
	}

	method := models.PaymentMethod(req.PaymentMethod)
	switch method {
	case models.PaymentMethodRazorpay, models.PaymentMethodWallet, models.PaymentMethodPayLater:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method"})
		return
	}

	if req.TotalAmount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
		return
	}

	userID := c.GetUint("user_id")
	amount := req.TotalAmount
	var discount int64
	var couponCode *string

	if req.CouponCode != "" {
		result, err := deps.Coupons.Validate(req.CouponCode, userID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon is no longer valid", "message": err.Error()})
			return
		}
		discount = amount * int64(result.DiscountPercent) / 100
		amount -= discount
		couponCode = &result.Code
	}

	booking := models.Booking{
		UserID:            userID,
		ServiceName:       req.ServiceName,
		VehicleType:       req.VehicleType,
		VehicleNumber:     req.VehicleNumber,
		VehicleMakeModel:  req.VehicleMakeModel,
		ServiceMode:       req.ServiceMode,
		Address:           req.Address,
		LocationLat:       req.LocationLat,
		LocationLng:       req.LocationLng,
		PreferredDateTime: req.PreferredDateTime,
		Notes:             req.Notes,
		TotalAmount:       amount,
		DiscountAmount:    discount,
		CouponCode:        couponCode,
		Status:            models.BookingStatusPending,
		PaymentStatus:     models.PaymentStatusUnpaid,
		PaymentMethod:     method,
	}

	if err := deps.Bookings.Create(&booking); err != nil {
		if errors.Is(err, services.ErrInsufficientBalance) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient wallet balance"})
			return
		}
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
			return
		}
		log.Printf("❌ Booking creation failed for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	log.Printf("📅 Booking %d created by user %d (%s, %s)", booking.ID, userID, booking.ServiceName, booking.PaymentMethod)
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully", "booking": booking})
}

// listBookings returns the caller's bookings, newest first
func listBookings(c *gin.Context) {
	userID := c.GetUint("user_id")

	bookings, err := deps.Bookings.UserBookings(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// cancelBooking cancels a booking owned by the caller, refunding wallet
// payments
func cancelBooking(c *gin.Context) {
	var req struct {
		BookingID uint `json:"booking_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Booking ID is required"})
		return
	}

	userID := c.GetUint("user_id")
	booking, err := deps.Bookings.Cancel(req.BookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, services.ErrAlreadyCancelled):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking is already cancelled"})
		default:
			log.Printf("❌ Booking cancellation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking": booking})
}
