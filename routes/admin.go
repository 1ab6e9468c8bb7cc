package routes

import (
	"context"
	"encoding/csv"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"urban-auto-server/database"
	"urban-auto-server/models"
	"urban-auto-server/services"
	"urban-auto-server/utils"
	ws "urban-auto-server/websocket"
)

// AdminActionRequest is the console's single action payload. Action selects
// the operation; the remaining fields are read per action.
type AdminActionRequest struct {
	Action string `json:"action" binding:"required"`

	UserID    uint `json:"user_id"`
	BookingID uint `json:"booking_id"`
	CouponID  uint `json:"coupon_id"`
	ServiceID uint `json:"service_id"`

	NewPassword string `json:"new_password"`

	Amount      int64  `json:"amount"`
	Description string `json:"description"`

	Code             string `json:"code"`
	DiscountPercent  int    `json:"discount_percent"`
	CouponUserID     *uint  `json:"coupon_user_id"`
	UsageLimit       int    `json:"usage_limit"`
	FirstBookingOnly bool   `json:"first_booking_only"`

	Status   string `json:"status"`
	DateTime string `json:"date_time"`

	HatchbackPrice int64 `json:"hatchback_price"`
	SedanPrice     int64 `json:"sedan_price"`
	SUVPrice       int64 `json:"suv_price"`

	Title string `json:"title"`
	Body  string `json:"body"`

	Key   string `json:"key"`
	Value string `json:"value"`

	ManualLocation string `json:"manual_location"`
}

// RegisterAdminAuthRoutes registers the admin console login endpoints
func RegisterAdminAuthRoutes(router *gin.RouterGroup) {
	router.POST("/login", adminLogin)
	router.POST("/refresh", refreshToken)
}

// RegisterAdminRoutes registers the admin console API. The group must carry
// AuthMiddleware + AdminMiddleware.
func RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("", adminGetData)
	router.POST("", adminAction)
	router.POST("/upload", adminUploadImage)
	router.GET("/ws", adminEventFeed)
}

// adminLogin authenticates the console with email + password
func adminLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	pair, err := deps.JWT.GenerateTokenPair(user.ID, string(user.Role), c.GetHeader("X-Device-ID"), c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	log.Printf("🔐 Admin login: %s", user.Email)
	c.JSON(http.StatusOK, gin.H{
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
		"user":          user,
	})
}

// adminGetData serves the console's read side, dispatched on ?resource=
func adminGetData(c *gin.Context) {
	switch c.Query("resource") {
	case "bookings":
		var bookings []models.Booking
		if err := database.DB.Preload("User").Order("created_at DESC").Find(&bookings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings})

	case "profiles":
		var users []models.User
		if err := database.DB.Where("role = ?", models.RoleCustomer).Order("created_at DESC").Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profiles"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"profiles": users})

	case "services":
		var prices []models.ServicePrice
		if err := database.DB.Order("service_name ASC").Find(&prices).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load services"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"services": prices})

	case "coupons":
		var coupons []models.Coupon
		if err := database.DB.Order("created_at DESC").Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load coupons"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"coupons": coupons})

	case "user-detail":
		userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		var user models.User
		if err := database.DB.Preload("Bookings", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(100)
		}).First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})

	case "user-coupons":
		userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		var coupons []models.Coupon
		if err := database.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load coupons"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"coupons": coupons})

	case "app-config":
		var rows []models.AppConfig
		if err := database.DB.Order("key ASC").Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load configuration"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"config": rows})

	case "export-users":
		exportUsersCSV(c)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown resource"})
	}
}

// exportUsersCSV streams every customer profile as a CSV download
func exportUsersCSV(c *gin.Context) {
	var users []models.User
	if err := database.DB.Where("role = ?", models.RoleCustomer).Order("id ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export users"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="users.csv"`)

	w := csv.NewWriter(c.Writer)
	w.Write(UserCSVHeader())
	for i := range users {
		w.Write(UserCSVRow(&users[i]))
	}
	w.Flush()
}

// UserCSVHeader is the column order of the user export
func UserCSVHeader() []string {
	return []string{"id", "full_name", "email", "phone", "wallet_balance", "verified", "blocked", "city", "created_at"}
}

// UserCSVRow renders one user in UserCSVHeader order
func UserCSVRow(u *models.User) []string {
	return []string{
		strconv.FormatUint(uint64(u.ID), 10),
		u.FullName,
		u.Email,
		u.Phone,
		strconv.FormatInt(u.WalletBalance, 10),
		strconv.FormatBool(u.Verified),
		strconv.FormatBool(u.Blocked),
		u.City,
		u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// adminAction serves the console's write side, dispatched on action
func adminAction(c *gin.Context) {
	var req AdminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "message": err.Error()})
		return
	}

	switch req.Action {
	case "reset-password":
		adminResetPassword(c, &req)
	case "block-user":
		adminSetUserFlag(c, req.UserID, "blocked", true)
	case "unblock-user":
		adminSetUserFlag(c, req.UserID, "blocked", false)
	case "verify-user":
		adminSetUserFlag(c, req.UserID, "verified", true)
	case "unverify-user":
		adminSetUserFlag(c, req.UserID, "verified", false)
	case "add-wallet-money":
		adminAddWalletMoney(c, &req)
	case "create-coupon":
		adminCreateCoupon(c, &req)
	case "toggle-coupon":
		adminToggleCoupon(c, &req)
	case "delete-coupon":
		adminDeleteCoupon(c, &req)
	case "update-booking-status":
		adminUpdateBookingStatus(c, &req)
	case "reschedule-booking":
		adminRescheduleBooking(c, &req)
	case "update-service-price":
		adminUpdateServicePrice(c, &req)
	case "update-app-config":
		adminUpdateAppConfig(c, &req)
	case "update-user-manual-location":
		adminUpdateManualLocation(c, &req)
	case "send-push-notification":
		adminSendPushNotification(c, &req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action"})
	}
}

func adminResetPassword(c *gin.Context, req *AdminActionRequest) {
	if len(req.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, req.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	if err := database.DB.Model(&user).Update("password_hash", hashedPassword).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	if err := deps.JWT.RevokeUserTokens(user.ID); err != nil {
		log.Printf("⚠️ Failed to revoke tokens for user %d: %v", user.ID, err)
	}

	log.Printf("🔑 Admin reset password for user %d", user.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func adminSetUserFlag(c *gin.Context, userID uint, column string, value bool) {
	result := database.DB.Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	log.Printf("👤 Admin set %s=%v for user %d", column, value, userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func adminAddWalletMoney(c *gin.Context, req *AdminActionRequest) {
	description := req.Description
	if description == "" {
		description = "Added by admin"
	}

	balance, err := deps.Wallet.Credit(req.UserID, req.Amount, description, nil)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
			return
		}
		log.Printf("❌ Admin wallet credit failed for user %d: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add wallet money"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "balance": balance})
}

func adminCreateCoupon(c *gin.Context, req *AdminActionRequest) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" || req.DiscountPercent <= 0 || req.DiscountPercent > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code and a discount between 1 and 100 are required"})
		return
	}

	usageLimit := req.UsageLimit
	if usageLimit <= 0 {
		usageLimit = 1
	}

	coupon := models.Coupon{
		Code:             code,
		DiscountPercent:  req.DiscountPercent,
		Active:           true,
		UserID:           req.CouponUserID,
		UsageLimit:       usageLimit,
		FirstBookingOnly: req.FirstBookingOnly,
	}

	if err := database.DB.Create(&coupon).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			c.JSON(http.StatusConflict, gin.H{"error": "Coupon code already exists"})
			return
		}
		log.Printf("❌ Coupon creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coupon"})
		return
	}

	invalidateOffersCache(deps.Redis)
	c.JSON(http.StatusCreated, gin.H{"success": true, "coupon": coupon})
}

func adminToggleCoupon(c *gin.Context, req *AdminActionRequest) {
	var coupon models.Coupon
	if err := database.DB.First(&coupon, req.CouponID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
		return
	}

	if err := database.DB.Model(&coupon).Update("active", !coupon.Active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coupon"})
		return
	}

	invalidateOffersCache(deps.Redis)
	c.JSON(http.StatusOK, gin.H{"success": true, "active": !coupon.Active})
}

func adminDeleteCoupon(c *gin.Context, req *AdminActionRequest) {
	result := database.DB.Delete(&models.Coupon{}, req.CouponID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete coupon"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
		return
	}

	invalidateOffersCache(deps.Redis)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func adminUpdateBookingStatus(c *gin.Context, req *AdminActionRequest) {
	status := models.BookingStatus(req.Status)
	switch status {
	case models.BookingStatusPending, models.BookingStatusConfirmed,
		models.BookingStatusCompleted, models.BookingStatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking status"})
		return
	}

	booking, err := deps.Bookings.UpdateStatus(req.BookingID, status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, services.ErrAlreadyCancelled):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking is already cancelled"})
		default:
			log.Printf("❌ Booking status update failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

func adminRescheduleBooking(c *gin.Context, req *AdminActionRequest) {
	if req.DateTime == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_time is required"})
		return
	}

	booking, err := deps.Bookings.Reschedule(req.BookingID, req.DateTime, "admin")
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, services.ErrAlreadyCancelled):
			c.JSON(http.StatusConflict, gin.H{"error": "Cancelled bookings cannot be rescheduled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reschedule booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

func adminUpdateServicePrice(c *gin.Context, req *AdminActionRequest) {
	result := database.DB.Model(&models.ServicePrice{}).Where("id = ?", req.ServiceID).Updates(map[string]interface{}{
		"hatchback_price": req.HatchbackPrice,
		"sedan_price":     req.SedanPrice,
		"suv_price":       req.SUVPrice,
	})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service price"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func adminUpdateAppConfig(c *gin.Context, req *AdminActionRequest) {
	if req.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	row := models.AppConfig{Key: req.Key, Value: req.Value}
	err := database.DB.Where("key = ?", req.Key).
		Assign(models.AppConfig{Value: req.Value}).
		FirstOrCreate(&row).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update configuration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "config": row})
}

func adminUpdateManualLocation(c *gin.Context, req *AdminActionRequest) {
	result := database.DB.Model(&models.User{}).Where("id = ?", req.UserID).
		Update("manual_location", req.ManualLocation)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func adminSendPushNotification(c *gin.Context, req *AdminActionRequest) {
	if req.Title == "" || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and body are required"})
		return
	}

	if req.UserID != 0 {
		deps.Push.SendToUser(context.Background(), req.UserID, req.Title, req.Body, "promotion", nil)
		c.JSON(http.StatusOK, gin.H{"success": true, "devices": 1})
		return
	}

	count := deps.Push.Broadcast(context.Background(), req.Title, req.Body)
	log.Printf("📣 Admin broadcast sent to %d devices", count)
	c.JSON(http.StatusOK, gin.H{"success": true, "devices": count})
}

// adminUploadImage uploads a carousel image to Cloudinary and returns its URL
func adminUploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}

	if !services.ValidateImageFile(header) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image must be jpg, png or webp under 5MB"})
		return
	}

	url, err := deps.Media.UploadImage(c.Request.Context(), header, "carousel")
	if err != nil {
		if errors.Is(err, services.ErrMediaUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
			return
		}
		log.Printf("❌ Image upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}

// adminEventFeed upgrades the connection to the live booking-event feed
func adminEventFeed(c *gin.Context) {
	ws.ServeEventFeed(deps.EventHub, c.Writer, c.Request, c.GetUint("user_id"))
}
