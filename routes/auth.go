package routes

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"urban-auto-server/database"
	"urban-auto-server/models"
	"urban-auto-server/utils"
)

// SignUpRequest represents the registration request
type SignUpRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// SignInRequest represents the phone/password login request
type SignInRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterAuthRoutes registers authentication routes
func RegisterAuthRoutes(router *gin.RouterGroup) {
	router.POST("/signup", signUp)
	router.POST("/login", signIn)
	router.POST("/check-exists", checkExists)
	router.POST("/send-otp", sendOTP)
	router.POST("/verify-otp", verifyOTP)
	router.POST("/reset-password", resetPassword)
	router.POST("/refresh", refreshToken)
	router.POST("/logout", logout)
}

// signUp handles user registration
func signUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "message": err.Error()})
		return
	}

	phone := utils.NormalizePhoneNumber(req.Phone)
	if !utils.ValidatePhoneNumber(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid 10-digit phone number"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Check if user already exists
	var existing models.User
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}
	if err := database.DB.Where("phone = ?", phone).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Number is already registered"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user := models.User{
		FullName:     req.FullName,
		Email:        email,
		Phone:        phone,
		PasswordHash: hashedPassword,
		Role:         models.RoleCustomer,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		log.Printf("❌ Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user account"})
		return
	}

	pair, err := deps.JWT.GenerateTokenPair(user.ID, string(user.Role), c.GetHeader("X-Device-ID"), c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "User registered successfully",
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
		"user":          user,
	})
}

// signIn handles phone + password login
func signIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "message": err.Error()})
		return
	}

	phone := utils.NormalizePhoneNumber(req.Phone)
	if !utils.ValidatePhoneNumber(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid 10-digit phone number"})
		return
	}

	var user models.User
	if err := database.DB.Where("phone = ?", phone).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No account found with this phone number"})
		return
	}

	if user.Blocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your account has been blocked. Contact support."})
		return
	}

	// The admin console has its own login endpoint
	if user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin account must use admin login."})
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid phone number or password"})
		return
	}

	pair, err := deps.JWT.GenerateTokenPair(user.ID, string(user.Role), c.GetHeader("X-Device-ID"), c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
		"user":          user,
	})
}

// checkExists reports whether an email or phone is already registered
func checkExists(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	if req.Email != "" {
		var user models.User
		if err := database.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
	}

	if req.Phone != "" {
		phone := utils.NormalizePhoneNumber(req.Phone)
		var user models.User
		if err := database.DB.Where("phone = ?", phone).First(&user).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Number is already registered"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"available": true})
}

// resetPassword changes the password for a phone that completed OTP
// verification within the expiry window
func resetPassword(c *gin.Context) {
	var req struct {
		Phone       string `json:"phone" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}

	phone := utils.NormalizePhoneNumber(req.Phone)
	if !utils.ValidatePhoneNumber(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	if !deps.OTP.RecentlyVerified(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP verification required"})
		return
	}

	var user models.User
	if err := database.DB.Where("phone = ?", phone).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No account found with this phone number"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	if err := database.DB.Model(&user).Update("password_hash", hashedPassword).Error; err != nil {
		log.Printf("❌ Password update failed for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	// Existing sessions are invalidated along with the old password
	if err := deps.JWT.RevokeUserTokens(user.ID); err != nil {
		log.Printf("⚠️ Failed to revoke tokens for user %d: %v", user.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "email": user.Email})
}

// refreshToken exchanges a valid refresh token for a new token pair
func refreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token required"})
		return
	}

	stored, err := deps.JWT.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, stored.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if user.Blocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your account has been blocked. Contact support."})
		return
	}

	// Rotate: revoke the used token, issue a fresh pair
	if err := deps.JWT.RevokeRefreshToken(req.RefreshToken); err != nil {
		log.Printf("⚠️ Failed to revoke refresh token: %v", err)
	}

	pair, err := deps.JWT.GenerateTokenPair(user.ID, string(user.Role), stored.DeviceID, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
	})
}

// logout revokes the supplied refresh token
func logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		if err := deps.JWT.RevokeRefreshToken(req.RefreshToken); err != nil {
			log.Printf("⚠️ Failed to revoke refresh token on logout: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// DeleteAccount removes the authenticated user and all their data
func DeleteAccount(c *gin.Context) {
	userID := c.GetUint("user_id")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.WalletTransaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Coupon{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.DeviceToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		log.Printf("❌ Account deletion failed for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	log.Printf("🗑️ Account deleted for user %d", userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
