package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"urban-auto-server/services"
	"urban-auto-server/utils"
)

// sendOTP generates and delivers a verification code to a phone number
func sendOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number is required"})
		return
	}

	phone := utils.NormalizePhoneNumber(req.Phone)
	if !utils.ValidatePhoneNumber(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid 10-digit phone number"})
		return
	}

	if err := deps.OTP.Send(c.Request.Context(), phone); err != nil {
		if errors.Is(err, services.ErrOTPThrottled) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Please wait a minute before requesting another code"})
			return
		}
		log.Printf("❌ OTP send failed for %s: %v", phone, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent"})
}

// verifyOTP checks a code against the newest unused entry for the phone
func verifyOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone and code are required"})
		return
	}

	phone := utils.NormalizePhoneNumber(req.Phone)
	if !utils.ValidatePhoneNumber(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	if err := deps.OTP.Verify(phone, req.Code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "verified": true})
}
