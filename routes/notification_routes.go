package routes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"urban-auto-server/database"
	"urban-auto-server/models"
)

// RegisterNotificationRoutes registers notification routes (auth required)
func RegisterNotificationRoutes(router *gin.RouterGroup) {
	router.POST("/notifications/register-token", registerDeviceToken)
	router.GET("/notifications/has-token", hasDeviceToken)
	router.GET("/notifications", listNotifications)
	router.GET("/notifications/unread-count", unreadCount)
	router.POST("/notifications/mark-read/:id", markRead)
	router.POST("/notifications/mark-all-read", markAllRead)
}

// registerDeviceToken upserts an FCM token for the caller's device.
// Re-registering an existing token reactivates it.
func registerDeviceToken(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Platform string `json:"platform" binding:"required"`
		DeviceID string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token and platform are required"})
		return
	}

	userID := c.GetUint("user_id")
	token := models.DeviceToken{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
		DeviceID: req.DeviceID,
		Active:   true,
	}

	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "device_id", "active", "updated_at"}),
	}).Create(&token).Error
	if err != nil {
		log.Printf("❌ Failed to register device token for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// hasDeviceToken reports whether the caller has any active push token
func hasDeviceToken(c *gin.Context) {
	userID := c.GetUint("user_id")

	var count int64
	database.DB.Model(&models.DeviceToken{}).
		Where("user_id = ? AND active = ?", userID, true).
		Count(&count)

	c.JSON(http.StatusOK, gin.H{"has_token": count > 0})
}

// listNotifications returns the caller's notifications, newest first
func listNotifications(c *gin.Context) {
	userID := c.GetUint("user_id")

	limit := 50
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	var notifications []models.Notification
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// unreadCount returns the caller's unread notification count
func unreadCount(c *gin.Context) {
	userID := c.GetUint("user_id")

	var count int64
	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count)

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// markRead marks one of the caller's notifications as read
func markRead(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// markAllRead marks all of the caller's notifications as read
func markAllRead(c *gin.Context) {
	userID := c.GetUint("user_id")

	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
