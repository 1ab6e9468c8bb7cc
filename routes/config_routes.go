package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"urban-auto-server/database"
	"urban-auto-server/models"
)

// RegisterConfigRoutes registers the public app-config and catalog routes
func RegisterConfigRoutes(router *gin.RouterGroup) {
	router.GET("/config", getAppConfig)
	router.GET("/services", listServicePrices)
}

// listServicePrices returns the active service catalog with per-vehicle
// pricing
func listServicePrices(c *gin.Context) {
	var prices []models.ServicePrice
	if err := database.DB.Where("active = ?", true).Order("service_name ASC").Find(&prices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load services"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": prices})
}

// getAppConfig returns client-visible configuration (carousel images,
// payment toggles)
func getAppConfig(c *gin.Context) {
	var rows []models.AppConfig
	if err := database.DB.Where("key IN ?", []string{"signup_carousel", "payment_config"}).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load configuration"})
		return
	}

	out := gin.H{}
	for _, row := range rows {
		var value interface{}
		if err := json.Unmarshal([]byte(row.Value), &value); err != nil {
			value = row.Value
		}
		out[row.Key] = value
	}

	c.JSON(http.StatusOK, out)
}
