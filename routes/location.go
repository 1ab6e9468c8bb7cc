package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"urban-auto-server/utils"
)

// RegisterLocationRoutes registers location routes (auth required)
func RegisterLocationRoutes(router *gin.RouterGroup) {
	router.GET("/location/reverse-geocode", reverseGeocode)
}

// reverseGeocode proxies lat/lng through the Google Maps geocoding API so
// the Maps key never ships in the app
func reverseGeocode(c *gin.Context) {
	lat := c.Query("lat")
	lng := c.Query("lng")
	if lat == "" || lng == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}

	result, err := utils.ReverseGeocode(lat, lng)
	if err != nil {
		log.Printf("❌ Reverse geocoding failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve location"})
		return
	}

	c.JSON(http.StatusOK, result)
}
