package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"urban-auto-server/models"
	"urban-auto-server/services"
	"urban-auto-server/utils"
)

const (
	offersCacheTTL   = 60 * time.Second
	offersVersionKey = "offers:version"
)

// RegisterCouponRoutes registers coupon routes (auth required)
func RegisterCouponRoutes(router *gin.RouterGroup) {
	router.POST("/coupons/validate", validateCoupon)
	router.GET("/coupons/offers", listOffers)
}

// offersKey builds the per-user cache key under the current version. Bumping
// the version orphans every user's cached list at once.
func offersKey(version int64, userID uint) string {
	return fmt.Sprintf("offers:v%d:user:%d", version, userID)
}

func currentOffersKey(ctx context.Context, rdb *redis.Client, userID uint) string {
	var version int64
	if rdb != nil {
		version, _ = rdb.Get(ctx, offersVersionKey).Int64()
	}
	return offersKey(version, userID)
}

// invalidateOffersCache bumps the offers version after a coupon mutation so
// stale per-user lists are never served
func invalidateOffersCache(rdb *redis.Client) {
	if rdb == nil {
		return
	}
	rdb.Incr(context.Background(), offersVersionKey)
}

// validateCoupon checks a code against the caller's eligibility and usage
func validateCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon code is required"})
		return
	}

	userID := c.GetUint("user_id")
	result, err := deps.Coupons.Validate(req.Code, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCouponNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid coupon code"})
		case errors.Is(err, services.ErrCouponNotEligible):
			c.JSON(http.StatusForbidden, gin.H{"error": "This coupon is not available for you"})
		case errors.Is(err, services.ErrCouponLimitReached):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have already used this coupon"})
		case errors.Is(err, services.ErrCouponFirstBookingOnly):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This coupon is only valid on your first booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate coupon"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":            true,
		"code":             result.Code,
		"discount_percent": result.DiscountPercent,
	})
}

// listOffers returns the coupons the caller can still use, briefly cached
func listOffers(c *gin.Context) {
	userID := c.GetUint("user_id")
	ctx := context.Background()
	cacheKey := currentOffersKey(ctx, deps.Redis, userID)

	var cached []models.Coupon
	if hit, err := utils.GetCache(ctx, deps.Redis, cacheKey, &cached); err == nil && hit {
		c.JSON(http.StatusOK, gin.H{"offers": cached})
		return
	}

	offers, err := deps.Coupons.Offers(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load offers"})
		return
	}

	utils.SetCache(ctx, deps.Redis, cacheKey, offers, offersCacheTTL)

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}
