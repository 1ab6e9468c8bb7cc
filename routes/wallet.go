package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"urban-auto-server/database"
	"urban-auto-server/models"
	"urban-auto-server/utils"
)

const walletCacheTTL = 60 * time.Second

// RegisterWalletRoutes registers wallet routes (auth required)
func RegisterWalletRoutes(router *gin.RouterGroup) {
	router.GET("/wallet", getWallet)
}

type walletResponse struct {
	Balance      int64                      `json:"balance"`
	Transactions []models.WalletTransaction `json:"transactions"`
}

// getWallet returns the caller's balance and recent ledger entries, cached
// briefly in Redis since the app polls this on every home screen visit
func getWallet(c *gin.Context) {
	userID := c.GetUint("user_id")
	cacheKey := deps.Wallet.CacheKey(userID)
	ctx := context.Background()

	var cached walletResponse
	if hit, err := utils.GetCache(ctx, deps.Redis, cacheKey, &cached); err == nil && hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	var user models.User
	if err := database.DB.Select("wallet_balance").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}

	transactions, err := deps.Wallet.RecentTransactions(userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	resp := walletResponse{Balance: user.WalletBalance, Transactions: transactions}
	utils.SetCache(ctx, deps.Redis, cacheKey, resp, walletCacheTTL)

	c.JSON(http.StatusOK, resp)
}
