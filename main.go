package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"urban-auto-server/config"
	"urban-auto-server/database"
	"urban-auto-server/jobs"
	"urban-auto-server/middleware"
	"urban-auto-server/models"
	"urban-auto-server/routes"
	"urban-auto-server/services"
	ws "urban-auto-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()
	gin.SetMode(config.AppConfig.Server.GinMode)

	logrus.SetFormatter(&logrus.JSONFormatter{})

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	database.Seed()

	// Redis is optional; caching and OTP throttling degrade gracefully
	var rdb *redis.Client
	if addr := config.AppConfig.Redis.Addr; addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.AppConfig.Redis.Password,
			DB:       config.AppConfig.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("⚠️ Redis unavailable, continuing without cache: %v", err)
			rdb = nil
		} else {
			log.Println("✅ Redis connected")
		}
	}

	// Build services
	store := services.NewBookingStore(database.DB)
	walletService := services.NewWalletService(store, rdb)
	bookingService := services.NewBookingService(store, walletService)
	otpService := services.NewOTPService(services.NewOTPStore(database.DB), services.NewSMSSender(), rdb)
	couponService := services.NewCouponService(services.NewCouponStore(database.DB))
	paymentService := services.NewPaymentService()
	pushService := services.NewPushService(database.DB, config.AppConfig.Firebase.ServiceAccountPath)
	mediaService := services.NewMediaService()
	jwtService := services.NewJWTService()

	// Admin console event feed
	eventHub := ws.NewHub()
	go eventHub.Run()

	// Booking events fan out to push notifications and the admin feed
	bookingService.Subscribe(func(ev services.BookingEvent) {
		eventHub.Publish("booking."+string(ev.Status), ev.Booking)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data := map[string]string{"booking_id": fmt.Sprint(ev.Booking.ID)}
		switch ev.Status {
		case models.BookingStatusConfirmed:
			pushService.SendToUser(ctx, ev.Booking.UserID, "Booking confirmed",
				fmt.Sprintf("Your %s booking is confirmed.", ev.Booking.ServiceName),
				"booking_confirmed", data)
		case models.BookingStatusCancelled:
			pushService.SendToUser(ctx, ev.Booking.UserID, "Booking cancelled",
				fmt.Sprintf("Your %s booking was cancelled.", ev.Booking.ServiceName),
				"booking_cancelled", data)
		case models.BookingStatusRescheduled:
			pushService.SendToUser(ctx, ev.Booking.UserID, "Booking rescheduled",
				fmt.Sprintf("Your %s booking was moved to %s.", ev.Booking.ServiceName, ev.Booking.PreferredDateTime),
				"booking_rescheduled", data)
		}
	})

	routes.Init(routes.Deps{
		OTP:      otpService,
		Coupons:  couponService,
		Wallet:   walletService,
		Bookings: bookingService,
		Payments: paymentService,
		Push:     pushService,
		Media:    mediaService,
		JWT:      jwtService,
		Store:    store,
		Redis:    rdb,
		EventHub: eventHub,
	})

	// Background jobs
	otpCleanup := jobs.NewOTPCleanupJob()
	otpCleanup.Start()

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := jwtService.CleanupExpiredTokens(); err != nil {
				log.Printf("❌ Refresh token cleanup failed: %v", err)
			}
		}
	}()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	api := router.Group("/api/v1")
	{
		// Public endpoints
		routes.RegisterConfigRoutes(api)

		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(auth)

		// Authenticated customer endpoints
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.RegisterBookingRoutes(protected)
			routes.RegisterCouponRoutes(protected)
			routes.RegisterWalletRoutes(protected)
			routes.RegisterPaymentRoutes(protected)
			routes.RegisterLocationRoutes(protected)
			routes.RegisterNotificationRoutes(protected)
			protected.POST("/auth/delete-account", routes.DeleteAccount)
		}

		// Admin console
		adminAuth := api.Group("/admin/auth")
		adminAuth.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAdminAuthRoutes(adminAuth)

		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
		routes.RegisterAdminRoutes(admin)
	}

	port := config.AppConfig.Server.Port
	log.Printf("🚀 Urban Auto server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
