package routes

import (
	"github.com/redis/go-redis/v9"

	"urban-auto-server/services"
	ws "urban-auto-server/websocket"
)

// Deps carries the shared services handlers use. Wired once from main.
type Deps struct {
	OTP      *services.OTPService
	Coupons  *services.CouponService
	Wallet   *services.WalletService
	Bookings *services.BookingService
	Payments *services.PaymentService
	Push     *services.PushService
	Media    *services.MediaService
	JWT      *services.JWTService
	Store    services.BookingStore
	Redis    *redis.Client
	EventHub *ws.Hub
}

var deps Deps

// Init wires the route handlers to their services
func Init(d Deps) {
	deps = d
}
