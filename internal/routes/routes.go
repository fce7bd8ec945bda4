package routes

import (
	"isoko_back_end/internal/handlers"
	"isoko_back_end/internal/handlers/checkout"
	"isoko_back_end/internal/handlers/delivery"
	"isoko_back_end/internal/handlers/promo"
	"isoko_back_end/internal/handlers/wallet"
	"isoko_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Webhooks providers : pas d'auth, la signature fait foi
	r.POST("/payments/stripe/webhook", checkout.StripeWebhook)
	r.POST("/payments/paypack/webhook", checkout.PaypackWebhook)

	api := r.Group("/api", middleware.APIRateLimit(), middleware.AuthRequired())

	// Panier & promo
	api.GET("/carts/:cartId", handlers.GetCart)
	api.POST("/carts/:cartId/promo", promo.ApplyPromo)
	api.DELETE("/carts/:cartId/promo", promo.RemovePromo)

	// Wallet & vouchers
	api.GET("/wallet", wallet.GetMyWallet)
	api.GET("/wallet/vouchers", wallet.GetMyVouchers)

	// Checkout
	api.POST("/checkout", middleware.CheckoutRateLimit(), checkout.Checkout)
	api.POST("/checkout/voucher-otp/verify", checkout.VerifyVoucherOtp)
	api.POST("/checkout/voucher-otp/cancel", checkout.CancelVoucherOtp)

	// Suivi client
	api.GET("/orders/:orderId", handlers.GetMyOrder)

	// Logistique
	deliveries := api.Group("/deliveries", middleware.LogisticsOnly())
	deliveries.GET("/search", delivery.SearchDeliveries)
	deliveries.GET("/:orderId", delivery.GetDelivery)
	deliveries.PATCH("/:orderId/status", delivery.AdvanceStatus)
	deliveries.POST("/:orderId/cancel", delivery.CancelOrder)
	deliveries.POST("/:orderId/verify-otp", delivery.VerifyDeliveryOtp)
}
