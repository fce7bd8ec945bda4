package middleware

import (
	"fmt"
	"net/http"
	"time"

	"isoko_back_end/internal/cache"

	"github.com/gin-gonic/gin"
)

const (
	// Limites par endpoint
	CheckoutMaxRequests = 10 // Par minute et par utilisateur
	APIMaxRequests      = 100

	CheckoutWindow = 1 * time.Minute
	APIWindow      = 1 * time.Minute
)

// CheckoutRateLimit limite les soumissions de checkout par utilisateur
func CheckoutRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}

		key := "checkout_rate:" + userID
		count, err := cache.IncrementRateLimit(key, CheckoutWindow)
		if err != nil {
			// Redis en panne ne doit pas bloquer le checkout
			c.Next()
			return
		}

		if count > CheckoutMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de tentatives de paiement. Réessayez dans une minute",
				"retry_after": int(CheckoutWindow.Seconds()),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", CheckoutMaxRequests-count))
		c.Next()
	}
}

// APIRateLimit limite le trafic général par IP
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "api_rate:" + c.ClientIP()
		count, err := cache.IncrementRateLimit(key, APIWindow)
		if err != nil {
			c.Next()
			return
		}

		if count > APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Trop de requêtes. Réessayez dans une minute",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
