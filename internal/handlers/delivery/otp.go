package delivery

import (
	"log"
	"net/http"

	"isoko_back_end/internal/cache"
	"isoko_back_end/internal/config"
	"isoko_back_end/internal/models"
	"isoko_back_end/internal/orders"
	"isoko_back_end/internal/search"
	"isoko_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// VerifyDeliveryOtp confirme la remise de la commande : le livreur saisit le
// code reçu par le client. Seule une commande IN_TRANSIT peut être confirmée ;
// un second appel sur une commande déjà livrée est rejeté
func VerifyDeliveryOtp(c *gin.Context) {
	var req struct {
		Otp string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code manquant"})
		return
	}

	order, err := orders.Load(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if order.Status != models.OrderInTransit {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Cette commande n'est pas en cours de livraison",
			"current_status": order.Status,
		})
		return
	}

	if locked, ttl := cache.OtpLocked("delivery", order.ID.String()); locked {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Trop de tentatives. Réessayez plus tard",
			"retry_after": int(ttl.Seconds()),
		})
		return
	}

	hash, err := orders.DeliveryOtpHash(order.ID)
	if err != nil || hash == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Aucun code de livraison émis pour cette commande"})
		return
	}

	if !utils.VerifyOTP(req.Otp, hash) {
		remaining := cache.OtpFailed("delivery", order.ID.String(),
			config.OtpMaxAttempts(), config.OtpLockout())
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":             "INVALID",
			"error":              "Code incorrect",
			"remaining_attempts": remaining,
		})
		return
	}

	cache.OtpSucceeded("delivery", order.ID.String())

	applied, err := orders.AdvanceStatus(order.ID, models.OrderInTransit, models.OrderDelivered)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}
	if !applied {
		// Livraison déjà confirmée par un appel concurrent
		c.JSON(http.StatusConflict, gin.H{"error": "Le statut a changé entre-temps, rechargez la commande"})
		return
	}

	order.Status = models.OrderDelivered
	log.Printf("🎉 Commande %s livrée", order.OrderNumber)

	go search.IndexOrder(*order)
	go func(o models.Order) {
		if o.UserEmail != "" {
			utils.SendOrderStatusEmail(o, o.UserEmail, models.OrderDelivered)
		}
	}(*order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Livraison confirmée",
		"data":    gin.H{"order": order},
	})
}
