package handlers

import (
	"net/http"

	"isoko_back_end/internal/cache"

	"github.com/gin-gonic/gin"
)

// GetCart : lecture seule du panier, pour que le client affiche les totaux
// qui font foi côté serveur. Les mutations de panier sont hors de ce service
func GetCart(c *gin.Context) {
	cartID := c.Param("cartId")
	userID := c.GetString("user_id")

	cart, err := cache.GetCart(cartID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Panier introuvable"})
		return
	}
	if cart.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ce panier ne vous appartient pas"})
		return
	}

	c.JSON(http.StatusOK, cart)
}
