package handlers

import (
	"net/http"

	"isoko_back_end/internal/models"
	"isoko_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

// GetMyOrder : suivi client d'une commande. Seul le propriétaire y accède,
// les vues opérateur passent par /api/deliveries
func GetMyOrder(c *gin.Context) {
	order, err := orders.Load(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if order.UserID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order":       order,
			"is_terminal": models.IsTerminalStatus(order.Status),
		},
	})
}
