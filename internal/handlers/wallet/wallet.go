package wallet

import (
	"net/http"

	"isoko_back_end/internal/ledger"

	"github.com/gin-gonic/gin"
)

// GetMyWallet retourne le wallet du compte connecté
func GetMyWallet(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	w, err := ledger.GetWalletByUser(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun wallet pour ce compte"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// GetMyVouchers retourne uniquement les vouchers utilisables du compte :
// le client n'a jamais à refiltrer
func GetMyVouchers(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	vouchers, err := ledger.ListUsableVouchers(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération vouchers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vouchers": vouchers,
		"total":    len(vouchers),
	})
}
