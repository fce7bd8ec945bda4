package promo

import (
	"log"
	"net/http"
	"strings"

	"isoko_back_end/internal/cache"
	"isoko_back_end/internal/database"
	"isoko_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// LoadByCode charge un code promo (stocké en majuscules, lookup insensible à la casse)
func LoadByCode(code string) (*models.PromoCode, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	query := database.GetPreparedGetPromoByCode()
	if query == nil {
		query = session.Query(`SELECT id, code, discount_type, discount_value,
			min_order_amount, expires_at, is_active, created_at FROM promo_codes WHERE code = ?`)
	}

	var p models.PromoCode
	if err := query.Bind(strings.ToUpper(strings.TrimSpace(code))).
		Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue,
			&p.MinOrderAmount, &p.ExpiresAt, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ApplyPromo valide un code promo contre un panier et renvoie les montants
// remisés. Purement calculatoire : rien n'est persisté, et réappliquer un
// autre code remplace entièrement l'application précédente
func ApplyPromo(c *gin.Context) {
	cartID := c.Param("cartId")

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code promo requis"})
		return
	}

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
	if cart.IsEmpty() || cart.TotalAmount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	promoCode, err := LoadByCode(req.Code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code promo invalide"})
		return
	}

	validation := models.ValidatePromo(promoCode, cart.TotalAmount)
	if !validation.IsValid {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.ErrorMessage})
		return
	}

	app := validation.Application
	log.Printf("✅ Promo appliquée: %s (−%.0f RWF sur %.0f)", app.Code, app.DiscountAmount, app.OriginalAmount)

	c.JSON(http.StatusOK, gin.H{
		"promo_code":      app.Code,
		"original_amount": app.OriginalAmount,
		"discount_amount": app.DiscountAmount,
		"final_amount":    app.FinalAmount,
	})
}

// RemovePromo : retirer un promo rend simplement les montants non remisés
// du panier (aucune application n'est stockée côté serveur)
func RemovePromo(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{
		"promo_code":      nil,
		"original_amount": cart.TotalAmount,
		"discount_amount": 0,
		"final_amount":    cart.TotalAmount,
	})
}
