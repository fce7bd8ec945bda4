package checkout

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"isoko_back_end/internal/cache"
	"isoko_back_end/internal/config"
	promoh "isoko_back_end/internal/handlers/promo"
	"isoko_back_end/internal/ledger"
	"isoko_back_end/internal/models"
	"isoko_back_end/internal/orders"
	"isoko_back_end/internal/payment"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Checkout transforme un panier en commande payée (ou en attente de
// redirection provider / d'OTP voucher). Une seule tentative à la fois par
// panier, et jamais plus d'une commande COMPLETED par panier
func Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	email := c.GetString("email")
	if userID == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	// 1. Panier : existant, non vide, appartenant à l'appelant
	cart, err := cache.GetCart(req.CartID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide ou introuvable"})
		return
	}
	if cart.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ce panier ne vous appartient pas"})
		return
	}
	if cart.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	// 2. Moyen de paiement et stratégie
	method, err := resolvePaymentMethod(req.PaymentMethodID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Moyen de paiement invalide ou inactif", "field": "payment_method_id"})
		return
	}

	strategy, err := payment.ForMethod(method.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "payment_method_id"})
		return
	}

	// 3. Validation champ par champ : le client doit pouvoir réafficher
	// la cause exacte
	if fe := strategy.Validate(&req); fe != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fe.Message, "field": fe.Field})
		return
	}

	// 4. Panier déjà réglé → on renvoie la commande existante, jamais un doublon
	if existingID, ok := orders.OrderIDForCart(req.CartID); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Ce panier a déjà été réglé",
			"order_id": existingID,
		})
		return
	}

	// 5. Verrou par panier : deux checkouts concurrents ne passent pas
	locked, err := cache.AcquireCheckoutLock(req.CartID)
	if err != nil || !locked {
		c.JSON(http.StatusConflict, gin.H{"error": "Un checkout est déjà en cours pour ce panier"})
		return
	}
	defer cache.ReleaseCheckoutLock(req.CartID)

	if existingID, ok := orders.OrderIDForCart(req.CartID); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Ce panier a déjà été réglé",
			"order_id": existingID,
		})
		return
	}

	// 6. Promo : la remise s'applique sur le sous-total, avant les frais
	var promoApp *models.PromoApplication
	if strings.TrimSpace(req.PromoCode) != "" {
		promoCode, err := promoh.LoadByCode(req.PromoCode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Code promo invalide", "field": "promo_code"})
			return
		}
		validation := models.ValidatePromo(promoCode, cart.TotalAmount)
		if !validation.IsValid {
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.ErrorMessage, "field": "promo_code"})
			return
		}
		promoApp = validation.Application
	}

	// 7. Frais d'emballage : opt-in, et dispensés si un abonnement actif
	// les couvre déjà
	var packagingFee float64
	if req.WithPackaging && !ledger.SubscriptionCoversPackaging(userID) {
		packagingFee = config.PackagingFee()
	}

	pricing := models.ComputePricing(cart.TotalAmount, promoApp, packagingFee)

	sc := &payment.SettleContext{
		UserID:  userID,
		Email:   email,
		Cart:    cart,
		Pricing: pricing,
		Request: &req,
	}

	// 8. Le chemin voucher diffère : le crédit est réservé mais la commande
	// n'existe qu'après vérification de l'OTP
	if method.Name == models.MethodVoucher {
		settleVoucher(c, strategy, sc)
		return
	}

	// 9. Réserver le panier AVANT de régler : si le règlement échoue on
	// libère, mais un wallet débité sans commande est impossible
	orderID := gocql.TimeUUID()
	applied, existingID, err := orders.ClaimCart(req.CartID, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Ce panier a déjà été réglé",
			"order_id": existingID,
		})
		return
	}

	result, err := strategy.Settle(sc)
	if err != nil {
		orders.UnclaimCart(req.CartID)
		respondSettleError(c, err)
		return
	}

	order := buildOrder(orderID, userID, cart, &req, method.Name, pricing, result)
	if err := finalizeOrder(order, email); err != nil {
		log.Printf("❌ Commande %s non persistée après règlement: %v", order.OrderNumber, err)

		// Règlement interne (wallet) : on le défait et on rend le panier,
		// un solde débité sans commande est interdit
		if refunder, ok := strategy.(payment.Refunder); ok {
			if rerr := refunder.Refund(sc); rerr != nil {
				log.Printf("❌ Compensation %s échouée pour %s: %v", method.Name, order.OrderNumber, rerr)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, contactez le support", "order_id": order.ID.String()})
				return
			}
			orders.UnclaimCart(req.CartID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
			return
		}

		// Provider externe déjà engagé : on ne défait rien ici, l'opérateur
		// doit réconcilier avec la référence de paiement
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, contactez le support", "order_id": order.ID.String()})
		return
	}

	log.Printf("🛒 Checkout %s: %s (%.0f RWF, %s)", result.Status, order.OrderNumber, pricing.Total, method.Name)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"checkout":          order,
			"requires_redirect": result.Status == models.CheckoutAwaitingRedirect,
			"redirect_url":      result.RedirectURL,
		},
	})
}

// respondSettleError mappe les échecs de règlement sur des rejets précis :
// fonds insuffisants avec le manque exact, erreur provider en clair
func respondSettleError(c *gin.Context, err error) {
	var balErr ledger.ErrInsufficientBalance
	if errors.As(err, &balErr) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":     balErr.Error(),
			"shortfall": balErr.Shortfall(),
		})
		return
	}

	var creditErr ledger.ErrInsufficientCredit
	if errors.As(err, &creditErr) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":     creditErr.Error(),
			"shortfall": creditErr.Shortfall(),
		})
		return
	}

	var provErr *payment.ProviderError
	if errors.As(err, &provErr) {
		log.Printf("❌ Échec provider %s: %v", provErr.Provider, provErr.Err)
		c.JSON(http.StatusBadGateway, gin.H{"error": provErr.Error()})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
