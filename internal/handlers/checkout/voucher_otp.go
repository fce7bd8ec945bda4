package checkout

import (
	"log"
	"net/http"
	"time"

	"isoko_back_end/internal/cache"
	"isoko_back_end/internal/config"
	"isoko_back_end/internal/ledger"
	"isoko_back_end/internal/models"
	"isoko_back_end/internal/orders"
	"isoko_back_end/internal/payment"
	"isoko_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// settleVoucher : réserve le crédit puis ouvre une session OTP. La commande
// n'existe pas encore — elle sera créée par VerifyVoucherOtp
func settleVoucher(c *gin.Context, strategy payment.Strategy, sc *payment.SettleContext) {
	result, err := strategy.Settle(sc)
	if err != nil {
		respondSettleError(c, err)
		return
	}

	voucherID, err := gocql.ParseUUID(result.VoucherID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}

	release := func() {
		if err := ledger.ReleaseVoucherCredit(voucherID, sc.Pricing.Total); err != nil {
			log.Printf("❌ Crédit voucher non libéré après échec session: %v", err)
		}
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		release()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}

	session := &models.CheckoutSession{
		ID:        uuid.NewString(),
		UserID:    sc.UserID,
		Email:     sc.Email,
		Request:   *sc.Request,
		Cart:      *sc.Cart,
		Pricing:   sc.Pricing,
		VoucherID: result.VoucherID,
		OtpHash:   utils.HashOTP(otp),
		CreatedAt: time.Now(),
	}

	ttl := config.CheckoutSessionTTL()
	if err := cache.StoreCheckoutSession(session, ttl); err != nil {
		release()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}

	// Trace persistante : permet de compenser même si la clé Redis a expiré
	if err := ledger.CreateReservation(session.ID, voucherID, sc.Cart.ID, sc.Pricing.Total); err != nil {
		cache.DeleteCheckoutSession(session.ID)
		release()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}

	go func(to, code string) {
		html := utils.GenerateOtpHTML(
			"Vérification de votre paiement voucher",
			"Saisissez ce code pour confirmer votre commande. Il expire bientôt.",
			code, "")
		if err := utils.SendEmail(to, "🎫 Code de vérification voucher - Isoko", html, nil); err != nil {
			log.Println("❌ Erreur envoi OTP voucher:", err)
		}
	}(sc.Email, otp)

	log.Printf("🎫 Session OTP voucher ouverte: %s (%.0f RWF, TTL %s)", session.ID, sc.Pricing.Total, ttl)

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"requires_otp":        true,
		"checkout_session_id": session.ID,
		"expires_in":          int(ttl.Seconds()),
	})
}

// VerifyVoucherOtp finalise un checkout voucher. Session expirée : le crédit
// réservé est rendu au voucher (compensation). Mauvais code : rejouable
// jusqu'au verrouillage, sans libération de crédit
func VerifyVoucherOtp(c *gin.Context) {
	var req struct {
		CheckoutSessionID string `json:"checkout_session_id" binding:"required"`
		Otp               string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	if locked, ttl := cache.OtpLocked("voucher", req.CheckoutSessionID); locked {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Trop de tentatives. Réessayez plus tard",
			"retry_after": int(ttl.Seconds()),
		})
		return
	}

	session, err := cache.GetCheckoutSession(req.CheckoutSessionID)
	if err != nil {
		if cache.IsNil(err) {
			// Session expirée : compensation, le crédit réservé est rendu
			if err := ledger.ReleaseReservation(req.CheckoutSessionID); err != nil {
				log.Printf("❌ Compensation voucher échouée pour %s: %v", req.CheckoutSessionID, err)
			}
			c.JSON(http.StatusGone, gin.H{
				"status": models.CheckoutExpired,
				"error":  "Session expirée, le crédit voucher a été libéré",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}

	if session.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette session ne vous appartient pas"})
		return
	}

	if !utils.VerifyOTP(req.Otp, session.OtpHash) {
		remaining := cache.OtpFailed("voucher", req.CheckoutSessionID,
			config.OtpMaxAttempts(), config.OtpLockout())
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":             "INVALID",
			"error":              "Code incorrect",
			"remaining_attempts": remaining,
		})
		return
	}

	cache.OtpSucceeded("voucher", req.CheckoutSessionID)

	// Même garantie d'idempotence que le checkout direct
	orderID := gocql.TimeUUID()
	applied, existingID, err := orders.ClaimCart(session.Cart.ID, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}
	if !applied {
		// Le panier a été réglé autrement entre-temps : on rend le crédit
		if err := ledger.ReleaseReservation(req.CheckoutSessionID); err != nil {
			log.Printf("❌ Compensation voucher échouée pour %s: %v", req.CheckoutSessionID, err)
		}
		cache.DeleteCheckoutSession(req.CheckoutSessionID)
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Ce panier a déjà été réglé",
			"order_id": existingID,
		})
		return
	}

	// La réservation ne se consomme qu'une fois
	captured, err := ledger.CaptureReservation(req.CheckoutSessionID)
	if err != nil || !captured {
		orders.UnclaimCart(session.Cart.ID)
		c.JSON(http.StatusGone, gin.H{
			"status": models.CheckoutExpired,
			"error":  "Réservation déjà libérée, relancez le checkout",
		})
		return
	}

	result := &payment.Result{
		Status:        models.CheckoutCompleted,
		PaymentStatus: models.PaymentPaid,
		Provider:      "voucher",
		VoucherCode:   session.Request.VoucherCode,
	}

	order := buildOrder(orderID, userID, &session.Cart, &session.Request,
		models.MethodVoucher, session.Pricing, result)
	if err := finalizeOrder(order, session.Email); err != nil {
		log.Printf("❌ Commande %s non persistée après capture voucher: %v", order.OrderNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, contactez le support"})
		return
	}

	cache.DeleteCheckoutSession(req.CheckoutSessionID)

	log.Printf("✅ Checkout voucher finalisé: %s (%.0f RWF)", order.OrderNumber, order.TotalAmount)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Commande confirmée",
		"data":    gin.H{"checkout": order},
	})
}

// CancelVoucherOtp : abandon explicite d'une session OTP. Traité comme une
// expiration anticipée, pas comme une erreur
func CancelVoucherOtp(c *gin.Context) {
	var req struct {
		CheckoutSessionID string `json:"checkout_session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	userID := c.GetString("user_id")

	// La session peut déjà avoir expiré ; la compensation reste due, mais
	// jamais pour le compte d'un autre : à défaut de session, le voucher de
	// la réservation persistée désigne le propriétaire
	owner := ""
	session, err := cache.GetCheckoutSession(req.CheckoutSessionID)
	switch {
	case err == nil:
		owner = session.UserID
	case cache.IsNil(err):
		owner, err = ledger.ReservationOwner(req.CheckoutSessionID)
		if err != nil && err != gocql.ErrNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}

	if !cancelAuthorized(owner, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette session ne vous appartient pas"})
		return
	}

	cache.DeleteCheckoutSession(req.CheckoutSessionID)

	if err := ledger.ReleaseReservation(req.CheckoutSessionID); err != nil {
		log.Printf("❌ Compensation voucher échouée pour %s: %v", req.CheckoutSessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Checkout annulé, crédit libéré"})
}

// cancelAuthorized : seul le propriétaire identifié peut libérer sa
// réservation. Un propriétaire vide signifie qu'aucune réservation n'existe
// plus : l'annulation est alors un no-op idempotent, elle ne libère rien
func cancelAuthorized(owner, caller string) bool {
	return owner == "" || owner == caller
}
