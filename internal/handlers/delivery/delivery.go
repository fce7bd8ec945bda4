// Package delivery expose les opérations logistiques : suivi, avancement de
// statut, annulation et recherche des commandes
package delivery

import (
	"log"
	"net/http"
	"strings"

	"isoko_back_end/internal/ledger"
	"isoko_back_end/internal/models"
	"isoko_back_end/internal/orders"
	"isoko_back_end/internal/search"
	"isoko_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// GetDelivery : vue opérateur d'une commande avec les actions possibles
func GetDelivery(c *gin.Context) {
	order, err := orders.Load(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order":       order,
			"next_status": models.NextStatus(order.Status),
			"can_cancel":  models.CanCancel(order.Status),
		},
	})
}

// AdvanceStatus fait avancer une commande d'exactement une étape.
// DELIVERED n'est jamais accepté ici : la livraison se confirme par le code
// OTP du client (VerifyDeliveryOtp)
func AdvanceStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut manquant"})
		return
	}

	target := strings.ToUpper(strings.TrimSpace(req.Status))
	if !models.IsValidStatus(target) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut inconnu: " + target})
		return
	}
	if target == models.OrderDelivered {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "La livraison se confirme avec le code OTP du client",
		})
		return
	}
	if target == models.OrderCancelled {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Utilisez l'endpoint d'annulation",
		})
		return
	}

	order, err := orders.Load(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if !models.CanAdvanceTo(order.Status, target) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Transition invalide",
			"current_status": order.Status,
			"next_status":    models.NextStatus(order.Status),
		})
		return
	}

	applied, err := orders.AdvanceStatus(order.ID, order.Status, target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}
	if !applied {
		// Un autre opérateur a gagné la course
		c.JSON(http.StatusConflict, gin.H{"error": "Le statut a changé entre-temps, rechargez la commande"})
		return
	}

	order.Status = target
	log.Printf("🚚 Commande %s → %s", order.OrderNumber, target)

	// Le passage en livraison déclenche l'envoi du code de confirmation
	if target == models.OrderInTransit {
		if err := issueDeliveryOtp(order); err != nil {
			log.Printf("❌ Code de livraison non émis pour %s: %v", order.OrderNumber, err)
		}
	} else {
		go func(o models.Order) {
			if o.UserEmail != "" {
				utils.SendOrderStatusEmail(o, o.UserEmail, o.Status)
			}
		}(*order)
	}

	go search.IndexOrder(*order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order":       order,
			"next_status": models.NextStatus(order.Status),
		},
	})
}

// issueDeliveryOtp génère le code de livraison, stocke son empreinte et
// l'envoie au client avec un QR que le livreur peut scanner
func issueDeliveryOtp(order *models.Order) error {
	otp, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	if err := orders.SetDeliveryOtpHash(order.ID, utils.HashOTP(otp)); err != nil {
		return err
	}

	go func(o models.Order, code string) {
		if o.UserEmail == "" {
			return
		}
		qr, err := utils.GenerateOtpQR(o.OrderNumber, code)
		if err != nil {
			log.Println("⚠️ QR non généré:", err)
			qr = ""
		}
		html := utils.GenerateOtpHTML(
			"Votre commande est en route 🚚",
			"Donnez ce code au livreur pour confirmer la réception de votre commande "+o.OrderNumber+".",
			code, qr)
		if err := utils.SendEmail(o.UserEmail, "🚚 Code de livraison - Isoko", html, nil); err != nil {
			log.Println("❌ Erreur envoi code de livraison:", err)
		}
	}(*order, otp)

	return nil
}

// CancelOrder annule une commande non terminale. Si la commande a été réglée
// par voucher, le crédit consommé est rendu
func CancelOrder(c *gin.Context) {
	order, err := orders.Load(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if !models.CanCancel(order.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Commande déjà " + order.Status + ", annulation impossible",
			"current_status": order.Status,
		})
		return
	}

	applied, err := orders.AdvanceStatus(order.ID, order.Status, models.OrderCancelled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, réessayez"})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": "Le statut a changé entre-temps, rechargez la commande"})
		return
	}

	order.Status = models.OrderCancelled

	// Compensation : le crédit voucher capturé retourne au client
	if order.VoucherCode != "" {
		if voucher, err := ledger.GetVoucherByCode(order.UserID, order.VoucherCode); err != nil {
			log.Printf("⚠️ Voucher %s introuvable, crédit non rendu: %v", order.VoucherCode, err)
		} else if voucher.Status != models.VoucherSettled {
			if err := ledger.ReleaseVoucherCredit(voucher.ID, order.TotalAmount); err != nil {
				log.Printf("❌ Crédit voucher non rendu pour %s: %v", order.OrderNumber, err)
			} else {
				log.Printf("♻️ Crédit voucher rendu: %.0f RWF sur %s", order.TotalAmount, order.VoucherCode)
			}
		}
	}

	go search.IndexOrder(*order)
	go func(o models.Order) {
		if o.UserEmail != "" {
			utils.SendOrderStatusEmail(o, o.UserEmail, models.OrderCancelled)
		}
	}(*order)

	log.Printf("❌ Commande %s annulée", order.OrderNumber)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Commande annulée",
		"data":    gin.H{"order": order},
	})
}

// SearchDeliveries : recherche opérateur plein texte (numéro, nom, téléphone)
func SearchDeliveries(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q manquant"})
		return
	}

	results, err := search.SearchOrders(query)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recherche indisponible: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(results), "data": results})
}
