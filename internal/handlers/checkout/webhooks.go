package checkout

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"isoko_back_end/internal/models"
	"isoko_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

// StripeWebhook : confirmation asynchrone des paiements carte.
// La commande existait déjà avec payment_status PENDING ; on ne fait que
// régler le statut de paiement, jamais le statut logistique
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu: %s", event.Type)

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Println("❌ Erreur décodage CheckoutSession:", err)
			break
		}
		if err := orders.SetPaymentStatusByRef(sess.ID, models.PaymentPaid); err != nil {
			log.Printf("⚠️ Paiement Stripe %s non rapproché: %v", sess.ID, err)
		} else {
			log.Printf("💳 Paiement carte confirmé: %s", sess.ID)
		}
	case "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err == nil {
			if err := orders.SetPaymentStatusByRef(sess.ID, models.PaymentFailed); err != nil {
				log.Printf("⚠️ Expiration Stripe %s non rapprochée: %v", sess.ID, err)
			}
		}
	default:
		log.Printf("ℹ️ Événement ignoré: %s", event.Type)
	}

	c.Status(http.StatusOK)
}

// PaypackWebhook : confirmation asynchrone des push MoMo
func PaypackWebhook(c *gin.Context) {
	var event struct {
		Ref    string `json:"ref"`
		Status string `json:"status"` // "successful" | "failed"
	}
	if err := c.ShouldBindJSON(&event); err != nil || event.Ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payload invalide"})
		return
	}

	log.Printf("📥 Événement Paypack reçu: %s → %s", event.Ref, event.Status)

	status := models.PaymentFailed
	if event.Status == "successful" {
		status = models.PaymentPaid
	}

	if err := orders.SetPaymentStatusByRef(event.Ref, status); err != nil {
		log.Printf("⚠️ Transaction Paypack %s non rapprochée: %v", event.Ref, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction inconnue"})
		return
	}

	c.Status(http.StatusOK)
}
