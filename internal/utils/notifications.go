package utils

import (
	"fmt"
	"log"

	"isoko_back_end/internal/models"
)

// SendOrderStatusEmail envoie un email de notification de changement de statut
func SendOrderStatusEmail(order models.Order, userEmail string, newStatus string) error {
	subject := getStatusEmailSubject(newStatus)
	html := generateStatusEmailHTML(order, newStatus)

	err := SendEmail(userEmail, subject, html, nil)
	if err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}

	log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, userEmail)
	return nil
}

func getStatusEmailSubject(status string) string {
	switch status {
	case models.OrderConfirmed:
		return "✅ Commande confirmée - Isoko"
	case models.OrderPreparing:
		return "👨‍🍳 Votre commande est en préparation - Isoko"
	case models.OrderReady:
		return "📦 Votre commande est prête - Isoko"
	case models.OrderInTransit:
		return "🚚 Votre commande est en route - Isoko"
	case models.OrderDelivered:
		return "🎉 Votre commande a été livrée - Isoko"
	case models.OrderCancelled:
		return "❌ Commande annulée - Isoko"
	default:
		return "📋 Mise à jour de votre commande - Isoko"
	}
}

func getStatusMessage(status string) string {
	switch status {
	case models.OrderConfirmed:
		return "Votre commande a été confirmée par le restaurant."
	case models.OrderPreparing:
		return "Le restaurant prépare votre commande."
	case models.OrderReady:
		return "Votre commande est prête et attend le livreur."
	case models.OrderInTransit:
		return "Le livreur est en route. Préparez votre code de livraison."
	case models.OrderDelivered:
		return "Votre commande a été livrée. Murakoze !"
	case models.OrderCancelled:
		return "Votre commande a été annulée."
	default:
		return "Le statut de votre commande a changé."
	}
}

func generateStatusEmailHTML(order models.Order, status string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Mise à jour de commande</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Commande %s</h2>
		<p>Bonjour %s,</p>
		<p>%s</p>
		<p style="margin: 20px 0; padding: 12px 24px; background-color: #1a7f37; color: white; border-radius: 25px; display: inline-block; font-weight: 600;">%s</p>
		<p style="margin-top: 30px; color: #555;">
			Murakoze,<br>
			<strong>L'équipe Isoko</strong>
		</p>
	</div>
</body>
</html>`, order.OrderNumber, order.BillingName, getStatusMessage(status), status)
}
