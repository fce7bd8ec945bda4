package checkout

import (
	"fmt"
	"log"
	"time"

	"isoko_back_end/internal/cache"
	"isoko_back_end/internal/database"
	"isoko_back_end/internal/models"
	"isoko_back_end/internal/orders"
	"isoko_back_end/internal/payment"
	"isoko_back_end/internal/search"
	"isoko_back_end/internal/utils"

	"github.com/gocql/gocql"
)

// resolvePaymentMethod charge un moyen de paiement actif depuis la table
// de référence
func resolvePaymentMethod(methodID string) (*models.PaymentMethod, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var m models.PaymentMethod
	m.ID = methodID
	if err := session.Query("SELECT name, is_active FROM payment_methods WHERE method_id = ?", methodID).
		Scan(&m.Name, &m.IsActive); err != nil {
		return nil, fmt.Errorf("moyen de paiement inconnu")
	}
	if !m.IsActive {
		return nil, fmt.Errorf("moyen de paiement désactivé")
	}
	return &m, nil
}

// buildOrder assemble la commande depuis le panier figé et le résultat du
// règlement
func buildOrder(orderID gocql.UUID, userID string, cart *models.Cart, req *models.CheckoutRequest,
	methodName string, pricing models.OrderPricing, result *payment.Result) *models.Order {

	now := time.Now()
	status := models.OrderPending

	return &models.Order{
		ID:              orderID,
		OrderNumber:     orders.NewOrderNumber(orderID),
		CartID:          cart.ID,
		UserID:          userID,
		RestaurantID:    cart.RestaurantID,
		Items:           cart.Items,
		Subtotal:        pricing.Subtotal,
		DiscountAmount:  pricing.DiscountAmount,
		PackagingFee:    pricing.PackagingFee,
		DeliveryFee:     pricing.DeliveryFee,
		TotalAmount:     pricing.Total,
		BillingName:     req.BillingName,
		BillingPhone:    req.BillingPhone,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   methodName,
		PaymentProvider: result.Provider,
		PaymentRef:      result.Ref,
		PaymentStatus:   result.PaymentStatus,
		Status:          status,
		PromoCode:       pricing.PromoCode,
		VoucherCode:     result.VoucherCode,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// finalizeOrder persiste la commande, consomme le panier, puis indexe et
// notifie en tâche de fond
func finalizeOrder(order *models.Order, email string) error {
	order.UserEmail = email
	if err := orders.Insert(order); err != nil {
		return err
	}

	// Le panier est consommé APRÈS la commande
	if err := cache.DeleteCart(order.CartID); err == nil {
		log.Printf("🧹 Panier %s supprimé", order.CartID)
	}

	go search.IndexOrder(*order)

	go func(o models.Order, to string) {
		html := utils.GenerateOrderConfirmationHTML(o)

		pdf, err := utils.RenderReceiptPDF(utils.GetFrontendReceiptBaseURL(), o.ID.String())
		if err != nil {
			log.Println("❌ Erreur génération PDF reçu:", err)
			pdf = nil
		}

		if err := utils.SendEmail(to, "Confirmation de votre commande Isoko", html, pdf); err != nil {
			log.Println("❌ Erreur envoi e-mail confirmation:", err)
		} else {
			log.Println("📧 E-mail de confirmation envoyé à", to)
		}
	}(*order, email)

	return nil
}
