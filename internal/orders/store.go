// Package orders centralise l'accès ScyllaDB aux commandes : création
// idempotente (une commande COMPLETED par panier, garanti par une LWT sur
// orders_by_cart) et transitions de statut en compare-and-swap
package orders

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"isoko_back_end/internal/database"
	"isoko_back_end/internal/models"

	"github.com/gocql/gocql"
)

// NewOrderNumber génère un numéro lisible type ISK-20260828-3F2A
func NewOrderNumber(id gocql.UUID) string {
	short := id.String()[:4]
	return fmt.Sprintf("ISK-%s-%s", time.Now().Format("20060102"), short)
}

// ClaimCart réserve le panier pour une commande : la LWT sur orders_by_cart
// est la contrainte d'unicité "une commande par panier". Retourne l'order_id
// déjà enregistré si le panier est déjà réglé
func ClaimCart(cartID string, orderID gocql.UUID) (bool, string, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, "", err
	}

	prev := make(map[string]interface{})
	applied, err := session.Query(
		"INSERT INTO orders_by_cart (cart_id, order_id) VALUES (?, ?) IF NOT EXISTS",
		cartID, orderID).MapScanCAS(prev)
	if err != nil {
		return false, "", err
	}
	if applied {
		return true, "", nil
	}

	existing := ""
	if id, ok := prev["order_id"].(gocql.UUID); ok {
		existing = id.String()
	}
	return false, existing, nil
}

// UnclaimCart libère la réservation quand le règlement échoue après le claim
func UnclaimCart(cartID string) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return
	}
	if err := session.Query("DELETE FROM orders_by_cart WHERE cart_id = ?", cartID).Exec(); err != nil {
		log.Printf("⚠️ Impossible de libérer le panier %s: %v", cartID, err)
	}
}

// OrderIDForCart : commande existante pour un panier déjà réglé
func OrderIDForCart(cartID string) (string, bool) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return "", false
	}

	query := database.GetPreparedGetOrderByCart()
	if query == nil {
		query = session.Query("SELECT order_id FROM orders_by_cart WHERE cart_id = ?")
	}

	var orderID gocql.UUID
	if err := query.Bind(cartID).Scan(&orderID); err != nil {
		return "", false
	}
	return orderID.String(), true
}

// Insert persiste la commande. Le panier doit avoir été réservé avant
func Insert(order *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	if err := session.Query(`INSERT INTO orders (
		order_id, order_number, cart_id, user_id, user_email, restaurant_id, items_json,
		subtotal, discount_amount, packaging_fee, delivery_fee, total_amount,
		billing_name, billing_phone, billing_address,
		payment_method, payment_provider, payment_ref, payment_status,
		status, promo_code, voucher_code, delivery_otp_hash, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.OrderNumber, order.CartID, order.UserID, order.UserEmail, order.RestaurantID, string(itemsJSON),
		order.Subtotal, order.DiscountAmount, order.PackagingFee, order.DeliveryFee, order.TotalAmount,
		order.BillingName, order.BillingPhone, order.BillingAddress,
		order.PaymentMethod, order.PaymentProvider, order.PaymentRef, order.PaymentStatus,
		order.Status, order.PromoCode, order.VoucherCode, "", order.CreatedAt, order.UpdatedAt,
	).Exec(); err != nil {
		return err
	}

	if order.PaymentRef != "" {
		if err := session.Query(
			"INSERT INTO orders_by_payment_ref (payment_ref, order_id) VALUES (?, ?)",
			order.PaymentRef, order.ID).Exec(); err != nil {
			log.Printf("⚠️ Index payment_ref non écrit pour %s: %v", order.OrderNumber, err)
		}
	}

	return nil
}

// Load charge une commande complète
func Load(orderID string) (*models.Order, error) {
	id, err := gocql.ParseUUID(orderID)
	if err != nil {
		return nil, fmt.Errorf("ID commande invalide")
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var o models.Order
	var itemsJSON, otpHash string
	var deliveredAt, cancelledAt time.Time

	if err := session.Query(`SELECT order_id, order_number, cart_id, user_id, user_email, restaurant_id,
		items_json, subtotal, discount_amount, packaging_fee, delivery_fee, total_amount,
		billing_name, billing_phone, billing_address, payment_method, payment_provider, payment_ref,
		payment_status, status, promo_code, voucher_code, delivery_otp_hash,
		created_at, updated_at, delivered_at, cancelled_at
		FROM orders WHERE order_id = ?`, id).
		Scan(&o.ID, &o.OrderNumber, &o.CartID, &o.UserID, &o.UserEmail, &o.RestaurantID,
			&itemsJSON, &o.Subtotal, &o.DiscountAmount, &o.PackagingFee, &o.DeliveryFee, &o.TotalAmount,
			&o.BillingName, &o.BillingPhone, &o.BillingAddress, &o.PaymentMethod, &o.PaymentProvider, &o.PaymentRef,
			&o.PaymentStatus, &o.Status, &o.PromoCode, &o.VoucherCode, &otpHash,
			&o.CreatedAt, &o.UpdatedAt, &deliveredAt, &cancelledAt); err != nil {
		return nil, err
	}

	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
			log.Printf("⚠️ items_json illisible pour %s: %v", o.OrderNumber, err)
		}
	}
	if !deliveredAt.IsZero() {
		o.DeliveredAt = &deliveredAt
	}
	if !cancelledAt.IsZero() {
		o.CancelledAt = &cancelledAt
	}

	return &o, nil
}

// DeliveryOtpHash : empreinte du code de livraison (vide tant que la
// commande n'est pas IN_TRANSIT)
func DeliveryOtpHash(orderID gocql.UUID) (string, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return "", err
	}

	var hash string
	if err := session.Query("SELECT delivery_otp_hash FROM orders WHERE order_id = ?", orderID).
		Scan(&hash); err != nil {
		return "", err
	}
	return hash, nil
}

func SetDeliveryOtpHash(orderID gocql.UUID, hash string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query(
		"UPDATE orders SET delivery_otp_hash = ?, updated_at = ? WHERE order_id = ?",
		hash, time.Now(), orderID).Exec()
}

// AdvanceStatus : transition CAS sur le statut stocké. Deux opérateurs qui
// avancent la même commande en même temps : un seul gagne
func AdvanceStatus(orderID gocql.UUID, from, to string) (bool, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, err
	}

	now := time.Now()
	query := "UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ? IF status = ?"
	args := []interface{}{to, now, orderID, from}

	switch to {
	case models.OrderDelivered:
		query = "UPDATE orders SET status = ?, updated_at = ?, delivered_at = ? WHERE order_id = ? IF status = ?"
		args = []interface{}{to, now, now, orderID, from}
	case models.OrderCancelled:
		query = "UPDATE orders SET status = ?, updated_at = ?, cancelled_at = ? WHERE order_id = ? IF status = ?"
		args = []interface{}{to, now, now, orderID, from}
	}

	var prevStatus string
	applied, err := session.Query(query, args...).ScanCAS(&prevStatus)
	if err != nil {
		return false, err
	}
	return applied, nil
}

// SetPaymentStatusByRef : règlement asynchrone confirmé par le webhook provider
func SetPaymentStatusByRef(paymentRef, status string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	var orderID gocql.UUID
	if err := session.Query("SELECT order_id FROM orders_by_payment_ref WHERE payment_ref = ?",
		paymentRef).Scan(&orderID); err != nil {
		return fmt.Errorf("aucune commande pour la référence %s", paymentRef)
	}

	return session.Query("UPDATE orders SET payment_status = ?, updated_at = ? WHERE order_id = ?",
		status, time.Now(), orderID).Exec()
}
