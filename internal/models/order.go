package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de commande côté logistique (progression strictement avant, sauf CANCELLED)
const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderPreparing = "PREPARING"
	OrderReady     = "READY"
	OrderInTransit = "IN_TRANSIT"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

// Statuts de paiement
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
)

type Order struct {
	ID              gocql.UUID `json:"id"`
	OrderNumber     string     `json:"order_number"`
	CartID          string     `json:"cart_id"`
	UserID          string     `json:"user_id"`
	UserEmail       string     `json:"user_email,omitempty"`
	RestaurantID    string     `json:"restaurant_id"`
	Items           []CartItem `json:"items"`
	Subtotal        float64    `json:"subtotal"`
	DiscountAmount  float64    `json:"discount_amount"`
	PackagingFee    float64    `json:"packaging_fee"`
	DeliveryFee     float64    `json:"delivery_fee"`
	TotalAmount     float64    `json:"total_amount"`
	BillingName     string     `json:"billing_name"`
	BillingPhone    string     `json:"billing_phone"`
	BillingAddress  string     `json:"billing_address"`
	PaymentMethod   string     `json:"payment_method"`
	PaymentProvider string     `json:"payment_provider,omitempty"`
	PaymentRef      string     `json:"payment_ref,omitempty"`
	PaymentStatus   string     `json:"payment_status"`
	Status          string     `json:"status"`
	PromoCode       string     `json:"promo_code,omitempty"`
	VoucherCode     string     `json:"voucher_code,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
}

// forwardTransitions : l'unique transition avant autorisée depuis chaque statut.
// PENDING est volontairement absent du chemin self-service : la confirmation
// est une action explicite de l'opérateur, pas un clic "suivant"
var forwardTransitions = map[string]string{
	OrderConfirmed: OrderPreparing,
	OrderPreparing: OrderReady,
	OrderReady:     OrderInTransit,
	OrderInTransit: OrderDelivered,
}

// NextStatus retourne la seule transition avant autorisée, ou "" si le statut
// est terminal (DELIVERED, CANCELLED) ou PENDING
func NextStatus(current string) string {
	return forwardTransitions[current]
}

// IsTerminal : une commande DELIVERED ou CANCELLED est immuable
func IsTerminalStatus(status string) bool {
	return status == OrderDelivered || status == OrderCancelled
}

// CanAdvanceTo vérifie qu'une cible est exactement la prochaine étape.
// PENDING → CONFIRMED est la confirmation explicite de l'opérateur
func CanAdvanceTo(current, target string) bool {
	if current == OrderPending {
		return target == OrderConfirmed
	}
	return NextStatus(current) == target && target != ""
}

// CanCancel : CANCELLED est atteignable depuis tout statut non terminal
func CanCancel(current string) bool {
	return !IsTerminalStatus(current)
}

func IsValidStatus(status string) bool {
	switch status {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady,
		OrderInTransit, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}
