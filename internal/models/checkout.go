package models

import "time"

// Moyens de paiement (données de référence, table payment_methods)
const (
	MethodCash         = "CASH" // en interne : prépayé, débité du wallet
	MethodMobileMoney  = "MOBILE_MONEY"
	MethodCard         = "CARD"
	MethodVoucher      = "VOUCHER"
	MethodBankTransfer = "BANK_TRANSFER"
)

type PaymentMethod struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Statuts d'une tentative de checkout
const (
	CheckoutRejected         = "REJECTED"
	CheckoutCompleted        = "COMPLETED"
	CheckoutAwaitingRedirect = "AWAITING_PROVIDER_REDIRECT"
	CheckoutAwaitingOTP      = "AWAITING_OTP"
	CheckoutExpired          = "EXPIRED"
)

type CheckoutRequest struct {
	CartID          string `json:"cart_id" binding:"required"`
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
	BillingName     string `json:"billing_name"`
	BillingPhone    string `json:"billing_phone"`
	BillingAddress  string `json:"billing_address"`
	PromoCode       string `json:"promo_code"`
	VoucherCode     string `json:"voucher_code"`
	WithPackaging   bool   `json:"with_packaging"`
}

// CheckoutSession : état transitoire d'un checkout voucher en attente d'OTP.
// Stocké dans Redis avec le TTL configuré ; le serveur fait foi, le client
// ne fait qu'afficher ce qu'on lui renvoie
type CheckoutSession struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Request   CheckoutRequest `json:"request"`
	Cart      Cart            `json:"cart"`
	Pricing   OrderPricing    `json:"pricing"`
	VoucherID string          `json:"voucher_id"`
	OtpHash   string          `json:"otp_hash"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderPricing : dérivation du total figée au moment du checkout.
// La promo s'applique AVANT les frais, jamais après
type OrderPricing struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	PackagingFee   float64 `json:"packaging_fee"`
	DeliveryFee    float64 `json:"delivery_fee"`
	Total          float64 `json:"total"`
	PromoCode      string  `json:"promo_code,omitempty"`
}

// ComputePricing dérive le total final : sous-total remisé + frais d'emballage
// optionnels − frais de livraison (toujours 0 pour le moment)
func ComputePricing(subtotal float64, promo *PromoApplication, packagingFee float64) OrderPricing {
	p := OrderPricing{
		Subtotal:    subtotal,
		DeliveryFee: 0,
	}
	discounted := subtotal
	if promo != nil {
		p.DiscountAmount = promo.DiscountAmount
		p.PromoCode = promo.Code
		discounted = promo.FinalAmount
	}
	p.PackagingFee = packagingFee
	p.Total = discounted + packagingFee - p.DeliveryFee
	return p
}
