package models

import (
	"fmt"
	"math"
	"time"

	"github.com/gocql/gocql"
)

// Types de réduction
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

type PromoCode struct {
	ID             gocql.UUID `json:"id"`
	Code           string     `json:"code"` // unique, insensible à la casse (stocké en majuscules)
	DiscountType   string     `json:"discount_type"`
	DiscountValue  float64    `json:"discount_value"`
	MinOrderAmount float64    `json:"min_order_amount"`
	ExpiresAt      time.Time  `json:"expires_at"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PromoApplication est le résultat d'une application de code promo.
// Jamais persisté : recalculé à chaque appel
type PromoApplication struct {
	Code           string  `json:"promo_code"`
	OriginalAmount float64 `json:"original_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
}

// PromoValidation porte le résultat détaillé d'une validation de promo,
// avec un message précis pour chaque cause de rejet
type PromoValidation struct {
	IsValid      bool              `json:"is_valid"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Application  *PromoApplication `json:"application,omitempty"`
}

// ValidatePromo vérifie un code promo contre un montant de panier, dans l'ordre :
// actif → expiration → montant minimum. Chaque échec retourne sa raison exacte
func ValidatePromo(promo *PromoCode, cartTotal float64) PromoValidation {
	now := time.Now()

	if !promo.IsActive {
		return PromoValidation{
			IsValid:      false,
			ErrorMessage: "Ce code promo n'est plus actif",
		}
	}

	if !promo.ExpiresAt.IsZero() && !now.Before(promo.ExpiresAt) {
		return PromoValidation{
			IsValid:      false,
			ErrorMessage: "Ce code promo a expiré",
		}
	}

	if cartTotal < promo.MinOrderAmount {
		return PromoValidation{
			IsValid:      false,
			ErrorMessage: fmt.Sprintf("Montant minimum requis: %.0f RWF", promo.MinOrderAmount),
		}
	}

	app := ApplyDiscount(promo, cartTotal)
	return PromoValidation{IsValid: true, Application: &app}
}

// ApplyDiscount calcule la réduction. PERCENTAGE est arrondi au franc entier
// (plus petite unité du RWF), FIXED ne dépasse jamais le montant du panier
func ApplyDiscount(promo *PromoCode, cartTotal float64) PromoApplication {
	var discount float64
	switch promo.DiscountType {
	case DiscountPercentage:
		discount = math.Round(cartTotal * promo.DiscountValue / 100)
	case DiscountFixed:
		discount = promo.DiscountValue
		if discount > cartTotal {
			discount = cartTotal
		}
	}

	return PromoApplication{
		Code:           promo.Code,
		OriginalAmount: cartTotal,
		DiscountAmount: discount,
		FinalAmount:    cartTotal - discount,
	}
}
