// Package payment : un PaymentStrategy par moyen de paiement, à la place
// d'un branchement sur des chaînes de caractères dans le checkout
package payment

import (
	"fmt"
	"regexp"
	"strings"

	"isoko_back_end/internal/models"
)

// rwandaPhone : numéros mobiles rwandais (MTN / Airtel), avec ou sans indicatif
var rwandaPhone = regexp.MustCompile(`^(\+?250|0)?7[2389]\d{7}$`)

// FieldError : rejet de validation rattaché à un champ précis, pour que
// le client puisse réafficher la cause exacte
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ProviderError : échec remonté par un provider externe. Le message est
// montré tel quel à l'appelant ; la commande reste non résolue, à
// réconcilier par l'opérateur
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("erreur provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Result : issue d'un règlement
type Result struct {
	Status        string // COMPLETED | AWAITING_PROVIDER_REDIRECT | AWAITING_OTP
	PaymentStatus string
	Provider      string
	Ref           string
	RedirectURL   string
	VoucherID     string // renseigné par la stratégie voucher
	VoucherCode   string
}

// SettleContext : tout ce qu'une stratégie peut avoir besoin de connaître
type SettleContext struct {
	UserID  string
	Email   string
	Cart    *models.Cart
	Pricing models.OrderPricing
	Request *models.CheckoutRequest
}

// Strategy expose validate() et settle() ; l'orchestrateur dispatch
// polymorphiquement selon le moyen de paiement résolu
type Strategy interface {
	Name() string
	Validate(req *models.CheckoutRequest) *FieldError
	Settle(sc *SettleContext) (*Result, error)
}

// Refunder : stratégies dont le règlement touche notre propre ledger et peut
// donc être défait si la commande ne peut pas être persistée. Les providers
// externes (Stripe, Paypack) ne l'implémentent pas : un règlement engagé chez
// eux se réconcilie, il ne se défait pas ici
type Refunder interface {
	Refund(sc *SettleContext) error
}

// ForMethod retourne la stratégie d'un moyen de paiement
func ForMethod(method string) (Strategy, error) {
	switch strings.ToUpper(method) {
	case models.MethodCash:
		return &WalletStrategy{}, nil
	case models.MethodMobileMoney:
		return &MobileMoneyStrategy{}, nil
	case models.MethodCard:
		return &CardStrategy{}, nil
	case models.MethodVoucher:
		return &VoucherStrategy{}, nil
	default:
		return nil, fmt.Errorf("moyen de paiement non supporté: %s", method)
	}
}

// validateBilling : nom et téléphone obligatoires quel que soit le moyen
func validateBilling(req *models.CheckoutRequest) *FieldError {
	if strings.TrimSpace(req.BillingName) == "" {
		return &FieldError{Field: "billing_name", Message: "Le nom de facturation est requis"}
	}
	if strings.TrimSpace(req.BillingPhone) == "" {
		return &FieldError{Field: "billing_phone", Message: "Le téléphone de facturation est requis"}
	}
	return nil
}

func isValidRwandaPhone(phone string) bool {
	return rwandaPhone.MatchString(strings.ReplaceAll(phone, " ", ""))
}
