package payment

import (
	"log"
	"os"

	"isoko_back_end/internal/models"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
)

// CardStrategy : paiement carte via la page de checkout hébergée Stripe.
// Le règlement rend la main au client avec une URL de redirection ;
// le webhook Stripe confirmera le paiement
type CardStrategy struct{}

func (s *CardStrategy) Name() string { return models.MethodCard }

func (s *CardStrategy) Validate(req *models.CheckoutRequest) *FieldError {
	return validateBilling(req)
}

// stripeLineItems construit les lignes de la session hébergée. Dès que le
// total dérive du sous-total (remise ou frais d'emballage), une ligne unique
// au montant final fait foi : le client paie exactement le total calculé,
// jamais la somme des lignes du panier
func stripeLineItems(sc *SettleContext) []*stripe.CheckoutSessionLineItemParams {
	if sc.Pricing.DiscountAmount > 0 || sc.Pricing.PackagingFee > 0 {
		return []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String("rwf"),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Commande Isoko"),
				},
				// Le RWF est une devise sans décimales chez Stripe
				UnitAmount: stripe.Int64(int64(sc.Pricing.Total)),
			},
			Quantity: stripe.Int64(1),
		}}
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(sc.Cart.Items))
	for _, item := range sc.Cart.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String("rwf"),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(int64(item.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}
	return lineItems
}

func (s *CardStrategy) Settle(sc *SettleContext) (*Result, error) {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  stripeLineItems(sc),
		SuccessURL: stripe.String(baseURL + "/checkout/success?cart=" + sc.Cart.ID),
		CancelURL:  stripe.String(baseURL + "/checkout/cancel?cart=" + sc.Cart.ID),
		Metadata: map[string]string{
			"user_id": sc.UserID,
			"email":   sc.Email,
			"cart_id": sc.Cart.ID,
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, &ProviderError{Provider: "stripe", Err: err}
	}

	log.Printf("💳 Session Stripe créée: %s (%.0f RWF) pour %s", sess.ID, sc.Pricing.Total, sc.Email)

	return &Result{
		Status:        models.CheckoutAwaitingRedirect,
		PaymentStatus: models.PaymentPending,
		Provider:      "stripe",
		Ref:           sess.ID,
		RedirectURL:   sess.URL,
	}, nil
}
