package payment

import (
	"testing"

	"isoko_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardContext(pricing models.OrderPricing) *SettleContext {
	return &SettleContext{
		UserID: "user-1",
		Email:  "client@isoko.rw",
		Cart: &models.Cart{
			ID: "cart-1",
			Items: []models.CartItem{
				{ProductID: "p1", Name: "Ibirayi 5kg", Quantity: 2, UnitPrice: 3000},
				{ProductID: "p2", Name: "Amata 1L", Quantity: 1, UnitPrice: 4000},
			},
			TotalAmount: 10000,
		},
		Pricing: pricing,
	}
}

func TestStripeLineItems_SansRemiseNiFrais(t *testing.T) {
	sc := cardContext(models.ComputePricing(10000, nil, 0))

	items := stripeLineItems(sc)
	require.Len(t, items, 2)

	// La somme des lignes vaut exactement le total facturé
	var sum int64
	for _, it := range items {
		sum += *it.PriceData.UnitAmount * *it.Quantity
	}
	assert.Equal(t, int64(sc.Pricing.Total), sum)
}

// Avec frais d'emballage et sans promo, Stripe doit facturer le total dérivé
// (sous-total + frais), pas la somme des lignes du panier
func TestStripeLineItems_FraisEmballageSansPromo(t *testing.T) {
	sc := cardContext(models.ComputePricing(10000, nil, 500))

	items := stripeLineItems(sc)
	require.Len(t, items, 1)
	assert.Equal(t, int64(10500), *items[0].PriceData.UnitAmount)
	assert.Equal(t, int64(1), *items[0].Quantity)
}

func TestStripeLineItems_AvecRemise(t *testing.T) {
	promo := &models.PromoApplication{
		Code:           "SAVE10",
		OriginalAmount: 10000,
		DiscountAmount: 1000,
		FinalAmount:    9000,
	}
	sc := cardContext(models.ComputePricing(10000, promo, 500))

	items := stripeLineItems(sc)
	require.Len(t, items, 1)
	assert.Equal(t, int64(9500), *items[0].PriceData.UnitAmount)
}
