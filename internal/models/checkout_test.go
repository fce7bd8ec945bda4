package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePricing_SansPromo(t *testing.T) {
	p := ComputePricing(10000, nil, 500)

	assert.Equal(t, 10000.0, p.Subtotal)
	assert.Equal(t, 0.0, p.DiscountAmount)
	assert.Equal(t, 500.0, p.PackagingFee)
	assert.Equal(t, 0.0, p.DeliveryFee)
	assert.Equal(t, 10500.0, p.Total)
	assert.Empty(t, p.PromoCode)
}

// La promo s'applique sur le sous-total, AVANT les frais d'emballage :
// 10 000 − 10% + 500 = 9 500, pas (10 500 − 10%)
func TestComputePricing_PromoAvantFrais(t *testing.T) {
	promo := &PromoApplication{
		Code:           "SAVE10",
		OriginalAmount: 10000,
		DiscountAmount: 1000,
		FinalAmount:    9000,
	}

	p := ComputePricing(10000, promo, 500)

	assert.Equal(t, 1000.0, p.DiscountAmount)
	assert.Equal(t, 9500.0, p.Total)
	assert.Equal(t, "SAVE10", p.PromoCode)
}

func TestComputePricing_SansEmballage(t *testing.T) {
	promo := &PromoApplication{
		Code:           "SAVE10",
		OriginalAmount: 10000,
		DiscountAmount: 1000,
		FinalAmount:    9000,
	}

	p := ComputePricing(10000, promo, 0)
	assert.Equal(t, 9000.0, p.Total)
}
