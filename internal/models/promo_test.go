package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activePromo() *PromoCode {
	return &PromoCode{
		Code:           "SAVE10",
		DiscountType:   DiscountPercentage,
		DiscountValue:  10,
		MinOrderAmount: 5000,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
		IsActive:       true,
	}
}

func TestValidatePromo_Pourcentage(t *testing.T) {
	// Panier de 10 000 RWF avec SAVE10 : 1 000 RWF de réduction
	v := ValidatePromo(activePromo(), 10000)

	require.True(t, v.IsValid)
	require.NotNil(t, v.Application)
	assert.Equal(t, "SAVE10", v.Application.Code)
	assert.Equal(t, 10000.0, v.Application.OriginalAmount)
	assert.Equal(t, 1000.0, v.Application.DiscountAmount)
	assert.Equal(t, 9000.0, v.Application.FinalAmount)
}

func TestValidatePromo_Inactif(t *testing.T) {
	promo := activePromo()
	promo.IsActive = false

	v := ValidatePromo(promo, 10000)
	require.False(t, v.IsValid)
	assert.Equal(t, "Ce code promo n'est plus actif", v.ErrorMessage)
	assert.Nil(t, v.Application)
}

func TestValidatePromo_Expire(t *testing.T) {
	promo := activePromo()
	promo.ExpiresAt = time.Now().Add(-time.Hour)

	v := ValidatePromo(promo, 10000)
	require.False(t, v.IsValid)
	assert.Equal(t, "Ce code promo a expiré", v.ErrorMessage)
}

func TestValidatePromo_MontantMinimum(t *testing.T) {
	v := ValidatePromo(activePromo(), 4999)
	require.False(t, v.IsValid)
	assert.Equal(t, "Montant minimum requis: 5000 RWF", v.ErrorMessage)

	// Exactement le minimum : accepté
	v = ValidatePromo(activePromo(), 5000)
	assert.True(t, v.IsValid)
}

// L'inactivité prime sur l'expiration : un code inactif ET expiré est rejeté
// pour inactivité
func TestValidatePromo_OrdreDesVerifications(t *testing.T) {
	promo := activePromo()
	promo.IsActive = false
	promo.ExpiresAt = time.Now().Add(-time.Hour)

	v := ValidatePromo(promo, 100)
	assert.Equal(t, "Ce code promo n'est plus actif", v.ErrorMessage)
}

func TestValidatePromo_SansExpiration(t *testing.T) {
	promo := activePromo()
	promo.ExpiresAt = time.Time{} // zéro = pas d'expiration

	v := ValidatePromo(promo, 10000)
	assert.True(t, v.IsValid)
}

func TestApplyDiscount_ArrondiAuFranc(t *testing.T) {
	promo := activePromo()
	promo.DiscountValue = 15

	// 15% de 3333 = 499.95 → arrondi à 500
	app := ApplyDiscount(promo, 3333)
	assert.Equal(t, 500.0, app.DiscountAmount)
	assert.Equal(t, 2833.0, app.FinalAmount)
}

func TestApplyDiscount_FixePlafonne(t *testing.T) {
	promo := &PromoCode{
		Code:          "MOINS2000",
		DiscountType:  DiscountFixed,
		DiscountValue: 2000,
		IsActive:      true,
	}

	// La réduction fixe ne dépasse jamais le montant du panier
	app := ApplyDiscount(promo, 1500)
	assert.Equal(t, 1500.0, app.DiscountAmount)
	assert.Equal(t, 0.0, app.FinalAmount)

	app = ApplyDiscount(promo, 8000)
	assert.Equal(t, 2000.0, app.DiscountAmount)
	assert.Equal(t, 6000.0, app.FinalAmount)
}
