package payment

import (
	"testing"

	"isoko_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForMethod(t *testing.T) {
	for _, method := range []string{models.MethodCash, models.MethodMobileMoney,
		models.MethodCard, models.MethodVoucher} {
		s, err := ForMethod(method)
		require.NoError(t, err)
		assert.Equal(t, method, s.Name())
	}

	// Insensible à la casse
	s, err := ForMethod("card")
	require.NoError(t, err)
	assert.Equal(t, models.MethodCard, s.Name())
}

func TestForMethod_NonSupporte(t *testing.T) {
	_, err := ForMethod(models.MethodBankTransfer)
	assert.Error(t, err)

	_, err = ForMethod("CRYPTO")
	assert.Error(t, err)
}

// Seul le règlement wallet est interne et réversible : si la commande ne
// peut pas être persistée après le débit, l'orchestrateur recrédite. Les
// providers externes ne doivent jamais exposer Refund
func TestRefundableStrategies(t *testing.T) {
	var wallet Strategy = &WalletStrategy{}
	_, ok := wallet.(Refunder)
	assert.True(t, ok, "le règlement wallet doit être réversible")

	for _, s := range []Strategy{&MobileMoneyStrategy{}, &CardStrategy{}, &VoucherStrategy{}} {
		_, ok := s.(Refunder)
		assert.False(t, ok, "le règlement %s ne doit pas être réversible ici", s.Name())
	}
}

func TestValidateBilling(t *testing.T) {
	req := &models.CheckoutRequest{
		BillingName:  "Jean Uwimana",
		BillingPhone: "0781234567",
	}
	assert.Nil(t, validateBilling(req))

	req.BillingName = "   "
	fieldErr := validateBilling(req)
	require.NotNil(t, fieldErr)
	assert.Equal(t, "billing_name", fieldErr.Field)

	req.BillingName = "Jean Uwimana"
	req.BillingPhone = ""
	fieldErr = validateBilling(req)
	require.NotNil(t, fieldErr)
	assert.Equal(t, "billing_phone", fieldErr.Field)
}

func TestIsValidRwandaPhone(t *testing.T) {
	valid := []string{
		"0781234567",    // MTN local
		"0721234567",    // Airtel local
		"+250781234567", // indicatif complet
		"250781234567",  // indicatif sans +
		"781234567",     // sans préfixe
		"078 123 45 67", // avec espaces
	}
	for _, p := range valid {
		assert.True(t, isValidRwandaPhone(p), "numéro %q doit être accepté", p)
	}

	invalid := []string{
		"",
		"0711234567",     // préfixe 71 inexistant
		"078123456",      // trop court
		"07812345678",    // trop long
		"+32478123456",   // numéro belge
		"notaphonenumber",
	}
	for _, p := range invalid {
		assert.False(t, isValidRwandaPhone(p), "numéro %q doit être rejeté", p)
	}
}

func TestMobileMoneyValidate(t *testing.T) {
	s := &MobileMoneyStrategy{}

	req := &models.CheckoutRequest{
		BillingName:  "Jean Uwimana",
		BillingPhone: "0781234567",
	}
	assert.Nil(t, s.Validate(req))

	req.BillingPhone = "+32478123456"
	fieldErr := s.Validate(req)
	require.NotNil(t, fieldErr)
	assert.Equal(t, "billing_phone", fieldErr.Field)
}

func TestVoucherValidate_CodeRequis(t *testing.T) {
	s := &VoucherStrategy{}

	req := &models.CheckoutRequest{
		BillingName:  "Jean Uwimana",
		BillingPhone: "0781234567",
	}
	fieldErr := s.Validate(req)
	require.NotNil(t, fieldErr)
	assert.Equal(t, "voucher_code", fieldErr.Field)

	req.VoucherCode = "KZ-2026-001"
	assert.Nil(t, s.Validate(req))
}
