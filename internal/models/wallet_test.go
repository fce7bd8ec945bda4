package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func usableVoucher() Voucher {
	return Voucher{
		Code:        "KZ-2026-001",
		CreditLimit: 50000,
		UsedCredit:  10000,
		Status:      VoucherActive,
		ExpiresAt:   time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestRemainingCredit(t *testing.T) {
	v := usableVoucher()
	assert.Equal(t, 40000.0, v.RemainingCredit())

	v.UsedCredit = v.CreditLimit
	assert.Equal(t, 0.0, v.RemainingCredit())
}

func TestIsUsable(t *testing.T) {
	now := time.Now()

	v := usableVoucher()
	assert.True(t, v.IsUsable(now))

	// Chaque cause de rejet prise isolément
	v = usableVoucher()
	v.Status = VoucherSuspended
	assert.False(t, v.IsUsable(now))

	v = usableVoucher()
	v.Status = VoucherSettled
	assert.False(t, v.IsUsable(now))

	v = usableVoucher()
	v.UsedCredit = v.CreditLimit
	assert.False(t, v.IsUsable(now), "crédit épuisé")

	v = usableVoucher()
	v.ExpiresAt = now.Add(-time.Minute)
	assert.False(t, v.IsUsable(now), "voucher expiré")

	// Pas de date d'expiration = utilisable indéfiniment
	v = usableVoucher()
	v.ExpiresAt = time.Time{}
	assert.True(t, v.IsUsable(now))
}

func TestAcceptsAmount(t *testing.T) {
	v := usableVoucher()
	v.MinTransactionAmount = 1000
	v.MaxTransactionAmount = 20000

	assert.False(t, v.AcceptsAmount(999))
	assert.True(t, v.AcceptsAmount(1000))
	assert.True(t, v.AcceptsAmount(20000))
	assert.False(t, v.AcceptsAmount(20001))

	// Max à 0 = pas de plafond
	v.MaxTransactionAmount = 0
	assert.True(t, v.AcceptsAmount(1000000))
}
