package ledger

import (
	"testing"
	"time"

	"isoko_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeVoucher(limit, used float64) *models.Voucher {
	return &models.Voucher{
		Code:        "KZ-2026-001",
		CreditLimit: limit,
		UsedCredit:  used,
		Status:      models.VoucherActive,
		ExpiresAt:   time.Now().Add(30 * 24 * time.Hour),
	}
}

// Réservation puis libération : le crédit restant revient exactement à sa
// valeur d'origine, et remaining = credit_limit − used_credit tient à chaque
// étape
func TestReservationPuisLiberation(t *testing.T) {
	v := activeVoucher(2000, 0)

	newUsed, err := reservedCredit(v, 2000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2000.0, newUsed)

	v.UsedCredit = newUsed
	assert.Equal(t, 0.0, v.RemainingCredit())

	// Session jamais vérifiée : le crédit est rendu
	v.UsedCredit = releasedCredit(v.UsedCredit, 2000)
	assert.Equal(t, 2000.0, v.RemainingCredit())
}

func TestReservedCredit_Insuffisant(t *testing.T) {
	v := activeVoucher(5000, 4000)

	_, err := reservedCredit(v, 1500, time.Now())
	require.Error(t, err)

	var creditErr ErrInsufficientCredit
	require.ErrorAs(t, err, &creditErr)
	assert.Equal(t, 500.0, creditErr.Shortfall())

	// Le voucher n'a pas bougé
	assert.Equal(t, 4000.0, v.UsedCredit)
}

func TestReservedCredit_VoucherNonUtilisable(t *testing.T) {
	v := activeVoucher(5000, 0)
	v.Status = models.VoucherSuspended

	_, err := reservedCredit(v, 100, time.Now())
	assert.Error(t, err)

	v = activeVoucher(5000, 0)
	v.ExpiresAt = time.Now().Add(-time.Minute)
	_, err = reservedCredit(v, 100, time.Now())
	assert.Error(t, err)
}

// La libération ne sur-crédite jamais : used_credit est borné à zéro, donc
// remaining ne dépasse jamais credit_limit même en rendant trop
func TestReleasedCredit_Borne(t *testing.T) {
	assert.Equal(t, 0.0, releasedCredit(500, 1000))
	assert.Equal(t, 0.0, releasedCredit(1000, 1000))
	assert.Equal(t, 300.0, releasedCredit(1000, 700))
	assert.Equal(t, 0.0, releasedCredit(0, 500))
}

func TestDebitedBalance(t *testing.T) {
	w := &models.Wallet{Balance: 3000, Currency: "RWF", IsActive: true}

	newBalance, err := debitedBalance(w, 2500)
	require.NoError(t, err)
	assert.Equal(t, 500.0, newBalance)

	// Solde insuffisant : rejet avec le manque exact, solde inchangé
	_, err = debitedBalance(w, 5000)
	var balErr ErrInsufficientBalance
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, 2000.0, balErr.Shortfall())
	assert.Equal(t, 3000.0, w.Balance)

	// Wallet inactif : jamais débité
	w.IsActive = false
	_, err = debitedBalance(w, 100)
	assert.Error(t, err)
}
