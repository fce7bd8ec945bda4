package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de voucher
const (
	VoucherActive    = "ACTIVE"
	VoucherUsed      = "USED"
	VoucherExpired   = "EXPIRED"
	VoucherSuspended = "SUSPENDED"
	VoucherSettled   = "SETTLED"
)

type Wallet struct {
	ID       gocql.UUID `json:"id"`
	UserID   string     `json:"user_id"`
	Balance  float64    `json:"balance"` // invariant : jamais négatif après débit
	Currency string     `json:"currency"`
	IsActive bool       `json:"is_active"`
}

type Voucher struct {
	ID                   gocql.UUID `json:"id"`
	Code                 string     `json:"code"`
	UserID               string     `json:"user_id"`
	CreditLimit          float64    `json:"credit_limit"`
	UsedCredit           float64    `json:"used_credit"`
	Status               string     `json:"status"`
	IssuedAt             time.Time  `json:"issued_at"`
	ExpiresAt            time.Time  `json:"expires_at"` // zéro = pas d'expiration
	MinTransactionAmount float64    `json:"min_transaction_amount"`
	MaxTransactionAmount float64    `json:"max_transaction_amount"` // 0 = pas de plafond
}

// RemainingCredit = creditLimit − usedCredit, toujours ≥ 0
func (v *Voucher) RemainingCredit() float64 {
	return v.CreditLimit - v.UsedCredit
}

// IsUsable : statut ACTIVE, crédit restant > 0, pas expiré.
// Les appelants de listUsableVouchers ne doivent jamais refiltrer
func (v *Voucher) IsUsable(now time.Time) bool {
	if v.Status != VoucherActive {
		return false
	}
	if v.RemainingCredit() <= 0 {
		return false
	}
	if !v.ExpiresAt.IsZero() && !now.Before(v.ExpiresAt) {
		return false
	}
	return true
}

// AcceptsAmount vérifie les bornes min/max de transaction du voucher
func (v *Voucher) AcceptsAmount(amount float64) bool {
	if amount < v.MinTransactionAmount {
		return false
	}
	if v.MaxTransactionAmount > 0 && amount > v.MaxTransactionAmount {
		return false
	}
	return true
}
