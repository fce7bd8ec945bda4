package payment

import (
	"fmt"

	"isoko_back_end/internal/ledger"
	"isoko_back_end/internal/models"
)

// WalletStrategy : paiement "CASH" (prépayé) débité du wallet.
// Règlement synchrone : soit le solde couvre le total et la commande
// est COMPLETED, soit on rejette avec le manque exact
type WalletStrategy struct{}

func (s *WalletStrategy) Name() string { return models.MethodCash }

func (s *WalletStrategy) Validate(req *models.CheckoutRequest) *FieldError {
	return validateBilling(req)
}

func (s *WalletStrategy) Settle(sc *SettleContext) (*Result, error) {
	wallet, err := ledger.GetWalletByUser(sc.UserID)
	if err != nil {
		return nil, fmt.Errorf("aucun wallet actif pour ce compte")
	}

	// Le débit est une CAS : pas de double débit possible, et le solde
	// ne descend jamais sous zéro
	if err := ledger.DebitWallet(wallet.ID, sc.Pricing.Total); err != nil {
		return nil, err
	}

	return &Result{
		Status:        models.CheckoutCompleted,
		PaymentStatus: models.PaymentPaid,
		Provider:      "wallet",
	}, nil
}

// Refund recrédite le wallet quand la commande n'a pas pu être créée après
// le débit : le solde et la commande avancent ou reculent ensemble, jamais
// l'un sans l'autre
func (s *WalletStrategy) Refund(sc *SettleContext) error {
	wallet, err := ledger.GetWalletByUser(sc.UserID)
	if err != nil {
		return err
	}
	return ledger.CreditWallet(wallet.ID, sc.Pricing.Total)
}
