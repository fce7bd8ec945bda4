package payment

import (
	"fmt"
	"strings"
	"time"

	"isoko_back_end/internal/ledger"
	"isoko_back_end/internal/models"
)

// VoucherStrategy : paiement à crédit voucher. Le règlement réserve le
// crédit puis rend AWAITING_OTP — l'orchestrateur crée la session de
// vérification et la commande n'existe qu'après l'OTP
type VoucherStrategy struct{}

func (s *VoucherStrategy) Name() string { return models.MethodVoucher }

func (s *VoucherStrategy) Validate(req *models.CheckoutRequest) *FieldError {
	if fe := validateBilling(req); fe != nil {
		return fe
	}
	if strings.TrimSpace(req.VoucherCode) == "" {
		return &FieldError{Field: "voucher_code", Message: "Le code voucher est requis"}
	}
	return nil
}

func (s *VoucherStrategy) Settle(sc *SettleContext) (*Result, error) {
	voucher, err := ledger.GetVoucherByCode(sc.UserID, sc.Request.VoucherCode)
	if err != nil {
		return nil, fmt.Errorf("voucher introuvable")
	}

	if !voucher.IsUsable(time.Now()) {
		return nil, fmt.Errorf("voucher non utilisable (statut %s)", voucher.Status)
	}
	if !voucher.AcceptsAmount(sc.Pricing.Total) {
		return nil, fmt.Errorf("montant hors des limites du voucher (min %.0f RWF, max %.0f RWF)",
			voucher.MinTransactionAmount, voucher.MaxTransactionAmount)
	}

	// La réservation est atomique : échoue avec ErrInsufficientCredit
	// si le crédit restant ne couvre pas le total
	if err := ledger.ReserveVoucherCredit(voucher.ID, sc.Pricing.Total); err != nil {
		return nil, err
	}

	return &Result{
		Status:        models.CheckoutAwaitingOTP,
		PaymentStatus: models.PaymentPending,
		Provider:      "voucher",
		VoucherID:     voucher.ID.String(),
		VoucherCode:   voucher.Code,
	}, nil
}
