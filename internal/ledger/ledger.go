// Package ledger porte les mutations de solde wallet et de crédit voucher.
// Toutes les écritures passent par des lightweight transactions ScyllaDB :
// un débit ou une réservation ne s'applique que si le solde lu n'a pas bougé
// entre-temps, sinon on relit et on réessaie
package ledger

import (
	"fmt"
	"log"
	"strings"
	"time"

	"isoko_back_end/internal/database"
	"isoko_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Nombre de relectures avant d'abandonner une CAS contestée
const casRetries = 3

// Statuts d'une réservation de crédit voucher
const (
	ReservationReserved = "RESERVED"
	ReservationCaptured = "CAPTURED"
	ReservationReleased = "RELEASED"
)

// ErrInsufficientBalance : solde wallet insuffisant, avec le manque exact
type ErrInsufficientBalance struct {
	Required  float64
	Available float64
}

func (e ErrInsufficientBalance) Error() string {
	return fmt.Sprintf("solde insuffisant: il manque %.0f RWF", e.Shortfall())
}

func (e ErrInsufficientBalance) Shortfall() float64 {
	return e.Required - e.Available
}

// ErrInsufficientCredit : crédit voucher insuffisant
type ErrInsufficientCredit struct {
	Required  float64
	Available float64
}

func (e ErrInsufficientCredit) Error() string {
	return fmt.Sprintf("crédit voucher insuffisant: il manque %.0f RWF", e.Shortfall())
}

func (e ErrInsufficientCredit) Shortfall() float64 {
	return e.Required - e.Available
}

type Reservation struct {
	SessionID string
	VoucherID gocql.UUID
	CartID    string
	Amount    float64
	Status    string
	CreatedAt time.Time
}

// =============================================
// ARITHMÉTIQUE DES SOLDES
// =============================================
// Les règles de dérivation sont pures et séparées des écritures CAS :
// ce sont elles qui portent les invariants (jamais de solde négatif,
// jamais de crédit rendu au-delà du consommé)

// debitedBalance : nouveau solde après débit, ou l'erreur exacte
func debitedBalance(w *models.Wallet, amount float64) (float64, error) {
	if !w.IsActive {
		return 0, fmt.Errorf("wallet inactif")
	}
	if w.Balance < amount {
		return 0, ErrInsufficientBalance{Required: amount, Available: w.Balance}
	}
	return w.Balance - amount, nil
}

// reservedCredit : nouveau used_credit après réservation, ou l'erreur exacte
func reservedCredit(v *models.Voucher, amount float64, now time.Time) (float64, error) {
	if !v.IsUsable(now) {
		return 0, fmt.Errorf("voucher non utilisable (statut %s)", v.Status)
	}
	if amount > v.RemainingCredit() {
		return 0, ErrInsufficientCredit{Required: amount, Available: v.RemainingCredit()}
	}
	return v.UsedCredit + amount, nil
}

// releasedCredit : nouveau used_credit après libération.
// used_credit ne descend jamais sous zéro, donc le crédit restant ne
// dépasse jamais credit_limit
func releasedCredit(usedCredit, amount float64) float64 {
	released := usedCredit - amount
	if released < 0 {
		return 0
	}
	return released
}

// =============================================
// WALLETS
// =============================================

// GetWalletByUser retourne le wallet d'un compte
func GetWalletByUser(userID string) (*models.Wallet, error) {
	session, err := database.GetMarketSession()
	if err != nil {
		return nil, err
	}

	query := database.GetPreparedGetWalletByUser()
	if query == nil {
		query = session.Query("SELECT wallet_id FROM wallets_by_user WHERE user_id = ?")
	}

	var walletID gocql.UUID
	if err := query.Bind(userID).Scan(&walletID); err != nil {
		return nil, err
	}

	return getWallet(session, walletID)
}

func getWallet(session *gocql.Session, walletID gocql.UUID) (*models.Wallet, error) {
	var w models.Wallet
	w.ID = walletID
	if err := session.Query(
		"SELECT user_id, balance, currency, is_active FROM wallets WHERE wallet_id = ?", walletID).
		Scan(&w.UserID, &w.Balance, &w.Currency, &w.IsActive); err != nil {
		return nil, err
	}
	return &w, nil
}

// DebitWallet débite un wallet de façon atomique. Échoue avec
// ErrInsufficientBalance si le solde ne couvre pas le montant ;
// le solde n'est jamais laissé négatif
func DebitWallet(walletID gocql.UUID, amount float64) error {
	session, err := database.GetMarketSession()
	if err != nil {
		return err
	}

	for i := 0; i < casRetries; i++ {
		wallet, err := getWallet(session, walletID)
		if err != nil {
			return err
		}

		newBalance, err := debitedBalance(wallet, amount)
		if err != nil {
			return err
		}

		var prevBalance float64
		applied, err := session.Query(
			"UPDATE wallets SET balance = ? WHERE wallet_id = ? IF balance = ?",
			newBalance, walletID, wallet.Balance).ScanCAS(&prevBalance)
		if err != nil {
			return err
		}
		if applied {
			log.Printf("💰 Wallet %s débité de %.0f RWF (reste %.0f)", walletID, amount, newBalance)
			return nil
		}
		// Le solde a bougé entre la lecture et l'écriture, on relit
	}

	return fmt.Errorf("débit wallet contesté, réessayez")
}

// CreditWallet recrédite un wallet (compensation : un débit dont la commande
// n'a pas pu être persistée doit être défait, jamais laissé à réconcilier).
// Pas de contrôle is_active : un remboursement est toujours dû
func CreditWallet(walletID gocql.UUID, amount float64) error {
	session, err := database.GetMarketSession()
	if err != nil {
		return err
	}

	for i := 0; i < casRetries; i++ {
		wallet, err := getWallet(session, walletID)
		if err != nil {
			return err
		}

		var prevBalance float64
		applied, err := session.Query(
			"UPDATE wallets SET balance = ? WHERE wallet_id = ? IF balance = ?",
			wallet.Balance+amount, walletID, wallet.Balance).ScanCAS(&prevBalance)
		if err != nil {
			return err
		}
		if applied {
			log.Printf("♻️ Wallet %s recrédité de %.0f RWF", walletID, amount)
			return nil
		}
	}

	return fmt.Errorf("recrédit wallet contesté, réessayez")
}

// =============================================
// VOUCHERS
// =============================================

// GetVoucherByCode retourne le voucher d'un utilisateur par code
func GetVoucherByCode(userID, code string) (*models.Voucher, error) {
	session, err := database.GetMarketSession()
	if err != nil {
		return nil, err
	}

	var voucherID gocql.UUID
	if err := session.Query("SELECT voucher_id FROM vouchers_by_code WHERE code = ?",
		strings.ToUpper(code)).Scan(&voucherID); err != nil {
		return nil, err
	}

	voucher, err := getVoucher(session, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher.UserID != userID {
		return nil, gocql.ErrNotFound
	}
	return voucher, nil
}

func getVoucher(session *gocql.Session, voucherID gocql.UUID) (*models.Voucher, error) {
	var v models.Voucher
	v.ID = voucherID
	if err := session.Query(`SELECT code, user_id, credit_limit, used_credit, status,
		issued_at, expires_at, min_transaction_amount, max_transaction_amount
		FROM vouchers WHERE voucher_id = ?`, voucherID).
		Scan(&v.Code, &v.UserID, &v.CreditLimit, &v.UsedCredit, &v.Status,
			&v.IssuedAt, &v.ExpiresAt, &v.MinTransactionAmount, &v.MaxTransactionAmount); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListUsableVouchers retourne uniquement les vouchers utilisables
// (ACTIVE, crédit restant > 0, non expirés) — l'appelant ne refiltre pas
func ListUsableVouchers(userID string) ([]models.Voucher, error) {
	session, err := database.GetMarketSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT voucher_id FROM vouchers_by_user WHERE user_id = ?", userID).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	now := time.Now()
	usable := make([]models.Voucher, 0, len(ids))
	for _, voucherID := range ids {
		v, err := getVoucher(session, voucherID)
		if err != nil {
			continue
		}
		if v.IsUsable(now) {
			usable = append(usable, *v)
		}
	}

	return usable, nil
}

// ReserveVoucherCredit incrémente used_credit de façon atomique.
// Échoue avec ErrInsufficientCredit si amount > crédit restant
func ReserveVoucherCredit(voucherID gocql.UUID, amount float64) error {
	session, err := database.GetMarketSession()
	if err != nil {
		return err
	}

	for i := 0; i < casRetries; i++ {
		voucher, err := getVoucher(session, voucherID)
		if err != nil {
			return err
		}

		newUsed, err := reservedCredit(voucher, amount, time.Now())
		if err != nil {
			return err
		}

		var prevUsed float64
		applied, err := session.Query(
			"UPDATE vouchers SET used_credit = ? WHERE voucher_id = ? IF used_credit = ?",
			newUsed, voucherID, voucher.UsedCredit).ScanCAS(&prevUsed)
		if err != nil {
			return err
		}
		if applied {
			log.Printf("🎫 Voucher %s: %.0f RWF réservés (reste %.0f)",
				voucher.Code, amount, voucher.CreditLimit-newUsed)
			return nil
		}
	}

	return fmt.Errorf("réservation voucher contestée, réessayez")
}

// ReleaseVoucherCredit rend du crédit réservé (compensation après expiration
// OTP ou annulation de commande). used_credit ne descend jamais sous zéro
func ReleaseVoucherCredit(voucherID gocql.UUID, amount float64) error {
	session, err := database.GetMarketSession()
	if err != nil {
		return err
	}

	for i := 0; i < casRetries; i++ {
		voucher, err := getVoucher(session, voucherID)
		if err != nil {
			return err
		}

		newUsed := releasedCredit(voucher.UsedCredit, amount)

		var prevUsed float64
		applied, err := session.Query(
			"UPDATE vouchers SET used_credit = ? WHERE voucher_id = ? IF used_credit = ?",
			newUsed, voucherID, voucher.UsedCredit).ScanCAS(&prevUsed)
		if err != nil {
			return err
		}
		if applied {
			log.Printf("♻️ Voucher %s: %.0f RWF libérés", voucher.Code, amount)
			return nil
		}
	}

	return fmt.Errorf("libération voucher contestée, réessayez")
}

// =============================================
// RÉSERVATIONS
// =============================================
// Trace persistante d'une réservation de crédit. La session Redis peut
// expirer silencieusement ; cette table permet de compenser après coup,
// et la CAS sur le statut garantit qu'on ne libère qu'une seule fois

func CreateReservation(sessionID string, voucherID gocql.UUID, cartID string, amount float64) error {
	session, err := database.GetMarketSession()
	if err != nil {
		return err
	}

	return session.Query(`INSERT INTO voucher_reservations
		(session_id, voucher_id, cart_id, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, voucherID, cartID, amount, ReservationReserved, time.Now()).Exec()
}

func GetReservation(sessionID string) (*Reservation, error) {
	session, err := database.GetMarketSession()
	if err != nil {
		return nil, err
	}

	var r Reservation
	r.SessionID = sessionID
	if err := session.Query(`SELECT voucher_id, cart_id, amount, status, created_at
		FROM voucher_reservations WHERE session_id = ?`, sessionID).
		Scan(&r.VoucherID, &r.CartID, &r.Amount, &r.Status, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// ReservationOwner retourne le compte propriétaire d'une réservation, via
// le voucher qu'elle porte. Sert à contrôler l'appelant quand la session
// Redis a déjà expiré
func ReservationOwner(sessionID string) (string, error) {
	session, err := database.GetMarketSession()
	if err != nil {
		return "", err
	}

	reservation, err := GetReservation(sessionID)
	if err != nil {
		return "", err
	}

	voucher, err := getVoucher(session, reservation.VoucherID)
	if err != nil {
		return "", err
	}
	return voucher.UserID, nil
}

// transitionReservation fait passer une réservation d'un statut à un autre.
// Retourne false si le statut avait déjà changé (déjà capturée ou libérée)
func transitionReservation(sessionID, from, to string) (bool, error) {
	session, err := database.GetMarketSession()
	if err != nil {
		return false, err
	}

	var prevStatus string
	applied, err := session.Query(
		"UPDATE voucher_reservations SET status = ? WHERE session_id = ? IF status = ?",
		to, sessionID, from).ScanCAS(&prevStatus)
	if err != nil {
		return false, err
	}
	return applied, nil
}

// CaptureReservation marque la réservation consommée (commande créée)
func CaptureReservation(sessionID string) (bool, error) {
	return transitionReservation(sessionID, ReservationReserved, ReservationCaptured)
}

// ReleaseReservation libère le crédit d'une réservation encore active.
// Idempotent : si elle a déjà été capturée ou libérée, ne fait rien
func ReleaseReservation(sessionID string) error {
	reservation, err := GetReservation(sessionID)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil
		}
		return err
	}

	applied, err := transitionReservation(sessionID, ReservationReserved, ReservationReleased)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	return ReleaseVoucherCredit(reservation.VoucherID, reservation.Amount)
}

// =============================================
// ABONNEMENTS
// =============================================

// SubscriptionCoversPackaging : un abonnement actif incluant l'emballage
// dispense des frais forfaitaires au checkout
func SubscriptionCoversPackaging(userID string) bool {
	session, err := database.GetMarketSession()
	if err != nil {
		return false
	}

	var includesPackaging bool
	var expiresAt time.Time
	if err := session.Query(
		"SELECT includes_packaging, expires_at FROM subscriptions WHERE user_id = ?", userID).
		Scan(&includesPackaging, &expiresAt); err != nil {
		return false
	}

	return includesPackaging && time.Now().Before(expiresAt)
}
