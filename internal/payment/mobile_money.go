package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"isoko_back_end/internal/models"
)

// MobileMoneyStrategy : MoMo via Paypack. Le cashin déclenche un push USSD
// sur le téléphone du client ; le règlement est COMPLETED côté checkout mais
// le payment_status reste PENDING jusqu'au webhook du provider
type MobileMoneyStrategy struct{}

func (s *MobileMoneyStrategy) Name() string { return models.MethodMobileMoney }

func (s *MobileMoneyStrategy) Validate(req *models.CheckoutRequest) *FieldError {
	if fe := validateBilling(req); fe != nil {
		return fe
	}
	if !isValidRwandaPhone(req.BillingPhone) {
		return &FieldError{Field: "billing_phone", Message: "Numéro de téléphone mobile money invalide"}
	}
	return nil
}

func (s *MobileMoneyStrategy) Settle(sc *SettleContext) (*Result, error) {
	client := newPaypackClient()

	ref, err := client.Cashin(sc.Request.BillingPhone, sc.Pricing.Total)
	if err != nil {
		return nil, &ProviderError{Provider: "paypack", Err: err}
	}

	log.Printf("📲 Push USSD Paypack envoyé: %s (%.0f RWF) vers %s", ref, sc.Pricing.Total, sc.Request.BillingPhone)

	return &Result{
		Status:        models.CheckoutCompleted,
		PaymentStatus: models.PaymentPending, // confirmé par le webhook Paypack
		Provider:      "paypack",
		Ref:           ref,
	}, nil
}

// --- Client Paypack ---
// Pas de SDK Go officiel : on parle directement à l'API REST

type paypackClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
}

func newPaypackClient() *paypackClient {
	baseURL := os.Getenv("PAYPACK_BASE_URL")
	if baseURL == "" {
		baseURL = "https://payments.paypack.rw/api"
	}
	return &paypackClient{
		baseURL:      baseURL,
		clientID:     os.Getenv("PAYPACK_CLIENT_ID"),
		clientSecret: os.Getenv("PAYPACK_CLIENT_SECRET"),
		http:         &http.Client{Timeout: 15 * time.Second},
	}
}

// authenticate récupère un access token
func (p *paypackClient) authenticate() (string, error) {
	body, _ := json.Marshal(map[string]string{
		"client_id":     p.clientID,
		"client_secret": p.clientSecret,
	})

	resp, err := p.http.Post(p.baseURL+"/auth/agents/authorize", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authentification Paypack échouée (HTTP %d)", resp.StatusCode)
	}

	var out struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Access, nil
}

// Cashin déclenche un prélèvement MoMo et retourne la référence de transaction
func (p *paypackClient) Cashin(phone string, amount float64) (string, error) {
	token, err := p.authenticate()
	if err != nil {
		return "", err
	}

	body, _ := json.Marshal(map[string]interface{}{
		"number": normalizePhone(phone),
		"amount": amount,
	})

	req, err := http.NewRequest(http.MethodPost, p.baseURL+"/transactions/cashin", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("cashin Paypack refusé (HTTP %d)", resp.StatusCode)
	}

	var out struct {
		Ref string `json:"ref"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Ref == "" {
		return "", fmt.Errorf("référence de transaction manquante dans la réponse Paypack")
	}
	return out.Ref, nil
}

// normalizePhone : Paypack attend le format local 07XXXXXXXX
func normalizePhone(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.TrimPrefix(phone, "+")
	if strings.HasPrefix(phone, "250") {
		phone = "0" + phone[3:]
	}
	return phone
}
