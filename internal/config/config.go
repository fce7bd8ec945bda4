package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// CheckoutSessionTTL : fenêtre de validité d'une session OTP voucher
func CheckoutSessionTTL() time.Duration {
	return time.Duration(envInt("CHECKOUT_SESSION_TTL_MINUTES", 10)) * time.Minute
}

// PackagingFee : frais d'emballage forfaitaires (RWF), appliqués seulement
// si le client le demande et qu'aucun abonnement actif ne les couvre
func PackagingFee() float64 {
	return float64(envInt("PACKAGING_FEE_RWF", 500))
}

// OtpMaxAttempts : tentatives OTP avant blocage temporaire
func OtpMaxAttempts() int {
	return envInt("OTP_MAX_ATTEMPTS", 5)
}

// OtpLockout : durée du blocage après trop de tentatives
func OtpLockout() time.Duration {
	return time.Duration(envInt("OTP_LOCKOUT_MINUTES", 15)) * time.Minute
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
		log.Printf("⚠️ Valeur invalide pour %s, fallback %d", key, fallback)
	}
	return fallback
}
