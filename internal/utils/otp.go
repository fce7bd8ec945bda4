package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateOTP génère un code numérique à 6 chiffres (crypto/rand)
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashOTP : empreinte stockée à la place du code en clair
func HashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// VerifyOTP compare en temps constant
func VerifyOTP(code, hash string) bool {
	expected := HashOTP(code)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(hash)) == 1
}
