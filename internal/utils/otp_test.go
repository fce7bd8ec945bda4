package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6, "le code doit toujours faire 6 chiffres, zéros de tête compris")
		for _, r := range otp {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestVerifyOTP(t *testing.T) {
	hash := HashOTP("042917")

	assert.True(t, VerifyOTP("042917", hash))
	assert.False(t, VerifyOTP("042918", hash))
	assert.False(t, VerifyOTP("", hash))
	assert.False(t, VerifyOTP("042917", ""))
}

func TestHashOTP_Stable(t *testing.T) {
	// Deux empreintes du même code sont identiques (pas de sel : le code
	// est à usage unique et à durée de vie courte)
	assert.Equal(t, HashOTP("123456"), HashOTP("123456"))
	assert.NotEqual(t, HashOTP("123456"), HashOTP("654321"))
}
