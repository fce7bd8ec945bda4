package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// L'annulation d'une session OTP ne libère jamais la réservation d'un autre
// compte, même quand la session Redis a expiré et que le propriétaire vient
// de la réservation persistée
func TestCancelAuthorized(t *testing.T) {
	assert.True(t, cancelAuthorized("user-1", "user-1"))
	assert.False(t, cancelAuthorized("user-1", "user-2"),
		"un autre compte ne doit pas pouvoir libérer la réservation")

	// Aucune réservation retrouvée : l'annulation est un no-op idempotent
	assert.True(t, cancelAuthorized("", "user-2"))
}
