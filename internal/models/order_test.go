package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvanceTo_ChaineComplete(t *testing.T) {
	chain := []string{OrderPending, OrderConfirmed, OrderPreparing,
		OrderReady, OrderInTransit, OrderDelivered}

	for i := 0; i < len(chain)-1; i++ {
		assert.True(t, CanAdvanceTo(chain[i], chain[i+1]),
			"%s → %s doit être autorisé", chain[i], chain[i+1])
	}
}

func TestCanAdvanceTo_PasDeSaut(t *testing.T) {
	// Sauter des étapes est interdit
	assert.False(t, CanAdvanceTo(OrderPreparing, OrderDelivered))
	assert.False(t, CanAdvanceTo(OrderConfirmed, OrderReady))
	assert.False(t, CanAdvanceTo(OrderPending, OrderInTransit))
}

func TestCanAdvanceTo_PasDeRetourArriere(t *testing.T) {
	assert.False(t, CanAdvanceTo(OrderReady, OrderPreparing))
	assert.False(t, CanAdvanceTo(OrderDelivered, OrderInTransit))
}

func TestCanAdvanceTo_StatutsTerminaux(t *testing.T) {
	// Une commande livrée ou annulée est immuable
	for _, terminal := range []string{OrderDelivered, OrderCancelled} {
		for _, target := range []string{OrderConfirmed, OrderPreparing,
			OrderReady, OrderInTransit, OrderDelivered} {
			assert.False(t, CanAdvanceTo(terminal, target),
				"%s → %s doit être refusé", terminal, target)
		}
	}
}

func TestNextStatus(t *testing.T) {
	assert.Equal(t, OrderPreparing, NextStatus(OrderConfirmed))
	assert.Equal(t, OrderDelivered, NextStatus(OrderInTransit))
	// PENDING et les terminaux n'ont pas de "suivant" implicite
	assert.Equal(t, "", NextStatus(OrderPending))
	assert.Equal(t, "", NextStatus(OrderDelivered))
	assert.Equal(t, "", NextStatus(OrderCancelled))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(OrderDelivered))
	assert.True(t, IsTerminalStatus(OrderCancelled))
	assert.False(t, IsTerminalStatus(OrderPending))
	assert.False(t, IsTerminalStatus(OrderInTransit))
}

func TestCanCancel(t *testing.T) {
	// Annulable depuis tout statut non terminal, y compris IN_TRANSIT
	for _, s := range []string{OrderPending, OrderConfirmed, OrderPreparing,
		OrderReady, OrderInTransit} {
		assert.True(t, CanCancel(s), "annulation depuis %s", s)
	}
	assert.False(t, CanCancel(OrderDelivered))
	assert.False(t, CanCancel(OrderCancelled))
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(OrderInTransit))
	assert.False(t, IsValidStatus("SHIPPED"))
	assert.False(t, IsValidStatus(""))
}
