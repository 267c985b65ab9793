package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusNew, OrderStatusPreparing))
	assert.True(t, CanTransition(OrderStatusNew, OrderStatusCompleted))
	assert.False(t, CanTransition(OrderStatusReady, OrderStatusPreparing))
	assert.False(t, CanTransition(OrderStatusReady, OrderStatusReady))
	assert.False(t, CanTransition(OrderStatusNew, "cancelled"))
	assert.True(t, IsValidOrderStatus(OrderStatusReady))
	assert.False(t, IsValidOrderStatus("lost"))
}
