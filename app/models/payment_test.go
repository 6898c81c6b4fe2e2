package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentPeriodID(t *testing.T) {
	assert.Equal(t, "lease-1_2026_08", PaymentPeriodID("lease-1", 2026, 8))
	assert.Equal(t, "lease-1_2026_12", PaymentPeriodID("lease-1", 2026, 12))

	// Same inputs always produce the same key.
	assert.Equal(t, PaymentPeriodID("lease-1", 2026, 8), PaymentPeriodID("lease-1", 2026, 8))
	assert.NotEqual(t, PaymentPeriodID("lease-1", 2026, 8), PaymentPeriodID("lease-2", 2026, 8))
}

func TestPaymentStatusIsSettled(t *testing.T) {
	assert.True(t, PaymentPaid.IsSettled())
	assert.False(t, PaymentPending.IsSettled())
	assert.False(t, PaymentOverdue.IsSettled())
}
