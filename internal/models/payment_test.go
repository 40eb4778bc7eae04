package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitPayment(t *testing.T) {
	legal := [][2]string{
		{PaymentStatusPending, PaymentStatusVerifying},
		{PaymentStatusPending, PaymentStatusFailed},
		{PaymentStatusVerifying, PaymentStatusCompleted},
		{PaymentStatusVerifying, PaymentStatusFailed},
		{PaymentStatusCompleted, PaymentStatusRefunded},
	}
	for _, pair := range legal {
		assert.True(t, CanTransitPayment(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	illegal := [][2]string{
		{PaymentStatusPending, PaymentStatusCompleted},
		{PaymentStatusPending, PaymentStatusRefunded},
		{PaymentStatusVerifying, PaymentStatusRefunded},
		{PaymentStatusVerifying, PaymentStatusPending},
		{PaymentStatusCompleted, PaymentStatusPending},
		{PaymentStatusFailed, PaymentStatusPending},
		{PaymentStatusRefunded, PaymentStatusCompleted},
		{PaymentStatusCompleted, PaymentStatusCompleted},
	}
	for _, pair := range illegal {
		assert.False(t, CanTransitPayment(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestIsTerminalPaymentStatus(t *testing.T) {
	assert.False(t, IsTerminalPaymentStatus(PaymentStatusPending))
	assert.False(t, IsTerminalPaymentStatus(PaymentStatusVerifying))
	assert.True(t, IsTerminalPaymentStatus(PaymentStatusCompleted))
	assert.True(t, IsTerminalPaymentStatus(PaymentStatusFailed))
	assert.True(t, IsTerminalPaymentStatus(PaymentStatusRefunded))
}

func TestPaymentStatusMeta_CoversAllStatuses(t *testing.T) {
	statuses := []string{
		PaymentStatusPending, PaymentStatusVerifying, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded,
	}
	for _, s := range statuses {
		meta, ok := PaymentStatusMeta[s]
		assert.True(t, ok, "нет метаданных для статуса %s", s)
		assert.NotEmpty(t, meta.Label)
		assert.NotEmpty(t, meta.Color)
		assert.Equal(t, IsTerminalPaymentStatus(s), meta.Terminal, "статус %s", s)
	}
}

func TestCanTransitDispute(t *testing.T) {
	assert.True(t, CanTransitDispute(DisputeStatusPending, DisputeStatusUnderReview))
	assert.True(t, CanTransitDispute(DisputeStatusPending, DisputeStatusRejected))
	assert.True(t, CanTransitDispute(DisputeStatusUnderReview, DisputeStatusApproved))
	assert.True(t, CanTransitDispute(DisputeStatusUnderReview, DisputeStatusRejected))
	assert.True(t, CanTransitDispute(DisputeStatusApproved, DisputeStatusCompleted))

	assert.False(t, CanTransitDispute(DisputeStatusPending, DisputeStatusApproved))
	assert.False(t, CanTransitDispute(DisputeStatusPending, DisputeStatusCompleted))
	assert.False(t, CanTransitDispute(DisputeStatusRejected, DisputeStatusUnderReview))
	assert.False(t, CanTransitDispute(DisputeStatusCompleted, DisputeStatusApproved))
	assert.False(t, CanTransitDispute(DisputeStatusApproved, DisputeStatusRejected))
}

func TestIsOpenDisputeStatus(t *testing.T) {
	assert.True(t, IsOpenDisputeStatus(DisputeStatusPending))
	assert.True(t, IsOpenDisputeStatus(DisputeStatusUnderReview))
	assert.False(t, IsOpenDisputeStatus(DisputeStatusApproved))
	assert.False(t, IsOpenDisputeStatus(DisputeStatusRejected))
	assert.False(t, IsOpenDisputeStatus(DisputeStatusCompleted))
}

func TestEarningsBuffer_RemainingDays(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	buffer := &EarningsBuffer{
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 7),
		BufferDays: 7,
	}

	assert.Equal(t, 7, buffer.RemainingDays(start))
	assert.Equal(t, 1, buffer.RemainingDays(time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, 0, buffer.RemainingDays(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, buffer.RemainingDays(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	// Через 12 часов после старта остаётся 7 неполных суток -> ceil = 7.
	assert.Equal(t, 7, buffer.RemainingDays(start.Add(12*time.Hour)))
	assert.Equal(t, 6, buffer.RemainingDays(start.Add(36*time.Hour)))
}

func TestEarningsBuffer_WindowElapsed(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	buffer := &EarningsBuffer{StartDate: start, EndDate: start.AddDate(0, 0, 7)}

	assert.False(t, buffer.WindowElapsed(time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC)))
	assert.True(t, buffer.WindowElapsed(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
	assert.True(t, buffer.WindowElapsed(time.Date(2024, 1, 8, 0, 0, 1, 0, time.UTC)))
}
