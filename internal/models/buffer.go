package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Причины удержания заработка.
const (
	HoldReasonBackjobProtection = "backjob_protection"
)

// EarningsBuffer — удержание заработка исполнителя после завершения работы.
// Пока окно не истекло (или работа оспорена), выплата не освобождается.
type EarningsBuffer struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	JobID          uuid.UUID       `db:"job_id" json:"job_id"`
	WorkerID       uuid.UUID       `db:"worker_id" json:"worker_id"`
	WorkerNetTotal decimal.Decimal `db:"worker_net_total" json:"worker_net_total"`
	HoldReason     string          `db:"hold_reason" json:"hold_reason"`
	BufferDays     int             `db:"buffer_days" json:"buffer_days"`
	StartDate      time.Time       `db:"start_date" json:"start_date"`
	EndDate        time.Time       `db:"end_date" json:"end_date"`
	IsReleased     bool            `db:"is_released" json:"is_released"`
	ReleasedAt     *time.Time      `db:"released_at" json:"released_at,omitempty"`
}

// RemainingDays возвращает количество полных дней до конца окна
// удержания: max(0, ceil((end_date - now) / 24h)).
func (b *EarningsBuffer) RemainingDays(now time.Time) int {
	if !now.Before(b.EndDate) {
		return 0
	}
	remaining := b.EndDate.Sub(now)
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// WindowElapsed сообщает, истекло ли окно удержания.
func (b *EarningsBuffer) WindowElapsed(now time.Time) bool {
	return !now.Before(b.EndDate)
}
