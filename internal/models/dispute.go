package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Статусы спора (backjob).
const (
	DisputeStatusPending     = "pending"
	DisputeStatusUnderReview = "under_review"
	DisputeStatusApproved    = "approved"
	DisputeStatusRejected    = "rejected"
	DisputeStatusCompleted   = "completed"
)

// Приоритеты спора.
const (
	DisputePriorityLow    = "low"
	DisputePriorityMedium = "medium"
	DisputePriorityHigh   = "high"
	DisputePriorityUrgent = "urgent"
)

// Инициаторы спора.
const (
	DisputePartyClient = "client"
	DisputePartyWorker = "worker"
)

// ValidDisputePriorities список валидных приоритетов.
var ValidDisputePriorities = map[string]struct{}{
	DisputePriorityLow:    {},
	DisputePriorityMedium: {},
	DisputePriorityHigh:   {},
	DisputePriorityUrgent: {},
}

// disputeTransitions — допустимые переходы статуса спора.
// pending -> rejected разрешён напрямую (быстрый отказ без рассмотрения).
var disputeTransitions = map[string]map[string]struct{}{
	DisputeStatusPending: {
		DisputeStatusUnderReview: {},
		DisputeStatusRejected:    {},
	},
	DisputeStatusUnderReview: {
		DisputeStatusApproved: {},
		DisputeStatusRejected: {},
	},
	DisputeStatusApproved: {
		DisputeStatusCompleted: {},
	},
}

// CanTransitDispute проверяет, допустим ли переход статуса спора.
func CanTransitDispute(from, to string) bool {
	next, ok := disputeTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// IsOpenDisputeStatus сообщает, блокирует ли спор в этом статусе
// освобождение выплаты по работе.
func IsOpenDisputeStatus(status string) bool {
	return status == DisputeStatusPending || status == DisputeStatusUnderReview
}

// IsTerminalDisputeStatus сообщает, является ли статус спора конечным.
func IsTerminalDisputeStatus(status string) bool {
	switch status {
	case DisputeStatusRejected, DisputeStatusCompleted:
		return true
	}
	return false
}

// DisputeStatusMeta сопоставляет статус спора его отображаемым атрибутам.
var DisputeStatusMeta = map[string]StatusMeta{
	DisputeStatusPending:     {Label: "Pending", Color: "#F59E0B"},
	DisputeStatusUnderReview: {Label: "Under Review", Color: "#3B82F6"},
	DisputeStatusApproved:    {Label: "Approved", Color: "#10B981"},
	DisputeStatusRejected:    {Label: "Rejected", Color: "#EF4444", Terminal: true},
	DisputeStatusCompleted:   {Label: "Completed", Color: "#6B7280", Terminal: true},
}

// Dispute — спор по завершённой работе (запрос на переделку или возврат).
type Dispute struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	JobID          uuid.UUID       `db:"job_id" json:"job_id"`
	RequestedBy    string          `db:"requested_by" json:"requested_by"`
	Reason         string          `db:"reason" json:"reason"`
	Status         string          `db:"status" json:"status"`
	Priority       string          `db:"priority" json:"priority"`
	BackjobAmount  decimal.Decimal `db:"backjob_amount" json:"backjob_amount"`
	ResolutionNote *string         `db:"resolution_note" json:"resolution_note,omitempty"`
	ResolvedBy     *uuid.UUID      `db:"resolved_by" json:"resolved_by,omitempty"`
	RequestedDate  time.Time       `db:"requested_date" json:"requested_date"`
	ResolvedDate   *time.Time      `db:"resolved_date" json:"resolved_date,omitempty"`
}
