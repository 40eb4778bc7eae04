package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Части платежа по работе: предоплата и финальный платёж.
const (
	PaymentLegEscrow = "escrow"
	PaymentLegFinal  = "final"
)

// Способы оплаты.
const (
	PaymentMethodGCash  = "gcash"
	PaymentMethodCash   = "cash"
	PaymentMethodWallet = "wallet"
	PaymentMethodCard   = "card"
)

// Статусы платежа.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusVerifying = "verifying"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// ValidPaymentMethods список валидных способов оплаты.
var ValidPaymentMethods = map[string]struct{}{
	PaymentMethodGCash:  {},
	PaymentMethodCash:   {},
	PaymentMethodWallet: {},
	PaymentMethodCard:   {},
}

// paymentTransitions — единственное место, где определены допустимые
// переходы статусов платежа. pending -> completed напрямую запрещён:
// платёж обязан пройти через verifying.
var paymentTransitions = map[string]map[string]struct{}{
	PaymentStatusPending: {
		PaymentStatusVerifying: {},
		PaymentStatusFailed:    {},
	},
	PaymentStatusVerifying: {
		PaymentStatusCompleted: {},
		PaymentStatusFailed:    {},
	},
	PaymentStatusCompleted: {
		PaymentStatusRefunded: {},
	},
}

// CanTransitPayment проверяет, допустим ли переход статуса платежа.
func CanTransitPayment(from, to string) bool {
	next, ok := paymentTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// IsTerminalPaymentStatus сообщает, является ли статус конечным.
// По конечному статусу клиент обязан остановить опрос.
func IsTerminalPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// StatusMeta — отображаемые атрибуты статуса. Таблица определена один раз
// здесь, чтобы экраны не дублировали switch по строкам.
type StatusMeta struct {
	Label    string `json:"label"`
	Color    string `json:"color"`
	Terminal bool   `json:"terminal"`
}

// PaymentStatusMeta сопоставляет статус платежа его атрибутам.
var PaymentStatusMeta = map[string]StatusMeta{
	PaymentStatusPending:   {Label: "Pending", Color: "#F59E0B"},
	PaymentStatusVerifying: {Label: "Verifying", Color: "#3B82F6"},
	PaymentStatusCompleted: {Label: "Completed", Color: "#10B981", Terminal: true},
	PaymentStatusFailed:    {Label: "Failed", Color: "#EF4444", Terminal: true},
	PaymentStatusRefunded:  {Label: "Refunded", Color: "#6B7280", Terminal: true},
}

// JobPayment — одна денежная часть работы (escrow или final).
// После перехода в completed или refunded запись больше не изменяется.
type JobPayment struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	JobID             uuid.UUID       `db:"job_id" json:"job_id"`
	ClientID          uuid.UUID       `db:"client_id" json:"client_id"`
	WorkerID          uuid.UUID       `db:"worker_id" json:"worker_id"`
	Leg               string          `db:"leg" json:"leg"`
	GrossAmount       decimal.Decimal `db:"gross_amount" json:"gross_amount"`
	PlatformFeeRate   decimal.Decimal `db:"platform_fee_rate" json:"platform_fee_rate"`
	PlatformFeeAmount decimal.Decimal `db:"platform_fee_amount" json:"platform_fee_amount"`
	TotalClientPaid   decimal.Decimal `db:"total_client_paid" json:"total_client_paid"`
	WorkerNetAmount   decimal.Decimal `db:"worker_net_amount" json:"worker_net_amount"`
	PaymentMethod     string          `db:"payment_method" json:"payment_method"`
	Status            string          `db:"status" json:"status"`
	TransactionID     *string         `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	CompletedAt       *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

// Типы записей журнала платежей.
const (
	TransactionTypeEscrowPaid     = "escrow_paid"
	TransactionTypeFinalPaid      = "final_paid"
	TransactionTypeRefund         = "refund"
	TransactionTypePayoutReleased = "payout_released"
)

// PaymentTransaction — запись журнала движений по работе.
// Журнал только дополняется, существующие строки не изменяются.
type PaymentTransaction struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	JobID     uuid.UUID       `db:"job_id" json:"job_id"`
	PaymentID *uuid.UUID      `db:"payment_id" json:"payment_id,omitempty"`
	Type      string          `db:"type" json:"type"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
