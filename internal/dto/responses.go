package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trabahoph/payments-backend/internal/models"
)

// ErrorResponse — стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse — стандартный успешный ответ.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PaymentStatusResponse — ответ для экрана ожидания оплаты.
// Пока terminal == false, клиент повторяет запрос раз в poll_interval_seconds;
// по конечному статусу опрос прекращается.
type PaymentStatusResponse struct {
	PaymentID           string            `json:"payment_id"`
	Status              string            `json:"status"`
	StatusMeta          models.StatusMeta `json:"status_meta"`
	Terminal            bool              `json:"terminal"`
	PollIntervalSeconds int               `json:"poll_interval_seconds"`
}

// ReceiptPayment — платёжная сводка чека.
type ReceiptPayment struct {
	Budget          decimal.Decimal `json:"budget"`
	EscrowAmount    decimal.Decimal `json:"escrow_amount"`
	FinalPayment    decimal.Decimal `json:"final_payment"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	PlatformFeeRate decimal.Decimal `json:"platform_fee_rate"`
	TotalClientPaid decimal.Decimal `json:"total_client_paid"`
	WorkerEarnings  decimal.Decimal `json:"worker_earnings"`
	PaymentMethod   string          `json:"payment_method"`
	// Отформатированные суммы, чтобы экраны не считали их заново.
	BudgetDisplay         string `json:"budget_display"`
	WorkerEarningsDisplay string `json:"worker_earnings_display"`
}

// ReceiptBuffer — сводка удержания выплаты в чеке.
type ReceiptBuffer struct {
	IsReleased    bool       `json:"is_released"`
	BufferDays    int        `json:"buffer_days"`
	RemainingDays int        `json:"remaining_days"`
	EndDate       time.Time  `json:"end_date"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	HoldReason    string     `json:"hold_reason"`
}

// ReceiptTransaction — строка журнала движений в чеке.
type ReceiptTransaction struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReceiptResponse — чек по работе: суммы, удержание, журнал.
type ReceiptResponse struct {
	JobID        string               `json:"job_id"`
	Payment      ReceiptPayment       `json:"payment"`
	Buffer       *ReceiptBuffer       `json:"buffer,omitempty"`
	Transactions []ReceiptTransaction `json:"transactions"`
}

// EarningsBufferItem — одно удержание в сводке заработка исполнителя.
type EarningsBufferItem struct {
	JobID          string          `json:"job_id"`
	WorkerNetTotal decimal.Decimal `json:"worker_net_total"`
	IsReleased     bool            `json:"is_released"`
	BufferDays     int             `json:"buffer_days"`
	RemainingDays  int             `json:"remaining_days"`
	EndDate        time.Time       `json:"end_date"`
	ReleasedAt     *time.Time      `json:"released_at,omitempty"`
	HoldReason     string          `json:"hold_reason"`
}

// EarningsResponse — сводка заработка исполнителя.
type EarningsResponse struct {
	WorkerID      string               `json:"worker_id"`
	ReleasedTotal decimal.Decimal      `json:"released_total"`
	HeldTotal     decimal.Decimal      `json:"held_total"`
	Buffers       []EarningsBufferItem `json:"buffers"`
}
