package dto

// OpenEscrowRequest — запрос основного бэкенда на открытие платежей
// по принятой работе.
type OpenEscrowRequest struct {
	ClientID      string `json:"client_id" binding:"required,uuid"`
	WorkerID      string `json:"worker_id" binding:"required,uuid"`
	Budget        string `json:"budget" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// TransitionRequest — запрос на переход статуса платежа.
type TransitionRequest struct {
	Status        string  `json:"status" binding:"required"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// CreateDisputeRequest — подача спора (backjob) по работе.
type CreateDisputeRequest struct {
	RequestedBy string `json:"requested_by" binding:"required,oneof=client worker"`
	Reason      string `json:"reason" binding:"required,min=10,max=2000"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

// ResolveDisputeRequest — решение админа по спору.
type ResolveDisputeRequest struct {
	Outcome        string `json:"outcome" binding:"required,oneof=approved rejected"`
	ResolutionNote string `json:"resolution_note" binding:"required,min=5,max=2000"`
}

// UpdateSettingsRequest — изменение настроек платформы из админ-панели.
// Процент комиссии задаётся в диапазоне 0-100.
type UpdateSettingsRequest struct {
	PlatformFeePercentage string `json:"platform_fee_percentage" binding:"required"`
	EscrowHoldingDays     int    `json:"escrow_holding_days" binding:"min=0"`
}
