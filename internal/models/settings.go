package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformSettings — настраиваемые параметры платформы.
// Хранятся в базе единственной строкой, калькуляторы читают их оттуда,
// а не из констант.
type PlatformSettings struct {
	ID                    int             `db:"id" json:"-"`
	PlatformFeePercentage decimal.Decimal `db:"platform_fee_percentage" json:"platform_fee_percentage"`
	EscrowHoldingDays     int             `db:"escrow_holding_days" json:"escrow_holding_days"`
	UpdatedAt             time.Time       `db:"updated_at" json:"updated_at"`
}

// FeeRate переводит процент комиссии (0-100) в ставку (0-1).
func (s *PlatformSettings) FeeRate() decimal.Decimal {
	return s.PlatformFeePercentage.Div(decimal.NewFromInt(100))
}
