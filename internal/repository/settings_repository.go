package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/trabahoph/payments-backend/internal/models"
)

var ErrSettingsNotFound = errors.New("platform settings not found")

type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// EnsureDefaults создаёт строку настроек с дефолтами из конфигурации,
// если её ещё нет. Существующие значения не перезаписываются.
func (r *SettingsRepository) EnsureDefaults(ctx context.Context, feePercentage decimal.Decimal, holdingDays int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO platform_settings (id, platform_fee_percentage, escrow_holding_days)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING
	`, feePercentage, holdingDays)
	if err != nil {
		return fmt.Errorf("settings repository: ensure defaults: %w", err)
	}
	return nil
}

// Get возвращает единственную строку настроек платформы.
func (r *SettingsRepository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	var s models.PlatformSettings
	err := r.db.GetContext(ctx, &s, `
		SELECT id, platform_fee_percentage, escrow_holding_days, updated_at
		FROM platform_settings WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("settings repository: get: %w", err)
	}
	return &s, nil
}

// Update обновляет настройки и возвращает свежую строку.
func (r *SettingsRepository) Update(ctx context.Context, feePercentage decimal.Decimal, holdingDays int) (*models.PlatformSettings, error) {
	var s models.PlatformSettings
	err := r.db.GetContext(ctx, &s, `
		UPDATE platform_settings
		SET platform_fee_percentage = $1, escrow_holding_days = $2, updated_at = NOW()
		WHERE id = 1
		RETURNING id, platform_fee_percentage, escrow_holding_days, updated_at
	`, feePercentage, holdingDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("settings repository: update: %w", err)
	}
	return &s, nil
}
