package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trabahoph/payments-backend/internal/models"
	"github.com/trabahoph/payments-backend/internal/pkg/apperror"
	"github.com/trabahoph/payments-backend/internal/repository"
)

const (
	settingsCacheKey = "platform_settings"
	settingsCacheTTL = 30 * time.Second
)

type SettingsRepository interface {
	Get(ctx context.Context) (*models.PlatformSettings, error)
	Update(ctx context.Context, feePercentage decimal.Decimal, holdingDays int) (*models.PlatformSettings, error)
}

// SettingsService отдаёт настройки платформы с коротким кэшем:
// калькуляторы дёргают их на каждый расчёт.
type SettingsService struct {
	repo  SettingsRepository
	cache *CacheService
}

func NewSettingsService(repo SettingsRepository, cache *CacheService) *SettingsService {
	return &SettingsService{repo: repo, cache: cache}
}

// Current возвращает актуальные настройки (через кэш).
func (s *SettingsService) Current(ctx context.Context) (*models.PlatformSettings, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(settingsCacheKey); ok {
			if settings, ok := cached.(*models.PlatformSettings); ok {
				return settings, nil
			}
		}
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return nil, apperror.ErrSettingsNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(settingsCacheKey, settings, settingsCacheTTL)
	}
	return settings, nil
}

// Update меняет настройки платформы. Процент комиссии — 0-100,
// окно удержания не может быть отрицательным. Невалидные значения
// отклоняются, а не приводятся к границам.
func (s *SettingsService) Update(ctx context.Context, feePercentage decimal.Decimal, holdingDays int) (*models.PlatformSettings, error) {
	if feePercentage.IsNegative() || feePercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperror.New(apperror.ErrCodeValidation, "процент комиссии должен быть в диапазоне 0-100")
	}
	if holdingDays < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "окно удержания не может быть отрицательным")
	}

	settings, err := s.repo.Update(ctx, feePercentage, holdingDays)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return nil, apperror.ErrSettingsNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(settingsCacheKey)
	}
	return settings, nil
}
