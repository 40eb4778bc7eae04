package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trabahoph/payments-backend/internal/domain/valueobject"
	"github.com/trabahoph/payments-backend/internal/dto"
	"github.com/trabahoph/payments-backend/internal/logger"
	"github.com/trabahoph/payments-backend/internal/models"
	"github.com/trabahoph/payments-backend/internal/pkg/apperror"
	"github.com/trabahoph/payments-backend/internal/repository"
)

type PaymentRepository interface {
	CreateJobLegs(ctx context.Context, legs []*models.JobPayment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobPayment, error)
	ListByJobID(ctx context.Context, jobID uuid.UUID) ([]models.JobPayment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, completedAt *time.Time, transactionID *string) (*models.JobPayment, error)
	ListUnbufferedFinals(ctx context.Context) ([]models.JobPayment, error)
	ListTransactions(ctx context.Context, jobID uuid.UUID) ([]models.PaymentTransaction, error)
}

// SettingsProvider отдаёт актуальные настройки платформы.
type SettingsProvider interface {
	Current(ctx context.Context) (*models.PlatformSettings, error)
}

// BufferStore — та часть сервиса удержаний, что нужна платёжному сервису.
type BufferStore interface {
	ScheduleRelease(ctx context.Context, jobID, workerID uuid.UUID, workerNetTotal decimal.Decimal, completedAt time.Time) (*models.EarningsBuffer, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.EarningsBuffer, error)
}

// PaymentEventPublisher рассылает события смены статуса (WebSocket).
type PaymentEventPublisher interface {
	PublishStatusChange(payment *models.JobPayment)
}

type PaymentService struct {
	repo     PaymentRepository
	settings SettingsProvider
	buffers  BufferStore
	events   PaymentEventPublisher
	now      func() time.Time
}

func NewPaymentService(repo PaymentRepository, settings SettingsProvider, buffers BufferStore) *PaymentService {
	return &PaymentService{
		repo:     repo,
		settings: settings,
		buffers:  buffers,
		now:      time.Now,
	}
}

// SetEventPublisher подключает рассылку событий. Может не вызываться вовсе
// (например, в тестах) — тогда события просто не публикуются.
func (s *PaymentService) SetEventPublisher(events PaymentEventPublisher) {
	s.events = events
}

// OpenEscrow создаёт обе части платежа по принятой работе: предоплату 50%
// и финальные 50%. Остаток копейки от деления уходит в финальную часть,
// поэтому части всегда в сумме дают бюджет. Ставка комиссии берётся из
// настроек платформы на момент открытия и фиксируется в каждой части.
func (s *PaymentService) OpenEscrow(ctx context.Context, jobID, clientID, workerID uuid.UUID, budget decimal.Decimal, paymentMethod string) ([]models.JobPayment, error) {
	if _, ok := models.ValidPaymentMethods[paymentMethod]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный способ оплаты")
	}

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	rate := settings.FeeRate()

	escrowGross, finalGross, err := valueobject.SplitBudget(budget)
	if err != nil {
		return nil, err
	}

	escrowLeg, err := buildLeg(jobID, clientID, workerID, models.PaymentLegEscrow, escrowGross, rate, paymentMethod)
	if err != nil {
		return nil, err
	}
	finalLeg, err := buildLeg(jobID, clientID, workerID, models.PaymentLegFinal, finalGross, rate, paymentMethod)
	if err != nil {
		return nil, err
	}

	legs := []*models.JobPayment{escrowLeg, finalLeg}
	if err := s.repo.CreateJobLegs(ctx, legs); err != nil {
		return nil, err
	}

	return []models.JobPayment{*escrowLeg, *finalLeg}, nil
}

// buildLeg заполняет производные поля части платежа.
// Комиссия вычитается из доли исполнителя; total_client_paid хранит сумму
// с клиентской надбавкой, которую показывают чеки.
func buildLeg(jobID, clientID, workerID uuid.UUID, leg string, gross, rate decimal.Decimal, method string) (*models.JobPayment, error) {
	fee, err := valueobject.ComputeFee(gross, rate)
	if err != nil {
		return nil, err
	}
	return &models.JobPayment{
		JobID:             jobID,
		ClientID:          clientID,
		WorkerID:          workerID,
		Leg:               leg,
		GrossAmount:       gross,
		PlatformFeeRate:   rate,
		PlatformFeeAmount: fee,
		TotalClientPaid:   gross.Add(fee),
		WorkerNetAmount:   gross.Sub(fee),
		PaymentMethod:     method,
		Status:            models.PaymentStatusPending,
	}, nil
}

// Transition применяет переход статуса платежа. Допустимость перехода
// проверяется по таблице в models; запись в базе меняется условным
// UPDATE, так что параллельный переход не может её перезаписать.
// При завершении финальной части планируется удержание заработка.
func (s *PaymentService) Transition(ctx context.Context, paymentID uuid.UUID, newStatus string, transactionID *string) (*models.JobPayment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, err
	}

	if !models.CanTransitPayment(payment.Status, newStatus) {
		return nil, apperror.ErrIllegalTransition
	}

	var completedAt *time.Time
	if newStatus == models.PaymentStatusCompleted {
		now := s.now()
		completedAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, payment.ID, payment.Status, newStatus, completedAt, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperror.ErrStatusConflict
		}
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, err
	}

	// Завершение финальной части означает одобренное завершение работы:
	// с этого момента начинается окно защиты от backjob. Статус к этому
	// моменту уже зафиксирован, поэтому ошибка планирования не откатывает
	// переход: недостающее удержание досоздаст периодический воркер
	// через ScheduleMissingBuffers.
	if updated.Leg == models.PaymentLegFinal && updated.Status == models.PaymentStatusCompleted {
		if err := s.scheduleBuffer(ctx, updated); err != nil {
			if logger.Log != nil {
				logger.Log.WithError(err).WithField("job_id", updated.JobID).
					Error("не удалось запланировать удержание выплаты")
			}
		}
	}

	if s.events != nil {
		s.events.PublishStatusChange(updated)
	}

	return updated, nil
}

func (s *PaymentService) scheduleBuffer(ctx context.Context, finalLeg *models.JobPayment) error {
	legs, err := s.repo.ListByJobID(ctx, finalLeg.JobID)
	if err != nil {
		return err
	}

	netTotal := decimal.Zero
	for _, leg := range legs {
		netTotal = netTotal.Add(leg.WorkerNetAmount)
	}

	completedAt := s.now()
	if finalLeg.CompletedAt != nil {
		completedAt = *finalLeg.CompletedAt
	}

	_, err = s.buffers.ScheduleRelease(ctx, finalLeg.JobID, finalLeg.WorkerID, netTotal, completedAt)
	return err
}

// ScheduleMissingBuffers досоздаёт удержания по завершённым работам,
// у которых записи об удержании нет. Вызывается периодическим воркером:
// так сбой планирования в момент завершения не оставляет работу
// без окна защиты от backjob навсегда.
func (s *PaymentService) ScheduleMissingBuffers(ctx context.Context) (int, error) {
	finals, err := s.repo.ListUnbufferedFinals(ctx)
	if err != nil {
		return 0, err
	}

	scheduled := 0
	for i := range finals {
		if err := s.scheduleBuffer(ctx, &finals[i]); err != nil {
			if logger.Log != nil {
				logger.Log.WithError(err).WithField("job_id", finals[i].JobID).
					Error("не удалось досоздать удержание выплаты")
			}
			continue
		}
		scheduled++
	}

	return scheduled, nil
}

// GetPayment возвращает платёж по идентификатору.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*models.JobPayment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if errors.Is(err, repository.ErrPaymentNotFound) {
		return nil, apperror.ErrPaymentNotFound
	}
	return payment, err
}

// ListJobPayments возвращает обе части платежа работы.
func (s *PaymentService) ListJobPayments(ctx context.Context, jobID uuid.UUID) ([]models.JobPayment, error) {
	return s.repo.ListByJobID(ctx, jobID)
}

// GetReceipt собирает чек по работе: суммы обеих частей, состояние
// удержания и журнал движений. Все суммы считаются здесь один раз,
// экраны их только отображают.
func (s *PaymentService) GetReceipt(ctx context.Context, jobID uuid.UUID) (*dto.ReceiptResponse, error) {
	legs, err := s.repo.ListByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, apperror.ErrPaymentNotFound
	}

	budget := decimal.Zero
	platformFee := decimal.Zero
	totalClientPaid := decimal.Zero
	workerEarnings := decimal.Zero
	escrowAmount := decimal.Zero
	finalAmount := decimal.Zero

	for _, leg := range legs {
		budget = budget.Add(leg.GrossAmount)
		platformFee = platformFee.Add(leg.PlatformFeeAmount)
		totalClientPaid = totalClientPaid.Add(leg.TotalClientPaid)
		workerEarnings = workerEarnings.Add(leg.WorkerNetAmount)
		switch leg.Leg {
		case models.PaymentLegEscrow:
			escrowAmount = leg.GrossAmount
		case models.PaymentLegFinal:
			finalAmount = leg.GrossAmount
		}
	}

	receipt := &dto.ReceiptResponse{
		JobID: jobID.String(),
		Payment: dto.ReceiptPayment{
			Budget:                budget,
			EscrowAmount:          escrowAmount,
			FinalPayment:          finalAmount,
			PlatformFee:           platformFee,
			PlatformFeeRate:       legs[0].PlatformFeeRate,
			TotalClientPaid:       totalClientPaid,
			WorkerEarnings:        workerEarnings,
			PaymentMethod:         legs[0].PaymentMethod,
			BudgetDisplay:         valueobject.FormatCurrency(budget),
			WorkerEarningsDisplay: valueobject.FormatCurrency(workerEarnings),
		},
	}

	buffer, err := s.buffers.GetByJobID(ctx, jobID)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if buffer != nil {
		receipt.Buffer = &dto.ReceiptBuffer{
			IsReleased:    buffer.IsReleased,
			BufferDays:    buffer.BufferDays,
			RemainingDays: buffer.RemainingDays(s.now()),
			EndDate:       buffer.EndDate,
			ReleasedAt:    buffer.ReleasedAt,
			HoldReason:    buffer.HoldReason,
		}
	}

	transactions, err := s.repo.ListTransactions(ctx, jobID)
	if err != nil {
		return nil, err
	}
	receipt.Transactions = make([]dto.ReceiptTransaction, 0, len(transactions))
	for _, t := range transactions {
		receipt.Transactions = append(receipt.Transactions, dto.ReceiptTransaction{
			ID:        t.ID.String(),
			Type:      t.Type,
			Amount:    t.Amount,
			CreatedAt: t.CreatedAt,
		})
	}

	return receipt, nil
}
