package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trabahoph/payments-backend/internal/models"
	"github.com/trabahoph/payments-backend/internal/pkg/apperror"
	"github.com/trabahoph/payments-backend/internal/repository"
)

type DisputeRepository interface {
	Create(ctx context.Context, d *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	ListOpenByJobID(ctx context.Context, jobID uuid.UUID) ([]models.Dispute, error)
	ListByJobID(ctx context.Context, jobID uuid.UUID) ([]models.Dispute, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Dispute, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, note *string, resolvedBy *uuid.UUID, resolvedAt *time.Time) (*models.Dispute, error)
}

// JobPaymentsReader — часть платёжного репозитория для расчёта суммы спора.
type JobPaymentsReader interface {
	ListByJobID(ctx context.Context, jobID uuid.UUID) ([]models.JobPayment, error)
}

// DisputeService ведёт жизненный цикл споров (backjob).
type DisputeService struct {
	repo     DisputeRepository
	payments JobPaymentsReader
	now      func() time.Time
}

func NewDisputeService(repo DisputeRepository, payments JobPaymentsReader) *DisputeService {
	return &DisputeService{
		repo:     repo,
		payments: payments,
		now:      time.Now,
	}
}

// File подаёт спор по работе. Пока по работе открыт другой спор,
// новый подать нельзя. Сумма спора — чистый заработок исполнителя
// по работе (то, что стоит на кону при переделке или возврате).
func (s *DisputeService) File(ctx context.Context, jobID uuid.UUID, requestedBy, reason, priority string) (*models.Dispute, error) {
	if requestedBy != models.DisputePartyClient && requestedBy != models.DisputePartyWorker {
		return nil, apperror.New(apperror.ErrCodeValidation, "инициатором спора может быть только клиент или исполнитель")
	}
	if priority == "" {
		priority = models.DisputePriorityMedium
	}
	if _, ok := models.ValidDisputePriorities[priority]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный приоритет спора")
	}

	open, err := s.repo.ListOpenByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, apperror.ErrDuplicateDispute
	}

	legs, err := s.payments.ListByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "по этой работе нет платежей")
	}
	amount := decimal.Zero
	for _, leg := range legs {
		amount = amount.Add(leg.WorkerNetAmount)
	}

	dispute := &models.Dispute{
		JobID:         jobID,
		RequestedBy:   requestedBy,
		Reason:        reason,
		Status:        models.DisputeStatusPending,
		Priority:      priority,
		BackjobAmount: amount,
	}
	if err := s.repo.Create(ctx, dispute); err != nil {
		// Уникальный индекс страхует от гонки двух одновременных подач.
		if errors.Is(err, repository.ErrDisputeExists) {
			return nil, apperror.ErrDuplicateDispute
		}
		return nil, err
	}

	return dispute, nil
}

// StartReview берёт спор в рассмотрение (pending -> under_review).
func (s *DisputeService) StartReview(ctx context.Context, disputeID uuid.UUID) (*models.Dispute, error) {
	return s.transit(ctx, disputeID, models.DisputeStatusUnderReview, nil, nil)
}

// Resolve выносит решение по спору: approved или rejected.
// Конечные споры менять нельзя. Закрытие спора снимает блокировку
// с удержания выплаты по работе.
func (s *DisputeService) Resolve(ctx context.Context, disputeID uuid.UUID, outcome, resolutionNote string, resolvedBy uuid.UUID) (*models.Dispute, error) {
	if outcome != models.DisputeStatusApproved && outcome != models.DisputeStatusRejected {
		return nil, apperror.New(apperror.ErrCodeValidation, "решение может быть только approved или rejected")
	}
	return s.transit(ctx, disputeID, outcome, &resolutionNote, &resolvedBy)
}

// CompleteBackjob закрывает одобренный спор после выполнения переделки
// (approved -> completed).
func (s *DisputeService) CompleteBackjob(ctx context.Context, disputeID uuid.UUID) (*models.Dispute, error) {
	return s.transit(ctx, disputeID, models.DisputeStatusCompleted, nil, nil)
}

func (s *DisputeService) transit(ctx context.Context, disputeID uuid.UUID, toStatus string, note *string, resolvedBy *uuid.UUID) (*models.Dispute, error) {
	dispute, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}

	if !models.CanTransitDispute(dispute.Status, toStatus) {
		return nil, apperror.ErrIllegalTransition
	}

	var resolvedAt *time.Time
	if models.IsTerminalDisputeStatus(toStatus) || toStatus == models.DisputeStatusApproved {
		now := s.now()
		resolvedAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, dispute.ID, dispute.Status, toStatus, note, resolvedBy, resolvedAt)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeConflict) {
			return nil, apperror.ErrStatusConflict
		}
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}
	return updated, nil
}

// GetDispute возвращает спор по идентификатору.
func (s *DisputeService) GetDispute(ctx context.Context, disputeID uuid.UUID) (*models.Dispute, error) {
	dispute, err := s.repo.GetByID(ctx, disputeID)
	if errors.Is(err, repository.ErrDisputeNotFound) {
		return nil, apperror.ErrDisputeNotFound
	}
	return dispute, err
}

// ListJobDisputes возвращает все споры работы.
func (s *DisputeService) ListJobDisputes(ctx context.Context, jobID uuid.UUID) ([]models.Dispute, error) {
	return s.repo.ListByJobID(ctx, jobID)
}

// ListDisputes возвращает споры для админ-панели.
func (s *DisputeService) ListDisputes(ctx context.Context, status string, limit, offset int) ([]models.Dispute, error) {
	if status != "" {
		switch status {
		case models.DisputeStatusPending, models.DisputeStatusUnderReview,
			models.DisputeStatusApproved, models.DisputeStatusRejected, models.DisputeStatusCompleted:
		default:
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус спора")
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, status, limit, offset)
}
