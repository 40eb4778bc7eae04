package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trabahoph/payments-backend/internal/logger"
	"github.com/trabahoph/payments-backend/internal/models"
	"github.com/trabahoph/payments-backend/internal/pkg/apperror"
	"github.com/trabahoph/payments-backend/internal/repository"
)

type BufferRepository interface {
	Create(ctx context.Context, b *models.EarningsBuffer) error
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.EarningsBuffer, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.EarningsBuffer, error)
	ListDue(ctx context.Context, now time.Time) ([]models.EarningsBuffer, error)
	MarkReleased(ctx context.Context, id uuid.UUID, releasedAt time.Time) (*models.EarningsBuffer, error)
}

// DisputeReader отдаёт открытые споры работы — они блокируют освобождение.
type DisputeReader interface {
	ListOpenByJobID(ctx context.Context, jobID uuid.UUID) ([]models.Dispute, error)
}

// BufferService управляет удержанием заработка исполнителя после
// завершения работы (защита от backjob).
type BufferService struct {
	repo     BufferRepository
	disputes DisputeReader
	settings SettingsProvider
	now      func() time.Time
}

func NewBufferService(repo BufferRepository, disputes DisputeReader, settings SettingsProvider) *BufferService {
	return &BufferService{
		repo:     repo,
		disputes: disputes,
		settings: settings,
		now:      time.Now,
	}
}

// ScheduleRelease создаёт удержание заработка: окно начинается с момента
// завершения работы и длится escrow_holding_days из настроек платформы.
// Длина окна фиксируется в записи — последующее изменение настроек не
// двигает уже запланированные даты. Повторный вызов по той же работе
// возвращает существующую запись.
func (s *BufferService) ScheduleRelease(ctx context.Context, jobID, workerID uuid.UUID, workerNetTotal decimal.Decimal, completedAt time.Time) (*models.EarningsBuffer, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	days := settings.EscrowHoldingDays

	buffer := &models.EarningsBuffer{
		JobID:          jobID,
		WorkerID:       workerID,
		WorkerNetTotal: workerNetTotal,
		HoldReason:     models.HoldReasonBackjobProtection,
		BufferDays:     days,
		StartDate:      completedAt,
		EndDate:        completedAt.AddDate(0, 0, days),
	}

	err = s.repo.Create(ctx, buffer)
	if errors.Is(err, repository.ErrBufferExists) {
		return s.GetByJobID(ctx, jobID)
	}
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

// GetByJobID возвращает удержание по работе.
func (s *BufferService) GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.EarningsBuffer, error) {
	buffer, err := s.repo.GetByJobID(ctx, jobID)
	if errors.Is(err, repository.ErrBufferNotFound) {
		return nil, apperror.ErrBufferNotFound
	}
	return buffer, err
}

// CanRelease — чистая проверка условий освобождения: окно истекло
// и по работе нет открытого спора. Уже освобождённое удержание
// освобождать нельзя.
func (s *BufferService) CanRelease(buffer *models.EarningsBuffer, openDisputes []models.Dispute) bool {
	if buffer.IsReleased {
		return false
	}
	return buffer.WindowElapsed(s.now()) && len(openDisputes) == 0
}

// Release освобождает удержание по работе. Повторное освобождение —
// громкая ошибка, а не вторая выплата.
func (s *BufferService) Release(ctx context.Context, jobID uuid.UUID) (*models.EarningsBuffer, error) {
	buffer, err := s.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if buffer.IsReleased {
		return nil, apperror.ErrBufferAlreadyReleased
	}

	openDisputes, err := s.disputes.ListOpenByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !s.CanRelease(buffer, openDisputes) {
		return nil, apperror.ErrNotYetReleasable
	}

	released, err := s.repo.MarkReleased(ctx, buffer.ID, s.now())
	if errors.Is(err, repository.ErrBufferAlreadyReleased) {
		return nil, apperror.ErrBufferAlreadyReleased
	}
	if errors.Is(err, repository.ErrBufferNotFound) {
		return nil, apperror.ErrBufferNotFound
	}
	return released, err
}

// ReleaseDue освобождает все удержания с истёкшим окном без открытых
// споров. Вызывается одним периодическим воркером; гонка с параллельным
// освобождением разрешается условным UPDATE в репозитории.
func (s *BufferService) ReleaseDue(ctx context.Context) (int, error) {
	due, err := s.repo.ListDue(ctx, s.now())
	if err != nil {
		return 0, err
	}

	released := 0
	for _, buffer := range due {
		if _, err := s.Release(ctx, buffer.JobID); err != nil {
			// Спор мог открыться между выборкой и освобождением —
			// такое удержание просто пропускаем до следующего прохода.
			if apperror.IsConflict(err) {
				continue
			}
			if logger.Log != nil {
				logger.Log.WithError(err).WithField("job_id", buffer.JobID).
					Error("не удалось освободить выплату")
			}
			continue
		}
		released++
	}

	return released, nil
}

// WorkerEarnings возвращает удержания исполнителя и итоги:
// сколько уже выплачено и сколько ещё удерживается.
func (s *BufferService) WorkerEarnings(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.EarningsBuffer, decimal.Decimal, decimal.Decimal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	buffers, err := s.repo.ListByWorker(ctx, workerID, limit, offset)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}

	releasedTotal := decimal.Zero
	heldTotal := decimal.Zero
	for _, b := range buffers {
		if b.IsReleased {
			releasedTotal = releasedTotal.Add(b.WorkerNetTotal)
		} else {
			heldTotal = heldTotal.Add(b.WorkerNetTotal)
		}
	}

	return buffers, releasedTotal, heldTotal, nil
}
