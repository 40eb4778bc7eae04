package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trabahoph/payments-backend/internal/models"
)

var (
	ErrBufferNotFound        = errors.New("earnings buffer not found")
	ErrBufferAlreadyReleased = errors.New("earnings buffer already released")
	ErrBufferExists          = errors.New("earnings buffer already exists for job")
)

const bufferColumns = `id, job_id, worker_id, worker_net_total, hold_reason,
	buffer_days, start_date, end_date, is_released, released_at`

type BufferRepository struct {
	db *sqlx.DB
}

func NewBufferRepository(db *sqlx.DB) *BufferRepository {
	return &BufferRepository{db: db}
}

// Create сохраняет запись об удержании. На job_id стоит уникальный индекс:
// повторное планирование по той же работе возвращает ErrBufferExists.
func (r *BufferRepository) Create(ctx context.Context, b *models.EarningsBuffer) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO earnings_buffers (job_id, worker_id, worker_net_total, hold_reason,
			buffer_days, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, b.JobID, b.WorkerID, b.WorkerNetTotal, b.HoldReason,
		b.BufferDays, b.StartDate, b.EndDate).Scan(&b.ID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrBufferExists
	}
	if err != nil {
		return fmt.Errorf("buffer repository: create: %w", err)
	}
	return nil
}

// GetByJobID возвращает удержание по работе.
func (r *BufferRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.EarningsBuffer, error) {
	var b models.EarningsBuffer
	err := r.db.GetContext(ctx, &b, `SELECT `+bufferColumns+` FROM earnings_buffers WHERE job_id = $1`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBufferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("buffer repository: get by job: %w", err)
	}
	return &b, nil
}

// ListByWorker возвращает удержания исполнителя, свежие первыми.
func (r *BufferRepository) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.EarningsBuffer, error) {
	var buffers []models.EarningsBuffer
	err := r.db.SelectContext(ctx, &buffers, `
		SELECT `+bufferColumns+` FROM earnings_buffers
		WHERE worker_id = $1 ORDER BY start_date DESC LIMIT $2 OFFSET $3
	`, workerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("buffer repository: list by worker: %w", err)
	}
	return buffers, nil
}

// ListDue возвращает удержания, готовые к освобождению: окно истекло
// и по работе нет открытого спора. Сервис дополнительно перепроверяет
// условия перед фактическим освобождением.
func (r *BufferRepository) ListDue(ctx context.Context, now time.Time) ([]models.EarningsBuffer, error) {
	var buffers []models.EarningsBuffer
	err := r.db.SelectContext(ctx, &buffers, `
		SELECT `+bufferColumns+` FROM earnings_buffers b
		WHERE b.is_released = FALSE
		  AND b.end_date <= $1
		  AND NOT EXISTS (
			SELECT 1 FROM disputes d
			WHERE d.job_id = b.job_id AND d.status IN ('pending', 'under_review')
		  )
		ORDER BY b.end_date
	`, now)
	if err != nil {
		return nil, fmt.Errorf("buffer repository: list due: %w", err)
	}
	return buffers, nil
}

// MarkReleased помечает удержание освобождённым и пишет журнал выплаты.
// Условный UPDATE гарантирует идемпотентность: повторное освобождение
// возвращает ErrBufferAlreadyReleased, а не вторую выплату.
func (r *BufferRepository) MarkReleased(ctx context.Context, id uuid.UUID, releasedAt time.Time) (*models.EarningsBuffer, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var b models.EarningsBuffer
	err = tx.GetContext(ctx, &b, `
		UPDATE earnings_buffers
		SET is_released = TRUE, released_at = $2
		WHERE id = $1 AND is_released = FALSE
		RETURNING `+bufferColumns+`
	`, id, releasedAt)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if checkErr := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM earnings_buffers WHERE id = $1)`, id); checkErr != nil {
			return nil, fmt.Errorf("buffer repository: check existence: %w", checkErr)
		}
		if !exists {
			return nil, ErrBufferNotFound
		}
		return nil, ErrBufferAlreadyReleased
	}
	if err != nil {
		return nil, fmt.Errorf("buffer repository: mark released: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payment_transactions (job_id, type, amount)
		VALUES ($1, $2, $3)
	`, b.JobID, models.TransactionTypePayoutReleased, b.WorkerNetTotal)
	if err != nil {
		return nil, fmt.Errorf("buffer repository: write transaction log: %w", err)
	}

	return &b, tx.Commit()
}
