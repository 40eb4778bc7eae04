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
	ErrDisputeNotFound = errors.New("dispute not found")
	ErrDisputeExists   = errors.New("open dispute already exists for job")
	ErrDisputeConflict = errors.New("dispute status changed concurrently")
)

const disputeColumns = `id, job_id, requested_by, reason, status, priority,
	backjob_amount, resolution_note, resolved_by, requested_date, resolved_date`

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Create сохраняет новый спор. Частичный уникальный индекс по (job_id)
// для открытых статусов страхует от гонки двух одновременных подач.
func (r *DisputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO disputes (job_id, requested_by, reason, status, priority, backjob_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, requested_date
	`, d.JobID, d.RequestedBy, d.Reason, d.Status, d.Priority, d.BackjobAmount).
		Scan(&d.ID, &d.RequestedDate)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDisputeExists
	}
	if err != nil {
		return fmt.Errorf("dispute repository: create: %w", err)
	}
	return nil
}

// GetByID возвращает спор по идентификатору.
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: get by id: %w", err)
	}
	return &d, nil
}

// ListOpenByJobID возвращает открытые споры работы — те, что блокируют
// освобождение выплаты.
func (r *DisputeRepository) ListOpenByJobID(ctx context.Context, jobID uuid.UUID) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT `+disputeColumns+` FROM disputes
		WHERE job_id = $1 AND status IN ('pending', 'under_review')
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list open by job: %w", err)
	}
	return disputes, nil
}

// ListByJobID возвращает все споры работы.
func (r *DisputeRepository) ListByJobID(ctx context.Context, jobID uuid.UUID) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT `+disputeColumns+` FROM disputes
		WHERE job_id = $1 ORDER BY requested_date DESC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list by job: %w", err)
	}
	return disputes, nil
}

// List возвращает споры для админ-панели с необязательным фильтром по статусу.
func (r *DisputeRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Dispute, error) {
	var disputes []models.Dispute
	var err error
	if status != "" {
		err = r.db.SelectContext(ctx, &disputes, `
			SELECT `+disputeColumns+` FROM disputes
			WHERE status = $1 ORDER BY requested_date DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &disputes, `
			SELECT `+disputeColumns+` FROM disputes
			ORDER BY requested_date DESC LIMIT $1 OFFSET $2
		`, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list: %w", err)
	}
	return disputes, nil
}

// UpdateStatus применяет переход статуса условным UPDATE (по прежнему
// статусу), как и для платежей.
func (r *DisputeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, note *string, resolvedBy *uuid.UUID, resolvedAt *time.Time) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `
		UPDATE disputes
		SET status = $3,
			resolution_note = COALESCE($4, resolution_note),
			resolved_by = COALESCE($5, resolved_by),
			resolved_date = COALESCE($6, resolved_date)
		WHERE id = $1 AND status = $2
		RETURNING `+disputeColumns+`
	`, id, fromStatus, toStatus, note, resolvedBy, resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if checkErr := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM disputes WHERE id = $1)`, id); checkErr != nil {
			return nil, fmt.Errorf("dispute repository: check existence: %w", checkErr)
		}
		if !exists {
			return nil, ErrDisputeNotFound
		}
		return nil, ErrDisputeConflict
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: update status: %w", err)
	}
	return &d, nil
}
