package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trabahoph/payments-backend/internal/models"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrStatusConflict  = errors.New("payment status changed concurrently")
)

const paymentColumns = `id, job_id, client_id, worker_id, leg, gross_amount,
	platform_fee_rate, platform_fee_amount, total_client_paid, worker_net_amount,
	payment_method, status, transaction_id, created_at, completed_at`

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreateJobLegs сохраняет обе части платежа по работе в одной транзакции,
// чтобы работа никогда не существовала с одной частью из двух.
func (r *PaymentRepository) CreateJobLegs(ctx context.Context, legs []*models.JobPayment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range legs {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO job_payments (job_id, client_id, worker_id, leg, gross_amount,
				platform_fee_rate, platform_fee_amount, total_client_paid, worker_net_amount,
				payment_method, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at
		`, p.JobID, p.ClientID, p.WorkerID, p.Leg, p.GrossAmount,
			p.PlatformFeeRate, p.PlatformFeeAmount, p.TotalClientPaid, p.WorkerNetAmount,
			p.PaymentMethod, p.Status).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("payment repository: create leg %s: %w", p.Leg, err)
		}
	}

	return tx.Commit()
}

// GetByID возвращает платёж по идентификатору.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JobPayment, error) {
	var p models.JobPayment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM job_payments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("payment repository: get by id: %w", err)
	}
	return &p, nil
}

// ListByJobID возвращает обе части платежа работы (escrow первой).
func (r *PaymentRepository) ListByJobID(ctx context.Context, jobID uuid.UUID) ([]models.JobPayment, error) {
	var payments []models.JobPayment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT `+paymentColumns+` FROM job_payments
		WHERE job_id = $1
		ORDER BY CASE leg WHEN 'escrow' THEN 0 ELSE 1 END
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("payment repository: list by job: %w", err)
	}
	return payments, nil
}

// UpdateStatus применяет переход статуса условным UPDATE: строка меняется
// только если статус всё ещё равен fromStatus. Параллельное обновление
// не может привести к несогласованному состоянию — проигравший получает
// ErrStatusConflict.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, completedAt *time.Time, transactionID *string) (*models.JobPayment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var p models.JobPayment
	err = tx.GetContext(ctx, &p, `
		UPDATE job_payments
		SET status = $3,
			completed_at = COALESCE($4, completed_at),
			transaction_id = COALESCE($5, transaction_id)
		WHERE id = $1 AND status = $2
		RETURNING `+paymentColumns+`
	`, id, fromStatus, toStatus, completedAt, transactionID)
	if errors.Is(err, sql.ErrNoRows) {
		// Либо платежа нет, либо статус уже изменился параллельно.
		var exists bool
		if checkErr := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM job_payments WHERE id = $1)`, id); checkErr != nil {
			return nil, fmt.Errorf("payment repository: check existence: %w", checkErr)
		}
		if !exists {
			return nil, ErrPaymentNotFound
		}
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("payment repository: update status: %w", err)
	}

	// Завершение и возврат фиксируются в журнале движений.
	if toStatus == models.PaymentStatusCompleted || toStatus == models.PaymentStatusRefunded {
		txType := models.TransactionTypeEscrowPaid
		if toStatus == models.PaymentStatusRefunded {
			txType = models.TransactionTypeRefund
		} else if p.Leg == models.PaymentLegFinal {
			txType = models.TransactionTypeFinalPaid
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payment_transactions (job_id, payment_id, type, amount)
			VALUES ($1, $2, $3, $4)
		`, p.JobID, p.ID, txType, p.GrossAmount)
		if err != nil {
			return nil, fmt.Errorf("payment repository: write transaction log: %w", err)
		}
	}

	return &p, tx.Commit()
}

// ListUnbufferedFinals возвращает завершённые финальные части, по работам
// которых ещё нет записи об удержании. Такое возможно, если планирование
// удержания упало сразу после завершения работы.
func (r *PaymentRepository) ListUnbufferedFinals(ctx context.Context) ([]models.JobPayment, error) {
	var payments []models.JobPayment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT `+paymentColumns+` FROM job_payments p
		WHERE p.leg = 'final' AND p.status = 'completed'
		  AND NOT EXISTS (SELECT 1 FROM earnings_buffers b WHERE b.job_id = p.job_id)
		ORDER BY p.completed_at
	`)
	if err != nil {
		return nil, fmt.Errorf("payment repository: list unbuffered finals: %w", err)
	}
	return payments, nil
}

// ListTransactions возвращает журнал движений по работе.
func (r *PaymentRepository) ListTransactions(ctx context.Context, jobID uuid.UUID) ([]models.PaymentTransaction, error) {
	var transactions []models.PaymentTransaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT id, job_id, payment_id, type, amount, created_at
		FROM payment_transactions WHERE job_id = $1 ORDER BY created_at
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("payment repository: list transactions: %w", err)
	}
	return transactions, nil
}
