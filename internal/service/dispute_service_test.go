package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trabahoph/payments-backend/internal/models"
	"github.com/trabahoph/payments-backend/internal/pkg/apperror"
	"github.com/trabahoph/payments-backend/internal/repository"
)

type mockDisputeRepo struct {
	mock.Mock
}

func (m *mockDisputeRepo) Create(ctx context.Context, d *models.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *mockDisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListOpenByJobID(ctx context.Context, jobID uuid.UUID) ([]models.Dispute, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListByJobID(ctx context.Context, jobID uuid.UUID) ([]models.Dispute, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Dispute, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, note *string, resolvedBy *uuid.UUID, resolvedAt *time.Time) (*models.Dispute, error) {
	args := m.Called(ctx, id, fromStatus, toStatus, note, resolvedBy, resolvedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

type mockJobPaymentsReader struct {
	mock.Mock
}

func (m *mockJobPaymentsReader) ListByJobID(ctx context.Context, jobID uuid.UUID) ([]models.JobPayment, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.JobPayment), args.Error(1)
}

func TestDisputeService_File_Success(t *testing.T) {
	repo := new(mockDisputeRepo)
	payments := new(mockJobPaymentsReader)
	svc := NewDisputeService(repo, payments)
	ctx := context.Background()

	jobID := uuid.New()
	repo.On("ListOpenByJobID", ctx, jobID).Return([]models.Dispute{}, nil)
	payments.On("ListByJobID", ctx, jobID).Return([]models.JobPayment{
		{Leg: models.PaymentLegEscrow, WorkerNetAmount: decimal.RequireFromString("475.00")},
		{Leg: models.PaymentLegFinal, WorkerNetAmount: decimal.RequireFromString("475.00")},
	}, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	dispute, err := svc.File(ctx, jobID, models.DisputePartyClient, "работа выполнена с серьёзными дефектами", "")
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusPending, dispute.Status)
	assert.Equal(t, models.DisputePriorityMedium, dispute.Priority)
	// Сумма спора — чистый заработок исполнителя по работе.
	assert.True(t, dispute.BackjobAmount.Equal(decimal.RequireFromString("950.00")), dispute.BackjobAmount.String())
}

func TestDisputeService_File_DuplicateOpen(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockJobPaymentsReader))
	ctx := context.Background()

	jobID := uuid.New()
	repo.On("ListOpenByJobID", ctx, jobID).Return([]models.Dispute{
		{Status: models.DisputeStatusPending},
	}, nil)

	_, err := svc.File(ctx, jobID, models.DisputePartyClient, "работа выполнена с дефектами", "high")
	assert.ErrorIs(t, err, apperror.ErrDuplicateDispute)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDisputeService_File_RaceOnUniqueIndex(t *testing.T) {
	repo := new(mockDisputeRepo)
	payments := new(mockJobPaymentsReader)
	svc := NewDisputeService(repo, payments)
	ctx := context.Background()

	jobID := uuid.New()
	repo.On("ListOpenByJobID", ctx, jobID).Return([]models.Dispute{}, nil)
	payments.On("ListByJobID", ctx, jobID).Return([]models.JobPayment{
		{WorkerNetAmount: decimal.NewFromInt(100)},
	}, nil)
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrDisputeExists)

	_, err := svc.File(ctx, jobID, models.DisputePartyWorker, "клиент требует работы вне договорённости", "")
	assert.ErrorIs(t, err, apperror.ErrDuplicateDispute)
}

func TestDisputeService_File_InvalidParty(t *testing.T) {
	svc := NewDisputeService(new(mockDisputeRepo), new(mockJobPaymentsReader))

	_, err := svc.File(context.Background(), uuid.New(), "admin", "произвольная причина спора", "")
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestDisputeService_File_NoPayments(t *testing.T) {
	repo := new(mockDisputeRepo)
	payments := new(mockJobPaymentsReader)
	svc := NewDisputeService(repo, payments)
	ctx := context.Background()

	jobID := uuid.New()
	repo.On("ListOpenByJobID", ctx, jobID).Return([]models.Dispute{}, nil)
	payments.On("ListByJobID", ctx, jobID).Return([]models.JobPayment{}, nil)

	_, err := svc.File(ctx, jobID, models.DisputePartyClient, "работа выполнена с дефектами", "")
	assert.True(t, apperror.IsValidation(err))
}

func TestDisputeService_Resolve_Approved(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockJobPaymentsReader))
	ctx := context.Background()

	fixed := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	disputeID := uuid.New()
	adminID := uuid.New()
	note := "переделка обоснована"

	repo.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:     disputeID,
		Status: models.DisputeStatusUnderReview,
	}, nil)
	repo.On("UpdateStatus", ctx, disputeID, models.DisputeStatusUnderReview, models.DisputeStatusApproved, &note, &adminID, &fixed).
		Return(&models.Dispute{ID: disputeID, Status: models.DisputeStatusApproved}, nil)

	dispute, err := svc.Resolve(ctx, disputeID, models.DisputeStatusApproved, note, adminID)
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusApproved, dispute.Status)
	repo.AssertExpectations(t)
}

func TestDisputeService_Resolve_InvalidOutcome(t *testing.T) {
	svc := NewDisputeService(new(mockDisputeRepo), new(mockJobPaymentsReader))

	_, err := svc.Resolve(context.Background(), uuid.New(), models.DisputeStatusCompleted, "note", uuid.New())
	assert.True(t, apperror.IsValidation(err))
}

func TestDisputeService_Resolve_TerminalDispute(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockJobPaymentsReader))
	ctx := context.Background()

	disputeID := uuid.New()
	repo.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:     disputeID,
		Status: models.DisputeStatusRejected,
	}, nil)

	// Конечный спор менять нельзя.
	_, err := svc.Resolve(ctx, disputeID, models.DisputeStatusApproved, "повторное решение", uuid.New())
	assert.ErrorIs(t, err, apperror.ErrIllegalTransition)
}

func TestDisputeService_CompleteBackjob(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockJobPaymentsReader))
	ctx := context.Background()

	fixed := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	disputeID := uuid.New()
	repo.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:     disputeID,
		Status: models.DisputeStatusApproved,
	}, nil)
	repo.On("UpdateStatus", ctx, disputeID, models.DisputeStatusApproved, models.DisputeStatusCompleted, (*string)(nil), (*uuid.UUID)(nil), &fixed).
		Return(&models.Dispute{ID: disputeID, Status: models.DisputeStatusCompleted}, nil)

	dispute, err := svc.CompleteBackjob(ctx, disputeID)
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusCompleted, dispute.Status)
}

func TestDisputeService_CompleteBackjob_FromPending(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockJobPaymentsReader))
	ctx := context.Background()

	disputeID := uuid.New()
	repo.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:     disputeID,
		Status: models.DisputeStatusPending,
	}, nil)

	_, err := svc.CompleteBackjob(ctx, disputeID)
	assert.ErrorIs(t, err, apperror.ErrIllegalTransition)
}

func TestDisputeService_StartReview_Conflict(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockJobPaymentsReader))
	ctx := context.Background()

	disputeID := uuid.New()
	repo.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:     disputeID,
		Status: models.DisputeStatusPending,
	}, nil)
	repo.On("UpdateStatus", ctx, disputeID, models.DisputeStatusPending, models.DisputeStatusUnderReview, (*string)(nil), (*uuid.UUID)(nil), (*time.Time)(nil)).
		Return(nil, repository.ErrDisputeConflict)

	_, err := svc.StartReview(ctx, disputeID)
	assert.ErrorIs(t, err, apperror.ErrStatusConflict)
}

func TestDisputeService_ListDisputes_InvalidStatus(t *testing.T) {
	svc := NewDisputeService(new(mockDisputeRepo), new(mockJobPaymentsReader))

	_, err := svc.ListDisputes(context.Background(), "archived", 20, 0)
	assert.True(t, apperror.IsValidation(err))
}

func TestDisputeService_ListDisputes_DefaultLimit(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockJobPaymentsReader))
	ctx := context.Background()

	repo.On("List", ctx, "", 20, 0).Return([]models.Dispute{}, nil)

	_, err := svc.ListDisputes(ctx, "", 0, 0)
	assert.NoError(t, err)
}

func TestDisputeService_GetDispute_NotFound(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockJobPaymentsReader))
	ctx := context.Background()

	disputeID := uuid.New()
	repo.On("GetByID", ctx, disputeID).Return(nil, repository.ErrDisputeNotFound)

	_, err := svc.GetDispute(ctx, disputeID)
	assert.ErrorIs(t, err, apperror.ErrDisputeNotFound)
}
