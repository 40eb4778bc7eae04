package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trabahoph/payments-backend/internal/dto"
	"github.com/trabahoph/payments-backend/internal/http/handlers/common"
	"github.com/trabahoph/payments-backend/internal/service"
)

// EarningsHandler обслуживает экран заработка исполнителя.
type EarningsHandler struct {
	buffers *service.BufferService
}

func NewEarningsHandler(buffers *service.BufferService) *EarningsHandler {
	return &EarningsHandler{buffers: buffers}
}

// GetWorkerEarnings возвращает удержания исполнителя и итоги:
// сколько уже выплачено и сколько ещё в окне защиты от backjob.
// GET /api/earnings/:workerId
func (h *EarningsHandler) GetWorkerEarnings(c *gin.Context) {
	workerID, err := common.ParseUUIDParam(c, "workerId")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID исполнителя")
		return
	}

	limit, offset := common.GetPagination(c)

	buffers, releasedTotal, heldTotal, err := h.buffers.WorkerEarnings(c.Request.Context(), workerID, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	now := timeNow()
	items := make([]dto.EarningsBufferItem, 0, len(buffers))
	for _, b := range buffers {
		items = append(items, dto.EarningsBufferItem{
			JobID:          b.JobID.String(),
			WorkerNetTotal: b.WorkerNetTotal,
			IsReleased:     b.IsReleased,
			BufferDays:     b.BufferDays,
			RemainingDays:  b.RemainingDays(now),
			EndDate:        b.EndDate,
			ReleasedAt:     b.ReleasedAt,
			HoldReason:     b.HoldReason,
		})
	}

	c.JSON(http.StatusOK, dto.EarningsResponse{
		WorkerID:      workerID.String(),
		ReleasedTotal: releasedTotal,
		HeldTotal:     heldTotal,
		Buffers:       items,
	})
}

// GetJobBuffer возвращает удержание по конкретной работе.
// GET /api/jobs/:id/buffer
func (h *EarningsHandler) GetJobBuffer(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID работы")
		return
	}

	buffer, err := h.buffers.GetByJobID(c.Request.Context(), jobID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, buffer)
}

// ReleaseDue вручную запускает освобождение просроченных удержаний.
// POST /api/admin/buffers/release-due
func (h *EarningsHandler) ReleaseDue(c *gin.Context) {
	released, err := h.buffers.ReleaseDue(c.Request.Context())
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"released": released})
}
