package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trabahoph/payments-backend/internal/dto"
	"github.com/trabahoph/payments-backend/internal/http/handlers/common"
	"github.com/trabahoph/payments-backend/internal/service"
)

// DisputeHandler обслуживает маршруты споров (backjob).
type DisputeHandler struct {
	disputes *service.DisputeService
}

func NewDisputeHandler(disputes *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

// File подаёт спор по работе.
// POST /api/jobs/:id/disputes
func (h *DisputeHandler) File(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID работы")
		return
	}

	var req dto.CreateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "неверный формат запроса: "+err.Error())
		return
	}

	dispute, err := h.disputes.File(c.Request.Context(), jobID, req.RequestedBy, req.Reason, req.Priority)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dispute)
}

// ListJobDisputes возвращает все споры работы.
// GET /api/jobs/:id/disputes
func (h *DisputeHandler) ListJobDisputes(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID работы")
		return
	}

	disputes, err := h.disputes.ListJobDisputes(c.Request.Context(), jobID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"disputes": disputes})
}

// GetDispute возвращает спор по идентификатору.
// GET /api/disputes/:id
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID спора")
		return
	}

	dispute, err := h.disputes.GetDispute(c.Request.Context(), disputeID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// ListDisputes — список споров для админ-панели с фильтром по статусу.
// GET /api/admin/disputes?status=pending&limit=20&offset=0
func (h *DisputeHandler) ListDisputes(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	status := c.Query("status")

	disputes, err := h.disputes.ListDisputes(c.Request.Context(), status, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"disputes": disputes,
		"limit":    limit,
		"offset":   offset,
	})
}

// StartReview берёт спор в рассмотрение.
// POST /api/admin/disputes/:id/review
func (h *DisputeHandler) StartReview(c *gin.Context) {
	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID спора")
		return
	}

	dispute, err := h.disputes.StartReview(c.Request.Context(), disputeID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// Resolve выносит решение по спору.
// POST /api/admin/disputes/:id/resolve
func (h *DisputeHandler) Resolve(c *gin.Context) {
	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID спора")
		return
	}

	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "неверный формат запроса: "+err.Error())
		return
	}

	dispute, err := h.disputes.Resolve(c.Request.Context(), disputeID, req.Outcome, req.ResolutionNote, adminID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// CompleteBackjob закрывает одобренный спор после переделки.
// POST /api/admin/disputes/:id/complete
func (h *DisputeHandler) CompleteBackjob(c *gin.Context) {
	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID спора")
		return
	}

	dispute, err := h.disputes.CompleteBackjob(c.Request.Context(), disputeID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}
