package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/trabahoph/payments-backend/internal/dto"
	"github.com/trabahoph/payments-backend/internal/http/handlers/common"
	"github.com/trabahoph/payments-backend/internal/models"
	"github.com/trabahoph/payments-backend/internal/service"
)

// PaymentHandler обслуживает платёжные маршруты.
type PaymentHandler struct {
	payments            *service.PaymentService
	pollIntervalSeconds int
}

func NewPaymentHandler(payments *service.PaymentService, pollIntervalSeconds int) *PaymentHandler {
	if pollIntervalSeconds <= 0 {
		pollIntervalSeconds = 5
	}
	return &PaymentHandler{
		payments:            payments,
		pollIntervalSeconds: pollIntervalSeconds,
	}
}

// OpenEscrow открывает обе части платежа по принятой работе.
// POST /api/jobs/:id/escrow
func (h *PaymentHandler) OpenEscrow(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID работы")
		return
	}

	var req dto.OpenEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "неверный формат запроса: "+err.Error())
		return
	}

	clientID, err := parseUUIDField(req.ClientID)
	if err != nil {
		common.RespondBadRequest(c, "неверный client_id")
		return
	}
	workerID, err := parseUUIDField(req.WorkerID)
	if err != nil {
		common.RespondBadRequest(c, "неверный worker_id")
		return
	}

	budget, err := decimal.NewFromString(req.Budget)
	if err != nil {
		common.RespondBadRequest(c, "бюджет должен быть десятичным числом")
		return
	}

	legs, err := h.payments.OpenEscrow(c.Request.Context(), jobID, clientID, workerID, budget, req.PaymentMethod)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{
		Message: "платежи по работе созданы",
		Data:    legs,
	})
}

// Transition применяет переход статуса платежа.
// POST /api/payments/:id/transition
func (h *PaymentHandler) Transition(c *gin.Context) {
	paymentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID платежа")
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "неверный формат запроса: "+err.Error())
		return
	}

	payment, err := h.payments.Transition(c.Request.Context(), paymentID, req.Status, req.TransactionID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// GetPayment возвращает платёж по идентификатору.
// GET /api/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID платежа")
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// GetStatus — лёгкий ответ для экрана ожидания оплаты. Клиент опрашивает
// его раз в poll_interval_seconds, пока статус не станет конечным.
// GET /api/payments/:id/status
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	paymentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID платежа")
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	meta := models.PaymentStatusMeta[payment.Status]
	c.JSON(http.StatusOK, dto.PaymentStatusResponse{
		PaymentID:           payment.ID.String(),
		Status:              payment.Status,
		StatusMeta:          meta,
		Terminal:            models.IsTerminalPaymentStatus(payment.Status),
		PollIntervalSeconds: h.pollIntervalSeconds,
	})
}

// ListJobPayments возвращает обе части платежа работы.
// GET /api/jobs/:id/payments
func (h *PaymentHandler) ListJobPayments(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID работы")
		return
	}

	legs, err := h.payments.ListJobPayments(c.Request.Context(), jobID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": legs})
}

// GetReceipt возвращает чек по работе.
// GET /api/jobs/:id/receipt
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный ID работы")
		return
	}

	receipt, err := h.payments.GetReceipt(c.Request.Context(), jobID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}
