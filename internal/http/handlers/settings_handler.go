package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/trabahoph/payments-backend/internal/dto"
	"github.com/trabahoph/payments-backend/internal/http/handlers/common"
	"github.com/trabahoph/payments-backend/internal/service"
)

// SettingsHandler обслуживает настройки платформы в админ-панели.
type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetSettings возвращает текущие настройки платформы.
// GET /api/admin/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Current(c.Request.Context())
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings меняет процент комиссии и окно удержания.
// Новые значения действуют только на будущие платежи: уже открытые
// части и запланированные удержания хранят свои ставки и даты.
// PUT /api/admin/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "неверный формат запроса: "+err.Error())
		return
	}

	feePercentage, err := decimal.NewFromString(req.PlatformFeePercentage)
	if err != nil {
		common.RespondBadRequest(c, "процент комиссии должен быть десятичным числом")
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), feePercentage, req.EscrowHoldingDays)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
