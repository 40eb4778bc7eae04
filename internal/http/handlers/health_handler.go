package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler обслуживает проверку живости сервиса.
type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse — ответ проверки живости.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Check проверяет доступность зависимостей сервиса.
// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK
	overall := "ok"

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unavailable: " + err.Error()
		status = http.StatusServiceUnavailable
		overall = "degraded"
	} else {
		checks["database"] = "ok"
	}

	c.JSON(status, HealthResponse{
		Status:    overall,
		Timestamp: timeNow().UTC(),
		Checks:    checks,
	})
}
