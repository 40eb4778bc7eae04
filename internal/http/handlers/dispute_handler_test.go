package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDisputeHandler_File_InvalidJobID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewDisputeHandler(nil)
	r.POST("/jobs/:id/disputes", handler.File)

	req, _ := http.NewRequest("POST", "/jobs/bad/disputes", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisputeHandler_File_ShortReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewDisputeHandler(nil)
	r.POST("/jobs/:id/disputes", handler.File)

	body := `{"requested_by":"client","reason":"коротко"}`
	req, _ := http.NewRequest("POST", "/jobs/"+uuid.NewString()+"/disputes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisputeHandler_File_UnknownParty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewDisputeHandler(nil)
	r.POST("/jobs/:id/disputes", handler.File)

	body := `{"requested_by":"platform","reason":"достаточно длинная причина спора"}`
	req, _ := http.NewRequest("POST", "/jobs/"+uuid.NewString()+"/disputes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisputeHandler_Resolve_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewDisputeHandler(nil)
	r.POST("/admin/disputes/:id/resolve", handler.Resolve)

	// Без AuthMiddleware userID отсутствует в контексте.
	req, _ := http.NewRequest("POST", "/admin/disputes/"+uuid.NewString()+"/resolve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDisputeHandler_Resolve_InvalidOutcome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewDisputeHandler(nil)
	r.POST("/admin/disputes/:id/resolve", func(c *gin.Context) {
		c.Set("userID", uuid.New())
		handler.Resolve(c)
	})

	body := `{"outcome":"maybe","resolution_note":"развёрнутое обоснование"}`
	req, _ := http.NewRequest("POST", "/admin/disputes/"+uuid.NewString()+"/resolve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEarningsHandler_GetWorkerEarnings_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewEarningsHandler(nil)
	r.GET("/earnings/:workerId", handler.GetWorkerEarnings)

	req, _ := http.NewRequest("GET", "/earnings/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsHandler_UpdateSettings_NonDecimalFee(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewSettingsHandler(nil)
	r.PUT("/admin/settings", handler.UpdateSettings)

	body := `{"platform_fee_percentage":"five","escrow_holding_days":7}`
	req, _ := http.NewRequest("PUT", "/admin/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
