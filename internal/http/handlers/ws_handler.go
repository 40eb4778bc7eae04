package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/trabahoph/payments-backend/internal/http/handlers/common"
	"github.com/trabahoph/payments-backend/internal/logger"
	"github.com/trabahoph/payments-backend/internal/service"
	"github.com/trabahoph/payments-backend/internal/ws"
)

// WSHandler поднимает WebSocket подключения для событий платежей.
type WSHandler struct {
	hub            *ws.Hub
	tokens         *service.TokenManager
	allowedOrigins map[string]struct{}
	upgrader       websocket.Upgrader
}

func NewWSHandler(hub *ws.Hub, tokens *service.TokenManager, allowedOrigins []string) *WSHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = struct{}{}
	}

	h := &WSHandler{
		hub:            hub,
		tokens:         tokens,
		allowedOrigins: origins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Нативные клиенты (мобильное приложение) не шлют Origin.
				return true
			}
			_, ok := h.allowedOrigins[origin]
			return ok
		},
	}
	return h
}

// Connect апгрейдит соединение и подписывает пользователя на события
// его платежей. Браузерный WebSocket не умеет заголовки, поэтому токен
// передаётся query параметром.
// GET /api/ws?token=...
func (h *WSHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		common.RespondUnauthorized(c, "токен обязателен")
		return
	}

	userID, _, err := h.tokens.ParseAccess(token)
	if err != nil {
		common.RespondUnauthorized(c, "невалидный токен")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).Warn("ws: не удалось апгрейдить соединение")
		}
		return
	}

	client := ws.NewClient(conn, h.hub, userID)
	h.hub.Register(client)
	client.Run(c.Request.Context())
}
