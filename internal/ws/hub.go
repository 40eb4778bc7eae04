package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/trabahoph/payments-backend/internal/logger"
	"github.com/trabahoph/payments-backend/internal/models"
)

// Hub управляет WebSocket подключениями и рассылает события платежей.
// Подписка идёт по userID: клиент и исполнитель работы получают события
// своих платежей без опроса.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
}

type message struct {
	userID  uuid.UUID
	payload []byte
}

// statusChangedEvent — контракт события для клиентов: "type" содержит
// имя события, "data" — полезную нагрузку.
type statusChangedEvent struct {
	Type string            `json:"type"`
	Data statusChangedData `json:"data"`
}

type statusChangedData struct {
	PaymentID string            `json:"payment_id"`
	JobID     string            `json:"job_id"`
	Leg       string            `json:"leg"`
	Status    string            `json:"status"`
	Meta      models.StatusMeta `json:"status_meta"`
	Terminal  bool              `json:"terminal"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
	}
}

// Run запускает главный цикл хаба. Останавливается по отмене контекста.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// PublishStatusChange рассылает событие смены статуса платежа обеим
// сторонам работы. Реализует service.PaymentEventPublisher.
func (h *Hub) PublishStatusChange(payment *models.JobPayment) {
	event := statusChangedEvent{
		Type: "payment.status_changed",
		Data: statusChangedData{
			PaymentID: payment.ID.String(),
			JobID:     payment.JobID.String(),
			Leg:       payment.Leg,
			Status:    payment.Status,
			Meta:      models.PaymentStatusMeta[payment.Status],
			Terminal:  models.IsTerminalPaymentStatus(payment.Status),
		},
	}

	raw, err := json.Marshal(event)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).Error("ws: не удалось сериализовать событие")
		}
		return
	}

	h.broadcast <- message{userID: payment.ClientID, payload: raw}
	h.broadcast <- message{userID: payment.WorkerID, payload: raw}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// Медленный клиент: закрываем соединение, не блокируя рассылку.
			go client.Close()
		}
	}
}
