package ws

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/trabahoph/payments-backend/internal/models"
)

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		got := len(hub.clients)
		hub.mu.RUnlock()
		if got == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("клиенты не зарегистрировались: ожидали %d", want)
}

func TestHub_PublishStatusChange_ReachesBothParties(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	clientID := uuid.New()
	workerID := uuid.New()
	clientConn := NewClient(nil, hub, clientID)
	workerConn := NewClient(nil, hub, workerID)
	hub.Register(clientConn)
	hub.Register(workerConn)
	waitForClients(t, hub, 2)

	payment := &models.JobPayment{
		ID:       uuid.New(),
		JobID:    uuid.New(),
		ClientID: clientID,
		WorkerID: workerID,
		Leg:      models.PaymentLegFinal,
		Status:   models.PaymentStatusCompleted,
	}
	hub.PublishStatusChange(payment)

	// Событие получают обе стороны работы.
	for _, conn := range []*Client{clientConn, workerConn} {
		select {
		case payload := <-conn.send:
			assert.Contains(t, string(payload), "payment.status_changed")
			assert.Contains(t, string(payload), payment.ID.String())
			assert.Contains(t, string(payload), `"terminal":true`)
		case <-time.After(time.Second):
			t.Fatal("событие не дошло до подключения")
		}
	}
}

func TestHub_Run_StopsOnContextCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub не остановился по отмене контекста")
	}
}

func TestHub_UnregisterRemovesClient(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	userID := uuid.New()
	conn := NewClient(nil, hub, userID)
	hub.Register(conn)
	waitForClients(t, hub, 1)

	hub.Unregister(conn)
	waitForClients(t, hub, 0)
}
