package scheduler

import (
	"context"
	"time"

	"github.com/trabahoph/payments-backend/internal/goroutine"
	"github.com/trabahoph/payments-backend/internal/logger"
)

// BufferReleaser освобождает все готовые удержания и возвращает их количество.
type BufferReleaser interface {
	ReleaseDue(ctx context.Context) (int, error)
}

// BufferScheduler досоздаёт удержания по завершённым работам, у которых
// записи об удержании нет.
type BufferScheduler interface {
	ScheduleMissingBuffers(ctx context.Context) (int, error)
}

// ReleaseWorker — единственный периодический процесс, который освобождает
// выплаты. Освобождение по запросу пользователя не предусмотрено:
// так исключаются дублирующиеся попытки.
type ReleaseWorker struct {
	buffers  BufferReleaser
	payments BufferScheduler
	interval time.Duration
}

func NewReleaseWorker(buffers BufferReleaser, payments BufferScheduler, interval time.Duration) *ReleaseWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReleaseWorker{buffers: buffers, payments: payments, interval: interval}
}

// Start запускает цикл воркера в фоновой горутине.
// Останавливается по отмене контекста.
func (w *ReleaseWorker) Start(ctx context.Context) {
	goroutine.SafeGoWithContext(ctx, w.run)
}

func (w *ReleaseWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Первый проход сразу при старте: после рестарта сервиса могли
	// накопиться просроченные удержания.
	w.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

func (w *ReleaseWorker) pass(ctx context.Context) {
	// Сначала досоздаём недостающие удержания, затем освобождаем готовые:
	// работа, оставшаяся без удержания из-за сбоя, возвращается в цикл.
	scheduled, err := w.payments.ScheduleMissingBuffers(ctx)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).Error("release worker: не удалось досоздать удержания")
		}
	} else if scheduled > 0 && logger.Log != nil {
		logger.Log.WithField("scheduled", scheduled).Info("release worker: удержания досозданы")
	}

	released, err := w.buffers.ReleaseDue(ctx)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).Error("release worker: проход завершился с ошибкой")
		}
		return
	}
	if released > 0 && logger.Log != nil {
		logger.Log.WithField("released", released).Info("release worker: выплаты освобождены")
	}
}
