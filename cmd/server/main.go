package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trabahoph/payments-backend/internal/config"
	"github.com/trabahoph/payments-backend/internal/db"
	"github.com/trabahoph/payments-backend/internal/goroutine"
	"github.com/trabahoph/payments-backend/internal/http/handlers"
	"github.com/trabahoph/payments-backend/internal/http/router"
	"github.com/trabahoph/payments-backend/internal/logger"
	"github.com/trabahoph/payments-backend/internal/repository"
	"github.com/trabahoph/payments-backend/internal/scheduler"
	"github.com/trabahoph/payments-backend/internal/service"
	"github.com/trabahoph/payments-backend/internal/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init("info")
	if cfg.Env != "production" {
		logger.SetTextFormatter()
	}
	log := logger.Log

	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("не удалось подключиться к базе данных")
	}
	defer safeClose(conn.Close)

	if err := db.RunMigrations(ctx, conn, cfg.MigrationsPath); err != nil {
		log.WithError(err).Fatal("не удалось выполнить миграции")
	}

	// Репозитории
	paymentRepo := repository.NewPaymentRepository(conn)
	bufferRepo := repository.NewBufferRepository(conn)
	disputeRepo := repository.NewDisputeRepository(conn)
	settingsRepo := repository.NewSettingsRepository(conn)

	if err := settingsRepo.EnsureDefaults(ctx, decimal.NewFromInt(cfg.DefaultFeePercent), int(cfg.DefaultHoldingDays)); err != nil {
		log.WithError(err).Fatal("не удалось заполнить настройки платформы")
	}

	// Сервисы
	cache := service.NewCacheService()
	settingsService := service.NewSettingsService(settingsRepo, cache)
	bufferService := service.NewBufferService(bufferRepo, disputeRepo, settingsService)
	paymentService := service.NewPaymentService(paymentRepo, settingsService, bufferService)
	disputeService := service.NewDisputeService(disputeRepo, paymentRepo)
	tokens := service.NewTokenManager(cfg.JWTSecret)

	// WebSocket хаб для событий смены статуса.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)
	paymentService.SetEventPublisher(hub)

	// Фоновое освобождение выплат после окна защиты от backjob.
	if cfg.ReleaseWorkerEnabled {
		worker := scheduler.NewReleaseWorker(bufferService, paymentService, cfg.ReleaseWorkerInterval)
		worker.Start(ctx)
	}

	engine := router.New(router.Deps{
		Config:   cfg,
		Tokens:   tokens,
		Payments: handlers.NewPaymentHandler(paymentService, int(cfg.StatusPollInterval.Seconds())),
		Disputes: handlers.NewDisputeHandler(disputeService),
		Earnings: handlers.NewEarningsHandler(bufferService),
		Settings: handlers.NewSettingsHandler(settingsService),
		Health:   handlers.NewHealthHandler(conn),
		WS:       handlers.NewWSHandler(hub, tokens, cfg.AllowedOrigins),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	goroutine.SafeGo(func() {
		log.WithField("port", cfg.HTTPPort).Info("сервис платежей запущен")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("сервер остановился с ошибкой")
		}
	})

	<-ctx.Done()
	log.Info("получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("не удалось корректно остановить сервер")
	}
}

// safeClose закрывает ресурс, логируя ошибку вместо её потери.
func safeClose(closeFn func() error) {
	if err := closeFn(); err != nil && logger.Log != nil {
		logger.Log.WithError(err).Warn("ошибка при закрытии ресурса")
	}
}
