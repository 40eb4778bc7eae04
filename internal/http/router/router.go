// Package router собирает HTTP маршруты сервиса платежей.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/trabahoph/payments-backend/internal/config"
	"github.com/trabahoph/payments-backend/internal/http/handlers"
	"github.com/trabahoph/payments-backend/internal/http/middleware"
	"github.com/trabahoph/payments-backend/internal/service"
)

// Deps — зависимости маршрутов.
type Deps struct {
	Config   *config.Config
	Tokens   *service.TokenManager
	Payments *handlers.PaymentHandler
	Disputes *handlers.DisputeHandler
	Earnings *handlers.EarningsHandler
	Settings *handlers.SettingsHandler
	Health   *handlers.HealthHandler
	WS       *handlers.WSHandler
}

// New создаёт gin.Engine со всеми маршрутами и middleware.
func New(deps Deps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(deps.Config.RateLimitLimit, deps.Config.RateLimitPeriod))

	r.GET("/health", deps.Health.Check)

	api := r.Group("/api")

	// WebSocket авторизуется токеном в query, без общего middleware.
	api.GET("/ws", deps.WS.Connect)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		jobs := authed.Group("/jobs/:id", middleware.UUIDValidator("id"))
		{
			jobs.POST("/escrow", middleware.RequireRole(middleware.RoleService, middleware.RoleAdmin), deps.Payments.OpenEscrow)
			jobs.GET("/payments", deps.Payments.ListJobPayments)
			jobs.GET("/receipt", deps.Payments.GetReceipt)
			jobs.GET("/buffer", deps.Earnings.GetJobBuffer)
			jobs.POST("/disputes", deps.Disputes.File)
			jobs.GET("/disputes", deps.Disputes.ListJobDisputes)
		}

		payments := authed.Group("/payments/:id", middleware.UUIDValidator("id"))
		{
			payments.POST("/transition", middleware.RequireRole(middleware.RoleService, middleware.RoleAdmin), deps.Payments.Transition)
			payments.GET("", deps.Payments.GetPayment)
			payments.GET("/status", deps.Payments.GetStatus)
		}

		authed.GET("/disputes/:id", middleware.UUIDValidator("id"), deps.Disputes.GetDispute)
		authed.GET("/earnings/:workerId", middleware.UUIDValidator("workerId"), deps.Earnings.GetWorkerEarnings)

		admin := authed.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
		{
			admin.GET("/settings", deps.Settings.GetSettings)
			admin.PUT("/settings", deps.Settings.UpdateSettings)

			admin.GET("/disputes", deps.Disputes.ListDisputes)
			adminDispute := admin.Group("/disputes/:id", middleware.UUIDValidator("id"))
			{
				adminDispute.POST("/review", deps.Disputes.StartReview)
				adminDispute.POST("/resolve", deps.Disputes.Resolve)
				adminDispute.POST("/complete", deps.Disputes.CompleteBackjob)
			}

			admin.POST("/buffers/release-due", deps.Earnings.ReleaseDue)
		}
	}

	return r
}
