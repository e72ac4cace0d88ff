package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/testhub-backend/internal/config"
	"github.com/ignatzorin/testhub-backend/internal/http/handlers"
	"github.com/ignatzorin/testhub-backend/internal/http/middleware"
	"github.com/ignatzorin/testhub-backend/internal/models"
	"github.com/ignatzorin/testhub-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	requestHandler *handlers.RequestHandler,
	bugReportHandler *handlers.BugReportHandler,
	catalogHandler *handlers.CatalogHandler,
	tokenHandler *handlers.TokenHandler,
	notificationHandler *handlers.NotificationHandler,
	archiveHandler *handlers.ArchiveHandler,
	statsHandler *handlers.StatsHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Каталог (публичный)
	api.GET("/catalog/statuses", catalogHandler.ListStatuses)
	api.GET("/catalog/testing-types", catalogHandler.ListTestingTypes)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", authHandler.Me)

		// Заявки на тестирование
		protected.POST("/requests", middleware.RequireRole(models.RoleCustomer, models.RoleAdmin), requestHandler.CreateRequest)
		protected.GET("/requests", requestHandler.ListRequests)
		protected.GET("/requests/:id", middleware.UUIDValidator("id"), requestHandler.GetRequest)
		protected.PATCH("/requests/:id/status", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleTester, models.RoleAdmin), requestHandler.SetStatus)
		protected.POST("/requests/:id/cancel", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleCustomer, models.RoleAdmin), requestHandler.CancelRequest)
		protected.POST("/requests/:id/complete", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleCustomer, models.RoleAdmin), requestHandler.CompleteRequest)

		// Квоты
		protected.POST("/requests/:id/quote", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleTester, models.RoleAdmin), requestHandler.SendQuote)
		protected.POST("/requests/:id/quote/accept", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleCustomer), requestHandler.AcceptQuote)

		// Работа тестировщика
		protected.POST("/requests/:id/claim", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleTester), requestHandler.ClaimRequest)
		protected.POST("/requests/:id/ready-for-review", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleTester), requestHandler.MarkReadyForReview)

		// Журналы заявки
		protected.POST("/requests/:id/updates", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleTester, models.RoleAdmin), requestHandler.CreateUpdate)
		protected.GET("/requests/:id/updates", middleware.UUIDValidator("id"), requestHandler.ListUpdates)
		protected.POST("/requests/:id/logs", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleTester, models.RoleAdmin), requestHandler.CreateTestLog)
		protected.GET("/requests/:id/logs", middleware.UUIDValidator("id"), requestHandler.ListTestLogs)

		// Баг-репорты
		protected.POST("/requests/:id/bugs", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleTester, models.RoleAdmin), bugReportHandler.CreateBugReport)
		protected.GET("/requests/:id/bugs", middleware.UUIDValidator("id"), bugReportHandler.ListBugReports)
		protected.GET("/bugs/:id", middleware.UUIDValidator("id"), bugReportHandler.GetBugReport)
		protected.PATCH("/bugs/:id/status", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleTester, models.RoleAdmin), bugReportHandler.UpdateBugStatus)
		protected.POST("/bugs/:id/comments", middleware.UUIDValidator("id"), bugReportHandler.AddBugComment)

		// Токены
		protected.GET("/tokens/balance", tokenHandler.GetBalance)
		protected.POST("/tokens/deposit", tokenHandler.Deposit)
		protected.GET("/tokens/transactions", tokenHandler.ListTransactions)

		// Уведомления
		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)

		// Архивы со сборками
		protected.POST("/archives", archiveHandler.UploadArchive)
		protected.GET("/archives/:id", middleware.UUIDValidator("id"), archiveHandler.DownloadArchive)

		// Статистика
		protected.GET("/stats/dashboard", statsHandler.GetDashboardStats)
	}

	return r
}
