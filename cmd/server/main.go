package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/testhub-backend/internal/config"
	"github.com/ignatzorin/testhub-backend/internal/db"
	httpHandlers "github.com/ignatzorin/testhub-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/testhub-backend/internal/http/router"
	"github.com/ignatzorin/testhub-backend/internal/logger"
	"github.com/ignatzorin/testhub-backend/internal/repository"
	"github.com/ignatzorin/testhub-backend/internal/service"
	"github.com/ignatzorin/testhub-backend/internal/storage"
	usecaserequest "github.com/ignatzorin/testhub-backend/internal/usecase/request"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	archiveStorage, err := storage.NewArchiveStorage(cfg.ArchiveStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	requestRepo := repository.NewRequestRepository(dbConn)
	bugReportRepo := repository.NewBugReportRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)
	tokenRepo := repository.NewTokenRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	archiveRepo := repository.NewArchiveRepository(dbConn)

	// Сервисы.
	catalogService := service.NewCatalogService(catalogRepo)
	if err := catalogService.Load(ctx); err != nil {
		log.Printf("main: справочник статусов не загружен, используем встроенный: %v", err)
	}
	tokenService := service.NewTokenService(tokenRepo)
	authService := service.NewAuthService(userRepo, tokenManager, tokenService, cfg.SignupTokens)
	bugReportService := service.NewBugReportService(bugReportRepo)
	activityService := service.NewActivityService(requestRepo, requestRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	// Use case-ы заявки.
	usecases := httpHandlers.RequestUseCases{
		Submit:         usecaserequest.NewSubmitRequestUseCase(requestRepo, tokenService),
		SetStatus:      usecaserequest.NewSetStatusUseCase(requestRepo),
		SendQuote:      usecaserequest.NewSendQuoteUseCase(requestRepo),
		AcceptQuote:    usecaserequest.NewAcceptQuoteUseCase(requestRepo),
		Claim:          usecaserequest.NewClaimRequestUseCase(requestRepo, catalogService),
		ReadyForReview: usecaserequest.NewMarkReadyForReviewUseCase(requestRepo),
		Complete:       usecaserequest.NewCompleteRequestUseCase(requestRepo),
		Cancel:         usecaserequest.NewCancelRequestUseCase(requestRepo),
	}

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService, userRepo)
	requestHandler := httpHandlers.NewRequestHandler(usecases, requestRepo, bugReportRepo, userRepo, catalogService, activityService, notificationService)
	bugReportHandler := httpHandlers.NewBugReportHandler(bugReportService, requestRepo, notificationService)
	catalogHandler := httpHandlers.NewCatalogHandler(catalogService)
	tokenHandler := httpHandlers.NewTokenHandler(tokenService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	archiveHandler := httpHandlers.NewArchiveHandler(archiveRepo, archiveStorage)
	statsHandler := httpHandlers.NewStatsHandler(requestRepo, bugReportRepo)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, requestHandler, bugReportHandler, catalogHandler, tokenHandler, notificationHandler, archiveHandler, statsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
