package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/validator"

	_ "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/docs"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/handler"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/adapter/repository"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/cache"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/database"
	httpmw "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/http/middleware"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/storage"
	aiuse "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/ai"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/auth"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/billing"
	clientuse "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/client"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/maintenance"
	meetinguse "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/meeting"
	taskuse "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/task"
	webhookuse "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/webhook"
	pkgai "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/ai"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/jwt"
)

// @title           W1 Acompanhamento de Reuniões API
// @version         1.0
// @description     Backend de acompanhamento de clientes e reuniões para consultores W1: CRM, kanban de tarefas, resumos de reunião por IA e webhooks de saída assinados.

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize cache and dispatcher wakeup channel. Redis carries the
	// debounce keys and pub/sub wakeups; the in-memory store keeps a
	// single-node deployment working without it.
	var (
		store    cache.Store
		notifier cache.Notifier
	)
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		redisStore := cache.NewRedisStore(redisClient)
		store = redisStore
		notifier = redisStore
	} else {
		log.Println("⚠️  Redis disabled, using in-memory cache (single instance only)")
		store = cache.NewMemoryStore()
	}

	// Initialize object storage
	log.Println("🗄️  Connecting to object storage...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	clientRepo := repository.NewClientRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	planRepo := repository.NewPlanRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	jobRepo := repository.NewAnalysisJobRepository(db)
	webhookConfigRepo := repository.NewWebhookConfigRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	webhookLogRepo := repository.NewWebhookDeliveryLogRepository(db)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize services
	log.Println("✨ Initializing services...")
	authService := auth.NewService(userRepo, sessionRepo, store, jwtManager, logger)
	webhookService := webhookuse.NewService(
		webhookConfigRepo,
		webhookEventRepo,
		webhookLogRepo,
		store,
		notifier,
		&cfg.Webhook,
		logger,
	)
	billingService := billing.NewService(planRepo, subRepo, logger)
	clientService := clientuse.NewService(clientRepo, webhookService, logger)
	meetingService := meetinguse.NewService(meetingRepo, clientRepo, webhookService, logger)
	taskService := taskuse.NewService(taskRepo, webhookService, logger)

	// Initialize AI pipeline
	log.Println("🤖 Initializing AI components...")
	transcriber := pkgai.NewTranscriber(&cfg.Assembly)
	llmClient := pkgai.NewLLMClient(&cfg.LLM)
	aiService := aiuse.NewService(
		jobRepo,
		meetingRepo,
		taskRepo,
		billingService,
		webhookService,
		transcriber,
		llmClient,
		cfg,
		logger,
	)

	// Background machinery
	ctx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	log.Println("🪝 Starting webhook dispatcher...")
	dispatcher := webhookuse.NewDispatcher(
		webhookEventRepo,
		webhookConfigRepo,
		webhookLogRepo,
		notifier,
		&cfg.Webhook,
		logger,
	)
	if err := dispatcher.Start(ctx); err != nil {
		log.Fatalf("Failed to start webhook dispatcher: %v", err)
	}

	log.Println("🧠 Starting analysis worker pool...")
	if err := aiService.StartWorkerPool(ctx); err != nil {
		log.Fatalf("Failed to start analysis worker pool: %v", err)
	}

	log.Println("⏰ Starting maintenance cron...")
	maintenanceService := maintenance.NewService(
		webhookEventRepo,
		webhookLogRepo,
		sessionRepo,
		subRepo,
		planRepo,
		&cfg.Webhook,
		logger,
	)
	if err := maintenanceService.Start(ctx); err != nil {
		log.Fatalf("Failed to start maintenance cron: %v", err)
	}

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	authHandler := handler.NewAuthHandler(authService, billingService, cfg.Billing.DefaultPlanCode, logger)
	clientHandler := handler.NewClientHandler(clientService, logger)
	meetingHandler := handler.NewMeetingHandler(meetingService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)
	webhookHandler := handler.NewWebhookHandler(webhookService, logger)
	billingHandler := handler.NewBillingHandler(billingService, logger)
	aiHandler := handler.NewAIHandler(aiService, logger)
	storageHandler := handler.NewStorageHandler(minioClient, meetingService, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	authEchoMW := httpmw.EchoAuth(authService, logger)
	metricsHandler := echo.WrapHandler(promhttp.Handler())

	router := handler.NewRouter(
		cfg,
		authHandler,
		clientHandler,
		meetingHandler,
		taskHandler,
		webhookHandler,
		billingHandler,
		aiHandler,
		storageHandler,
		authEchoMW,
		metricsHandler,
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	// Stop background machinery after the HTTP surface is closed so
	// in-flight requests can still enqueue events.
	dispatcher.Stop()
	aiService.StopWorkerPool()
	maintenanceService.Stop()
	stopWorkers()

	log.Println("✅ Server stopped gracefully")
}
