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

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/hoangnam-dev/persona-interview/pkg/validator"

	"github.com/hoangnam-dev/persona-interview/internal/adapter/handler"
	"github.com/hoangnam-dev/persona-interview/internal/adapter/repository"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/cache"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/database"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/external/advisory"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/external/realtime"
	sessionUsecase "github.com/hoangnam-dev/persona-interview/internal/usecase/session"
	"github.com/hoangnam-dev/persona-interview/pkg/config"
	"github.com/hoangnam-dev/persona-interview/pkg/token"
)

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
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
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

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize replay guard, with an in-memory fallback when Redis is
	// unreachable so a cache outage never blocks interviews
	log.Println("📦 Connecting to Redis...")
	var guard cache.ReplayGuard
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Printf("⚠️  Redis unavailable, webhook dedup falls back to in-process memory: %v", err)
		guard = cache.NewMemoryReplayGuard(cfg.Session.DedupWindow)
	} else {
		defer redisClient.Close()
		guard = cache.NewRedisReplayGuard(redisClient, cfg.Session.DedupWindow)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	projectRepo := repository.NewProjectRepository(db)
	personaRepo := repository.NewPersonaRepository(db)
	sessionRepo := repository.NewInterviewSessionRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Initialize realtime voice transport
	log.Println("🎙️  Initializing realtime transport...")
	var transport realtime.Transport
	if cfg.Realtime.UseMock {
		log.Println("⚠️  Realtime transport running in MOCK mode (no provider needed)")
		transport = realtime.NewMockTransport()
	} else {
		log.Printf("✅ Realtime transport target: %s", cfg.Realtime.URL)
		transport = realtime.NewClient(cfg, logger)
	}

	// Initialize credential minter
	log.Println("🔑 Initializing credential minter...")
	minter := token.NewMinter(cfg.Realtime.APIKey, cfg.Realtime.APISecret, cfg.Realtime.CredentialTTL)

	// Initialize coaching advisory client
	log.Println("🧭 Initializing advisory client...")
	advisor := advisory.NewClient(&cfg.Advisory)
	if !advisor.Available() {
		log.Println("⚠️  Advisory service not configured, coaching falls back to heuristics")
	}

	// Initialize session manager
	log.Println("🎛️  Initializing session manager...")
	manager := sessionUsecase.NewManager(
		sessionRepo,
		personaRepo,
		projectRepo,
		reportRepo,
		transport,
		minter,
		guard,
		advisor,
		cfg.Session,
		logger,
	)

	// Initialize handlers
	log.Println("🚪 Initializing handlers...")
	projectHandler := handler.NewProjectHandler(projectRepo, logger)
	personaHandler := handler.NewPersonaHandler(personaRepo, projectRepo, logger)
	interviewHandler := handler.NewInterviewHandler(sessionRepo, personaRepo, manager, logger)
	webhookHandler := handler.NewWebhookHandler(manager, cfg.Webhook.Secret, logger)
	log.Println("✅ Handlers initialized successfully")

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, projectHandler, personaHandler, interviewHandler, webhookHandler)
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Stop live sessions first so reports are persisted before the
	// process exits
	manager.Shutdown(ctx)

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
