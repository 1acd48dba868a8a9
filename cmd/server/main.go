package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"github.com/inflowhq/inflow-backend/internal/config"
	"github.com/inflowhq/inflow-backend/internal/database"
	"github.com/inflowhq/inflow-backend/internal/events"
	"github.com/inflowhq/inflow-backend/internal/handlers"
	"github.com/inflowhq/inflow-backend/internal/logging"
	"github.com/inflowhq/inflow-backend/internal/middleware"
	"github.com/inflowhq/inflow-backend/internal/routes"
	"github.com/inflowhq/inflow-backend/internal/services"
	"github.com/inflowhq/inflow-backend/internal/storage"
)

func main() {
	_ = godotenv.Load()

	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cleanupDone)

	// Realtime message events. With NATS configured, events fan out across
	// instances; without it the in-process hub covers a single node.
	hub := events.NewHub()
	var publisher events.Publisher = hub
	var natsPublisher *events.NatsPublisher
	var natsSubscriber *events.NatsSubscriber
	if cfg.NATSURL != "" {
		natsPublisher, err = events.NewNatsPublisher(cfg.NATSURL)
		if err != nil {
			slog.Error("nats connection failed", "url", cfg.NATSURL, "error", err)
			os.Exit(1)
		}
		publisher = natsPublisher

		natsSubscriber, err = events.NewNatsSubscriber(cfg.NATSURL, hub)
		if err != nil {
			slog.Error("nats subscribe failed", "url", cfg.NATSURL, "error", err)
			os.Exit(1)
		}
		slog.Info("nats connected", "url", cfg.NATSURL)
	}

	// Services
	authService := services.NewAuthService(db, cfg)
	profileService := services.NewProfileService(db)
	messageService := services.NewMessageService(db, publisher)
	dealService := services.NewDealService(db)
	walletService := services.NewWalletService(db)
	notificationService := services.NewNotificationService(db)

	// The hub marks messages delivered when a live recipient session
	// picks up the sent event.
	hub.SetDeliveryMarker(messageService)

	// Attachment presigner (optional)
	var presigner *storage.Presigner
	if cfg.S3Bucket != "" {
		presigner, err = storage.NewPresigner(cfg)
		if err != nil {
			slog.Error("s3 presigner init failed", "error", err)
			os.Exit(1)
		}
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, db, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Profile:      handlers.NewProfileHandler(profileService),
		Message:      handlers.NewMessageHandler(messageService, hub),
		Deal:         handlers.NewDealHandler(dealService),
		Wallet:       handlers.NewWalletHandler(walletService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Upload:       handlers.NewUploadHandler(presigner),
		Health:       handlers.NewHealthHandler(db),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	if natsSubscriber != nil {
		natsSubscriber.Close()
	}
	if natsPublisher != nil {
		natsPublisher.Close()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
