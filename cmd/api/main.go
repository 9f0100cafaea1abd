package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecop-onboarding/backend/internal/auth"
	"github.com/ecop-onboarding/backend/internal/compliance"
	"github.com/ecop-onboarding/backend/internal/config"
	"github.com/ecop-onboarding/backend/internal/db"
	"github.com/ecop-onboarding/backend/internal/events"
	apphttp "github.com/ecop-onboarding/backend/internal/http"
	"github.com/ecop-onboarding/backend/internal/http/handlers"
	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/ecop-onboarding/backend/internal/repositories"
	"github.com/ecop-onboarding/backend/internal/schema"
	"github.com/ecop-onboarding/backend/internal/services"
	"github.com/ecop-onboarding/backend/migrations"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	verificationRepo := repositories.NewVerificationRepo(pool)
	cashRepo := repositories.NewCashRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Admin gate
	var gate auth.Gate
	switch cfg.AdminAuthMode {
	case config.AuthModeToken:
		gate = auth.NewTokenGate(cfg.AdminTokenSecret, cfg.AdminAddress)
	default:
		gate = auth.NewStaticAddressGate(cfg.AdminAddress)
	}

	// Services
	notifier := services.NewTelegramNotifier(cfg.TelegramAPIBase, cfg.TelegramBotToken, cfg.TelegramChatID, log)
	requestService := services.NewRequestService(
		userRepo, verificationRepo, cashRepo, auditRepo,
		notifier, publisher, gate,
		models.TransitionPolicy(cfg.TransitionPolicy), "ECOP", log,
	)

	// Form schemas
	loader := schema.NewCSVLoader(os.DirFS(cfg.SchemaDir))

	// Compliance oracle
	var oracle compliance.Oracle
	if cfg.EthRPCURL != "" && cfg.ComplianceNFTAddress != "" {
		oracle = compliance.NewNFTOracle(cfg.EthRPCURL, cfg.ComplianceNFTAddress, log)
	}

	// Handlers
	verificationHandler := handlers.NewVerificationHandler(requestService, log)
	cashHandler := handlers.NewCashHandler(requestService, log)
	schemaHandler := handlers.NewSchemaHandler(loader, log)
	complianceHandler := handlers.NewComplianceHandler(oracle, log)
	wsHub := handlers.NewWSHub(gate, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, log, rdb, verificationHandler, cashHandler, schemaHandler, complianceHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
