package http

import (
	"time"

	"github.com/ecop-onboarding/backend/internal/http/handlers"
	"github.com/ecop-onboarding/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SetupRouter wires the API surface. Routes live at the root to stay
// compatible with the frontend paths.
func SetupRouter(
	app *fiber.App,
	log *zap.Logger,
	rdb *redis.Client,
	verificationHandler *handlers.VerificationHandler,
	cashHandler *handlers.CashHandler,
	schemaHandler *handlers.SchemaHandler,
	complianceHandler *handlers.ComplianceHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Wallet-Address",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))
	app.Use(middleware.CallerMiddleware())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if rdb != nil {
		app.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))
	}

	// Verification requests
	app.Post("/verification", verificationHandler.Submit)
	app.Get("/verification", verificationHandler.List)
	app.Patch("/verification/:id", verificationHandler.UpdateStatus)

	// Cash requests
	app.Post("/cash", cashHandler.Submit)
	app.Get("/cash", cashHandler.List)
	app.Patch("/cash/:id", cashHandler.UpdateStatus)

	// Form schemas
	app.Get("/schemas/:actor", schemaHandler.Get)

	// Compliance NFT state
	app.Get("/compliance/:address", complianceHandler.Get)

	// WebSocket admin feed
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
