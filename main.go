package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"perfume-bot/config"
	"perfume-bot/handlers"
	"perfume-bot/services"
	"perfume-bot/webhooks"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	// Initialize structured logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	// Load configuration (aborts on missing essentials)
	cfg := config.LoadConfig()

	// Session storage: MongoDB when configured, in-process otherwise
	var store services.SessionStore = services.NewMemoryStore()
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			slog.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		if err := client.Ping(ctx, nil); err != nil {
			slog.Error("Failed to ping MongoDB", "error", err)
			os.Exit(1)
		}
		defer client.Disconnect(context.Background())

		store = services.NewMongoStore(client.Database(cfg.DatabaseName))
		slog.Info("Using MongoDB session store", "database", cfg.DatabaseName)
	} else {
		slog.Info("Using in-memory session store")
	}

	sessions := services.NewSessionManager(store)

	// Catalog: initial load plus scheduled refreshes
	catalog := services.NewCatalog()
	source := services.NewSheetSource(map[string]string{
		"original": cfg.OriginalSheetURL,
		"spilled":  cfg.SpilledSheetURL,
	})
	refresher := services.NewRefresher(source, catalog)

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	refresher.Start(schedulerCtx, cfg.RefreshInterval, cfg.MaintenanceInterval)

	// Collaborators
	assistant := services.NewAssistant(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	transport := services.NewGreenAPI(cfg.GreenAPIInstanceID, cfg.GreenAPIToken)

	router := services.NewRouter(catalog, sessions, assistant, services.DefaultRouterConfig(cfg.GuardPhrases))
	bot := handlers.NewBot(router, sessions, transport, cfg.ManagerWAID)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("Request error", "error", err, "status", code)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path}\n",
	}))

	webhooks.RegisterRoutes(app, bot)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "perfume-bot",
		})
	})

	slog.Info("Server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
