package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/config"
	"github.com/example/tribuna/internal/database"
	"github.com/example/tribuna/internal/logger"
	"github.com/example/tribuna/internal/metrics"
	"github.com/example/tribuna/internal/routes"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.Init(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	metrics.Register()
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "Tribuna Backend",
		ErrorHandler: apperr.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	routes.Register(app, db, cfg)

	zlog.Info("starting server", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		zlog.Fatal("fiber.Listen error", zap.Error(err))
	}
}
