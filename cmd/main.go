// @title Hotspot Viewer API
// @version 1.0
// @description Imports GLB models and manages hotspot annotations placed on them.
// @BasePath /api/viewer
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	_ "hotspot-service/docs"
	"hotspot-service/internal/config"
	"hotspot-service/internal/handlers"
	"hotspot-service/internal/logging"
	"hotspot-service/internal/metrics"
	"hotspot-service/internal/repository"
	"hotspot-service/internal/services"
	"hotspot-service/internal/session"
	"hotspot-service/internal/storage"
	"hotspot-service/internal/workflow"
)

func main() {
	cfg := InitConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := ConnectDatabase(cfg, logger)
	modelRepo := repository.NewModelRepository(db)
	if err := modelRepo.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("Database migration failed")
	}
	blobs := InitBlobStore(ctx, cfg, logger)

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	ctrl := session.NewController(workflow.New(nil), cfg.SessionQueueSize, logger, m)
	go ctrl.Run(ctx)

	modelService := services.NewModelService(modelRepo, blobs, ctrl, cfg.MaxUploadBytes, m, logger)
	sessionService := services.NewSessionService(ctrl)

	app := fiber.New(fiber.Config{
		AppName:               "hotspot-service",
		BodyLimit:             int(cfg.MaxUploadBytes) + 1<<20,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})
	app.Use(handlers.RequestLogger(logger))

	// Register Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/viewer")
	handlers.Register(api,
		handlers.NewModelHandler(modelService, m, logger),
		handlers.NewSessionHandler(sessionService, cfg.SubscriberBuffer, logger),
		handlers.NewHotspotHandler(sessionService, logger))
	api.Get("/swagger/*", swagger.HandlerDefault)

	for _, r := range app.GetRoutes(true) {
		logger.Debug().Str("method", r.Method).Str("path", r.Path).Msg("Registered route")
	}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Shutting down")
		ctrl.Close()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	logger.Info().
		Str("port", cfg.AppPort).
		Str("db", cfg.DBDriver).
		Str("blob", blobs.Name()).
		Msg("Server listening")
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		// The logger is configured from cfg, so fall back to the defaults here.
		logging.New("", "").Fatal().Err(err).Msg("Config error")
	}
	return cfg
}

func ConnectDatabase(cfg *config.Config, logger zerolog.Logger) *gorm.DB {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Database connection failed")
	}
	return db
}

func InitBlobStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) storage.BlobStore {
	blobs, err := storage.OpenBlobStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.BlobBackend).Msg("Blob store initialization failed")
	}
	return blobs
}
