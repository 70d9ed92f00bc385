package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/citysim/histmap/internal/adapters/http"
	natsadapter "github.com/citysim/histmap/internal/adapters/nats"
	"github.com/citysim/histmap/internal/adapters/postgres"
	"github.com/citysim/histmap/internal/adapters/valkey"
	"github.com/citysim/histmap/internal/core/domain"
	"github.com/citysim/histmap/internal/core/ports"
	"github.com/citysim/histmap/internal/core/usecases"
	"github.com/citysim/histmap/internal/pkg/config"
	"github.com/citysim/histmap/internal/pkg/logging"
	"github.com/citysim/histmap/internal/pkg/metrics"
	"github.com/citysim/histmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("citysim-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Repos
	cityRepo := postgres.NewCityRepo(db)
	simRepo := postgres.NewSimulationRepo(db)
	geoRepo := postgres.NewGeoObjectRepo(db)

	// Use cases
	citySvc := usecases.NewCityService(cityRepo)
	simSvc := usecases.NewSimulationService(simRepo, cityRepo, cacheSvc)
	geoSvc := usecases.NewGeoObjectService(geoRepo, simRepo, cacheSvc)

	// Cache invalidation on imports
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "citysim-api-invalidate")
	if err != nil {
		slog.Warn("nats subscriber unavailable, cached collections expire by TTL only", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribeSimulationUpdated(ctx, func(ctx context.Context, event *domain.SimulationUpdated) error {
			slog.Info("simulation updated", "simulation_id", event.SimulationID, "objects", event.Objects)
			return geoSvc.Invalidate(ctx, event)
		})
		if err != nil {
			slog.Warn("subscribe simulation updates", "error", err)
		}
	}

	go poolMetricsLoop(ctx, db)

	deps := &http.Dependencies{
		Cities:      citySvc,
		Simulations: simSvc,
		GeoObjects:  geoSvc,
		NATS:        natsConn,
		DB:          db,
		Cache:       cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024,
		AppName:      "Historical City Simulation API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func poolMetricsLoop(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
