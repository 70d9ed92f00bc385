package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/citysim/histmap/internal/adapters/postgres"
	"github.com/citysim/histmap/internal/adapters/valkey"
	"github.com/citysim/histmap/internal/core/usecases"
	"github.com/citysim/histmap/internal/pkg/config"
	"github.com/citysim/histmap/internal/pkg/logging"
	"github.com/citysim/histmap/internal/workflows"
)

const usage = "usage: warmer worker | warmer start <city_id>"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load("citysim-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	switch os.Args[1] {
	case "worker":
		if err := runWorker(c, cfg); err != nil {
			log.Fatalf("worker: %v", err)
		}
	case "start":
		if len(os.Args) < 3 {
			log.Fatal(usage)
		}
		cityID, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil || cityID <= 0 {
			log.Fatalf("invalid city id %q", os.Args[2])
		}
		if err := startWarmUp(c, cfg.Temporal.TaskQueue, cityID); err != nil {
			log.Fatalf("start: %v", err)
		}
	default:
		log.Fatal(usage)
	}
}

func runWorker(c client.Client, cfg *config.Config) error {
	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	// Warming without a cache has nothing to fill.
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		return fmt.Errorf("valkey: %w", err)
	}
	defer cache.Close()

	cityRepo := postgres.NewCityRepo(db)
	simRepo := postgres.NewSimulationRepo(db)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.WarmCityWorkflow)
	w.RegisterActivity(&workflows.WarmActivities{
		Simulations: usecases.NewSimulationService(simRepo, cityRepo, cache),
		GeoObjects:  usecases.NewGeoObjectService(postgres.NewGeoObjectRepo(db), simRepo, cache),
	})

	slog.Info("warm-up worker started", "task_queue", cfg.Temporal.TaskQueue)
	return w.Run(worker.InterruptCh())
}

func startWarmUp(c client.Client, taskQueue string, cityID int64) error {
	ctx := context.Background()
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("warm-city-%d", cityID),
		TaskQueue: taskQueue,
	}, workflows.WarmCityWorkflow, workflows.WarmCityInput{CityID: cityID})
	if err != nil {
		return fmt.Errorf("execute workflow: %w", err)
	}
	slog.Info("warm-up started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var result workflows.WarmCityResult
	if err := run.Get(ctx, &result); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	slog.Info("warm-up finished", "simulations", result.Simulations, "features", result.Features, "failed", result.Failed)
	return nil
}
