package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	natsadapter "github.com/citysim/histmap/internal/adapters/nats"
	"github.com/citysim/histmap/internal/adapters/postgres"
	"github.com/citysim/histmap/internal/core/ports"
	"github.com/citysim/histmap/internal/core/usecases"
	"github.com/citysim/histmap/internal/pkg/config"
	"github.com/citysim/histmap/internal/pkg/logging"
)

// Manifest lists the GeoJSON layers to import.
type Manifest struct {
	Source string  `json:"source"`
	Layers []Layer `json:"layers"`
}

// Layer attaches the features of one GeoJSON file to a simulation.
// Relative file paths are resolved against the manifest's directory.
type Layer struct {
	SimulationID int64  `json:"simulation_id"`
	File         string `json:"file"`
}

func main() {
	cfg, err := config.Load("citysim-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	manifest, err := loadManifest(manifestPath)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}
	slog.Info("ingestion starting", "layers", len(manifest.Layers), "source", manifest.Source)

	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, updates will not be announced", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	svc := usecases.NewImportService(
		postgres.NewGeoObjectRepo(db),
		postgres.NewSimulationRepo(db),
		publisher,
	)

	base := filepath.Dir(manifestPath)
	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, 4) // max 4 concurrent imports
		imported atomic.Int64
		failed   atomic.Int64
	)

	for _, layer := range manifest.Layers {
		wg.Add(1)
		go func(l Layer) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			n, err := importLayer(ctx, svc, base, l)
			if err != nil {
				failed.Add(1)
				slog.Error("layer import failed", "simulation_id", l.SimulationID, "file", l.File, "error", err)
				return
			}
			imported.Add(int64(n))
			slog.Info("layer imported", "simulation_id", l.SimulationID, "file", l.File, "objects", n)
		}(layer)
	}

	wg.Wait()
	slog.Info("ingestion complete", "objects", imported.Load(), "failed_layers", failed.Load())
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, l := range m.Layers {
		if l.SimulationID <= 0 || l.File == "" {
			return nil, fmt.Errorf("layer %d: simulation_id and file are required", i)
		}
	}
	return &m, nil
}

func importLayer(ctx context.Context, svc *usecases.ImportService, base string, l Layer) (int, error) {
	path := l.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read layer: %w", err)
	}
	return svc.Import(ctx, l.SimulationID, data)
}
