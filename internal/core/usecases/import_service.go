package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/citysim/histmap/internal/core/domain"
	"github.com/citysim/histmap/internal/core/geojson"
	"github.com/citysim/histmap/internal/core/ports"
	"github.com/citysim/histmap/internal/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

// ImportService loads GeoJSON layers into simulations.
type ImportService struct {
	objects   ports.GeoObjectRepository
	sims      ports.SimulationRepository
	publisher ports.EventPublisher
}

// NewImportService creates a new ImportService. publisher may be nil.
func NewImportService(objects ports.GeoObjectRepository, sims ports.SimulationRepository, publisher ports.EventPublisher) *ImportService {
	return &ImportService{objects: objects, sims: sims, publisher: publisher}
}

// Import attaches the features of a GeoJSON FeatureCollection to a
// simulation and announces the update. It returns the number of objects stored.
func (s *ImportService) Import(ctx context.Context, simulationID int64, data []byte) (n int, err error) {
	ctx, span := startSpan(ctx, "ImportService.Import", attribute.Int64("simulation.id", simulationID))
	defer func() { endSpan(span, err) }()

	sim, err := s.sims.GetByID(ctx, simulationID)
	if err != nil {
		return 0, err
	}

	objects, err := geojson.DecodeObjects(data)
	if err != nil {
		metrics.ObjectsImported.WithLabelValues("rejected").Inc()
		return 0, err
	}

	n, err = s.objects.InsertForSimulation(ctx, simulationID, objects)
	if err != nil {
		metrics.ObjectsImported.WithLabelValues("failed").Add(float64(len(objects)))
		return 0, fmt.Errorf("insert objects for simulation %d: %w", simulationID, err)
	}
	metrics.ObjectsImported.WithLabelValues("stored").Add(float64(n))
	span.SetAttributes(attribute.Int("objects", n))

	if s.publisher != nil {
		event := &domain.SimulationUpdated{
			SimulationID: simulationID,
			CityID:       sim.CityID,
			Objects:      n,
			At:           time.Now().UTC(),
		}
		if err := s.publisher.PublishSimulationUpdated(ctx, event); err != nil {
			slog.Warn("publish simulation update", "simulation_id", simulationID, "error", err)
		}
	}
	return n, nil
}
