package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/citysim/histmap/internal/core/domain"
)

// SimulationLister lists the simulations of a city.
type SimulationLister interface {
	ByCity(ctx context.Context, cityID int64) ([]domain.Simulation, error)
}

// CollectionWarmer assembles, and thereby caches, a simulation's collection.
type CollectionWarmer interface {
	ForSimulation(ctx context.Context, simulationID int64, bbox *domain.BoundingBox) (*domain.FeatureCollection, error)
}

// WarmActivities holds the activity implementations for the warm-up workflow.
type WarmActivities struct {
	Simulations SimulationLister
	GeoObjects  CollectionWarmer
}

// ListCitySimulations returns the IDs of every simulation of a city.
func (a *WarmActivities) ListCitySimulations(ctx context.Context, cityID int64) ([]int64, error) {
	sims, err := a.Simulations.ByCity(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("list simulations of city %d: %w", cityID, err)
	}
	ids := make([]int64, len(sims))
	for i, s := range sims {
		ids[i] = s.ID
	}
	return ids, nil
}

// WarmSimulation assembles the unfiltered collection of a simulation and
// returns its feature count.
func (a *WarmActivities) WarmSimulation(ctx context.Context, simulationID int64) (int, error) {
	fc, err := a.GeoObjects.ForSimulation(ctx, simulationID, nil)
	if err != nil {
		return 0, fmt.Errorf("warm simulation %d: %w", simulationID, err)
	}
	n := len(fc.Features)
	slog.Debug("simulation warmed", "simulation_id", simulationID, "features", n)
	return n, nil
}
