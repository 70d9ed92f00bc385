package ports

import (
	"context"

	"github.com/citysim/histmap/internal/core/domain"
)

// CityRepository persists cities.
type CityRepository interface {
	List(ctx context.Context) ([]domain.City, error)
	GetByID(ctx context.Context, id int64) (*domain.City, error)
	Create(ctx context.Context, name string) (*domain.City, error)
}

// SimulationRepository reads simulations and modes.
type SimulationRepository interface {
	List(ctx context.Context) ([]domain.Simulation, error)
	GetByID(ctx context.Context, id int64) (*domain.Simulation, error)
	GetByCityYearMode(ctx context.Context, cityID int64, year int, modeID int64) (*domain.Simulation, error)
	YearsByCity(ctx context.Context, cityID int64) ([]int, error)
	ListByCity(ctx context.Context, cityID int64) ([]domain.Simulation, error)
	ListModes(ctx context.Context) ([]domain.Mode, error)
	// ListByGeoObject returns the simulations an object appears in, ordered by year.
	ListByGeoObject(ctx context.Context, geoObjectID int64) ([]domain.Simulation, error)
}

// GeoObjectRepository reads and imports geo objects.
type GeoObjectRepository interface {
	// ListBySimulation returns the objects of a simulation, optionally
	// restricted to those intersecting bbox.
	ListBySimulation(ctx context.Context, simulationID int64, bbox *domain.BoundingBox) ([]domain.GeoObject, error)
	GetByID(ctx context.Context, id int64) (*domain.GeoObject, error)
	FindNearby(ctx context.Context, simulationID int64, point domain.GeoPoint, radiusKm float64, limit int) ([]domain.GeoObject, error)
	InsertForSimulation(ctx context.Context, simulationID int64, objects []domain.GeoObject) (int, error)
}
