package http_test

import (
	"context"

	"github.com/citysim/histmap/internal/core/domain"
)

// ---- Mock repositories ----

type mockCityRepo struct {
	listFn    func(ctx context.Context) ([]domain.City, error)
	getByIDFn func(ctx context.Context, id int64) (*domain.City, error)
}

func (m *mockCityRepo) List(ctx context.Context) ([]domain.City, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockCityRepo) GetByID(ctx context.Context, id int64) (*domain.City, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockCityRepo) Create(ctx context.Context, name string) (*domain.City, error) {
	return &domain.City{ID: 42, Name: name}, nil
}

type mockSimRepo struct {
	listFn            func(ctx context.Context) ([]domain.Simulation, error)
	getByIDFn         func(ctx context.Context, id int64) (*domain.Simulation, error)
	yearsByCityFn     func(ctx context.Context, cityID int64) ([]int, error)
	listByCityFn      func(ctx context.Context, cityID int64) ([]domain.Simulation, error)
	listByGeoObjectFn func(ctx context.Context, id int64) ([]domain.Simulation, error)
}

func (m *mockSimRepo) List(ctx context.Context) ([]domain.Simulation, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockSimRepo) GetByID(ctx context.Context, id int64) (*domain.Simulation, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockSimRepo) GetByCityYearMode(ctx context.Context, cityID int64, year int, modeID int64) (*domain.Simulation, error) {
	return &domain.Simulation{ID: 3, CityID: cityID, Year: year, ModeID: modeID}, nil
}
func (m *mockSimRepo) YearsByCity(ctx context.Context, cityID int64) ([]int, error) {
	if m.yearsByCityFn != nil {
		return m.yearsByCityFn(ctx, cityID)
	}
	return nil, nil
}
func (m *mockSimRepo) ListByCity(ctx context.Context, cityID int64) ([]domain.Simulation, error) {
	if m.listByCityFn != nil {
		return m.listByCityFn(ctx, cityID)
	}
	return nil, nil
}
func (m *mockSimRepo) ListModes(ctx context.Context) ([]domain.Mode, error) {
	return []domain.Mode{{ID: 1, Name: "historical"}, {ID: 2, Name: "reconstruction"}}, nil
}
func (m *mockSimRepo) ListByGeoObject(ctx context.Context, id int64) ([]domain.Simulation, error) {
	if m.listByGeoObjectFn != nil {
		return m.listByGeoObjectFn(ctx, id)
	}
	return nil, nil
}

type mockGeoRepo struct {
	listBySimulationFn func(ctx context.Context, simID int64, bbox *domain.BoundingBox) ([]domain.GeoObject, error)
	getByIDFn          func(ctx context.Context, id int64) (*domain.GeoObject, error)
	findNearbyFn       func(ctx context.Context, simID int64, p domain.GeoPoint, radiusKm float64, limit int) ([]domain.GeoObject, error)
}

func (m *mockGeoRepo) ListBySimulation(ctx context.Context, simID int64, bbox *domain.BoundingBox) ([]domain.GeoObject, error) {
	if m.listBySimulationFn != nil {
		return m.listBySimulationFn(ctx, simID, bbox)
	}
	return nil, nil
}
func (m *mockGeoRepo) GetByID(ctx context.Context, id int64) (*domain.GeoObject, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockGeoRepo) FindNearby(ctx context.Context, simID int64, p domain.GeoPoint, radiusKm float64, limit int) ([]domain.GeoObject, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, simID, p, radiusKm, limit)
	}
	return nil, nil
}
func (m *mockGeoRepo) InsertForSimulation(ctx context.Context, simID int64, objects []domain.GeoObject) (int, error) {
	return len(objects), nil
}
