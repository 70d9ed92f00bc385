package usecases_test

import (
	"context"
	"sync"

	"github.com/citysim/histmap/internal/core/domain"
)

// --- Mock CityRepository ---

type mockCityRepo struct {
	listFn    func(ctx context.Context) ([]domain.City, error)
	getByIDFn func(ctx context.Context, id int64) (*domain.City, error)
	createFn  func(ctx context.Context, name string) (*domain.City, error)
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
	return &domain.City{ID: id, Name: "City"}, nil
}

func (m *mockCityRepo) Create(ctx context.Context, name string) (*domain.City, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name)
	}
	return &domain.City{ID: 1, Name: name}, nil
}

// --- Mock SimulationRepository ---

type mockSimRepo struct {
	getByIDFn         func(ctx context.Context, id int64) (*domain.Simulation, error)
	getByCityYearMode func(ctx context.Context, cityID int64, year int, modeID int64) (*domain.Simulation, error)
	yearsByCityFn     func(ctx context.Context, cityID int64) ([]int, error)
	listByCityFn      func(ctx context.Context, cityID int64) ([]domain.Simulation, error)
	listByGeoObjectFn func(ctx context.Context, id int64) ([]domain.Simulation, error)
}

func (m *mockSimRepo) List(ctx context.Context) ([]domain.Simulation, error) { return nil, nil }

func (m *mockSimRepo) ListModes(ctx context.Context) ([]domain.Mode, error) {
	return []domain.Mode{{ID: 1, Name: "historical"}}, nil
}

func (m *mockSimRepo) GetByID(ctx context.Context, id int64) (*domain.Simulation, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Simulation{ID: id, Year: 1850, CityID: 1, CityName: "Saint Petersburg", ModeName: "historical"}, nil
}

func (m *mockSimRepo) GetByCityYearMode(ctx context.Context, cityID int64, year int, modeID int64) (*domain.Simulation, error) {
	if m.getByCityYearMode != nil {
		return m.getByCityYearMode(ctx, cityID, year, modeID)
	}
	return nil, domain.ErrNotFound
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

func (m *mockSimRepo) ListByGeoObject(ctx context.Context, id int64) ([]domain.Simulation, error) {
	if m.listByGeoObjectFn != nil {
		return m.listByGeoObjectFn(ctx, id)
	}
	return nil, nil
}

// --- Mock GeoObjectRepository ---

type mockGeoRepo struct {
	listBySimulationFn func(ctx context.Context, simID int64, bbox *domain.BoundingBox) ([]domain.GeoObject, error)
	getByIDFn          func(ctx context.Context, id int64) (*domain.GeoObject, error)
	findNearbyFn       func(ctx context.Context, simID int64, p domain.GeoPoint, radiusKm float64, limit int) ([]domain.GeoObject, error)
	insertFn           func(ctx context.Context, simID int64, objects []domain.GeoObject) (int, error)
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
	if m.insertFn != nil {
		return m.insertFn(ctx, simID, objects)
	}
	return len(objects), nil
}

// --- In-memory CacheService ---

type memCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	hashes  map[string]map[string][]byte
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}, hashes: map[string]map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		delete(c.hashes, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *memCache) GetField(ctx context.Context, key, field string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.hashes[key][field]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (c *memCache) SetField(ctx context.Context, key, field string, value []byte, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hashes[key] == nil {
		c.hashes[key] = map[string][]byte{}
	}
	c.hashes[key][field] = value
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []*domain.SimulationUpdated
	err    error
}

func (m *mockPublisher) PublishSimulationUpdated(ctx context.Context, event *domain.SimulationUpdated) error {
	m.events = append(m.events, event)
	return m.err
}
