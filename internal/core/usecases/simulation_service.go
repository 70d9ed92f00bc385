package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/citysim/histmap/internal/core/domain"
	"github.com/citysim/histmap/internal/core/ports"
	"github.com/citysim/histmap/internal/pkg/metrics"
)

const (
	MinYear = 1000
	MaxYear = 3000

	timelineTTL = 600
)

// ValidateYear reports whether year lies in the supported range.
func ValidateYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// TimelineKey is the cache key of a city's timeline.
func TimelineKey(cityID int64) string {
	return "cities:timeline:" + strconv.FormatInt(cityID, 10)
}

// SimulationService handles simulation lookups and city timelines.
type SimulationService struct {
	sims   ports.SimulationRepository
	cities ports.CityRepository
	cache  ports.CacheService
}

// NewSimulationService creates a new SimulationService. cache may be nil.
func NewSimulationService(sims ports.SimulationRepository, cities ports.CityRepository, cache ports.CacheService) *SimulationService {
	return &SimulationService{sims: sims, cities: cities, cache: cache}
}

func (s *SimulationService) List(ctx context.Context) ([]domain.Simulation, error) {
	return s.sims.List(ctx)
}

func (s *SimulationService) Get(ctx context.Context, id int64) (*domain.Simulation, error) {
	return s.sims.GetByID(ctx, id)
}

func (s *SimulationService) Modes(ctx context.Context) ([]domain.Mode, error) {
	return s.sims.ListModes(ctx)
}

// YearsByCity returns the distinct simulation years of a city, ascending.
func (s *SimulationService) YearsByCity(ctx context.Context, cityID int64) ([]int, error) {
	if _, err := s.cities.GetByID(ctx, cityID); err != nil {
		return nil, err
	}
	return s.sims.YearsByCity(ctx, cityID)
}

// ByCity lists every simulation of a city.
func (s *SimulationService) ByCity(ctx context.Context, cityID int64) ([]domain.Simulation, error) {
	if _, err := s.cities.GetByID(ctx, cityID); err != nil {
		return nil, err
	}
	return s.sims.ListByCity(ctx, cityID)
}

// ByCityYearMode finds the simulation of a city for a year under a mode.
func (s *SimulationService) ByCityYearMode(ctx context.Context, cityID int64, year int, modeID int64) (*domain.Simulation, error) {
	if !ValidateYear(year) {
		return nil, fmt.Errorf("%w: year must be between %d and %d", domain.ErrInvalidInput, MinYear, MaxYear)
	}
	return s.sims.GetByCityYearMode(ctx, cityID, year, modeID)
}

// Timeline lists, for every year a city has simulations, the simulation of
// the lowest-numbered mode available that year.
func (s *SimulationService) Timeline(ctx context.Context, cityID int64) (*domain.CityTimeline, error) {
	key := TimelineKey(cityID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var tl domain.CityTimeline
			if err := json.Unmarshal(data, &tl); err == nil {
				metrics.CacheHits.WithLabelValues("timeline").Inc()
				return &tl, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("timeline").Inc()
	}

	city, err := s.cities.GetByID(ctx, cityID)
	if err != nil {
		return nil, err
	}
	sims, err := s.sims.ListByCity(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("list simulations of city %d: %w", cityID, err)
	}

	tl := &domain.CityTimeline{City: *city, Timeline: buildTimeline(sims)}

	if s.cache != nil {
		if data, err := json.Marshal(tl); err == nil {
			_ = s.cache.Set(ctx, key, data, timelineTTL)
		}
	}
	return tl, nil
}

// buildTimeline picks one simulation per year: the one with the smallest
// mode id, ties broken by simulation id. Years come out ascending.
func buildTimeline(sims []domain.Simulation) []domain.TimelineEntry {
	best := make(map[int]domain.Simulation)
	var years []int
	for _, sim := range sims {
		cur, ok := best[sim.Year]
		if !ok {
			years = append(years, sim.Year)
		}
		if !ok || sim.ModeID < cur.ModeID || (sim.ModeID == cur.ModeID && sim.ID < cur.ID) {
			best[sim.Year] = sim
		}
	}
	slices.Sort(years)

	entries := make([]domain.TimelineEntry, 0, len(years))
	for _, y := range years {
		entries = append(entries, domain.TimelineEntry{Year: y, SimulationID: best[y].ID})
	}
	return entries
}
