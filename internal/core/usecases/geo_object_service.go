package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/citysim/histmap/internal/core/domain"
	"github.com/citysim/histmap/internal/core/geojson"
	"github.com/citysim/histmap/internal/core/ports"
	"github.com/citysim/histmap/internal/pkg/geospatial"
	"github.com/citysim/histmap/internal/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

const (
	collectionTTL = 300

	DefaultNearbyRadiusKm = 5.0
	MaxNearbyRadiusKm     = 50.0
	DefaultNearbyLimit    = 10
	MaxNearbyLimit        = 50
)

// CollectionKey is the cache hash holding every cached collection of a simulation.
func CollectionKey(simulationID int64) string {
	return "geo:sim:" + strconv.FormatInt(simulationID, 10)
}

// bboxField names the hash field of one bbox variant.
func bboxField(bbox *domain.BoundingBox) string {
	if bbox == nil {
		return "all"
	}
	return fmt.Sprintf("%g,%g,%g,%g", bbox.MinX, bbox.MinY, bbox.MaxX, bbox.MaxY)
}

// GeoObjectService serves the geo objects of simulations as GeoJSON.
type GeoObjectService struct {
	objects ports.GeoObjectRepository
	sims    ports.SimulationRepository
	cache   ports.CacheService
}

// NewGeoObjectService creates a new GeoObjectService. cache may be nil.
func NewGeoObjectService(objects ports.GeoObjectRepository, sims ports.SimulationRepository, cache ports.CacheService) *GeoObjectService {
	return &GeoObjectService{objects: objects, sims: sims, cache: cache}
}

// ForSimulation returns the objects of a simulation as a FeatureCollection,
// restricted to bbox when it is non-nil.
func (s *GeoObjectService) ForSimulation(ctx context.Context, simulationID int64, bbox *domain.BoundingBox) (fc *domain.FeatureCollection, err error) {
	ctx, span := startSpan(ctx, "GeoObjectService.ForSimulation",
		attribute.Int64("simulation.id", simulationID),
		attribute.Bool("bbox", bbox != nil),
	)
	defer func() { endSpan(span, err) }()

	sim, err := s.sims.GetByID(ctx, simulationID)
	if err != nil {
		return nil, err
	}
	if bbox != nil && !bbox.Valid() {
		return nil, domain.ErrInvalidBoundingBox
	}

	key, field := CollectionKey(simulationID), bboxField(bbox)
	if s.cache != nil {
		if data, err := s.cache.GetField(ctx, key, field); err == nil {
			var cached domain.FeatureCollection
			if err := json.Unmarshal(data, &cached); err == nil {
				metrics.CacheHits.WithLabelValues("collection").Inc()
				return &cached, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("collection").Inc()
	}

	start := time.Now()
	records, err := s.objects.ListBySimulation(ctx, simulationID, bbox)
	if err != nil {
		return nil, fmt.Errorf("list objects of simulation %d: %w", simulationID, err)
	}
	fc = geojson.Assemble(records, sim, bbox)
	metrics.AssembleDuration.Observe(time.Since(start).Seconds())
	metrics.FeaturesAssembled.WithLabelValues("simulation").Add(float64(len(fc.Features)))
	span.SetAttributes(attribute.Int("features", len(fc.Features)))

	if s.cache != nil {
		if data, err := json.Marshal(fc); err == nil {
			_ = s.cache.SetField(ctx, key, field, data, collectionTTL)
		}
	}
	return fc, nil
}

// Get returns a single object as a Feature, its geometry in the requested
// SRID. srid 0 means WGS84.
func (s *GeoObjectService) Get(ctx context.Context, id int64, srid int) (*domain.Feature, error) {
	if srid == 0 {
		srid = geojson.SRIDWGS84
	}
	if srid != geojson.SRIDWGS84 && srid != geojson.SRIDWebMercator {
		return nil, fmt.Errorf("%w: unsupported srid %d", domain.ErrInvalidInput, srid)
	}

	obj, err := s.objects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f := geojson.NewFeature(*obj)
	if srid != geojson.SRIDWGS84 && geojson.GeometryType(f.Geometry) != "" {
		geom, err := geojson.Reproject(f.Geometry, srid)
		if err != nil {
			return nil, err
		}
		f.Geometry = geom
	}
	return &f, nil
}

// Nearby returns the objects of a simulation within radiusKm of point,
// nearest first, each annotated with its distance in kilometers.
// A zero radius or limit selects the default.
func (s *GeoObjectService) Nearby(ctx context.Context, simulationID int64, point domain.GeoPoint, radiusKm float64, limit int) (fc *domain.FeatureCollection, err error) {
	ctx, span := startSpan(ctx, "GeoObjectService.Nearby",
		attribute.Int64("simulation.id", simulationID),
		attribute.Float64("radius_km", radiusKm),
	)
	defer func() { endSpan(span, err) }()

	if radiusKm == 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if !(radiusKm > 0 && radiusKm <= MaxNearbyRadiusKm) {
		return nil, fmt.Errorf("%w: radius must be in (0, %g] km", domain.ErrInvalidInput, MaxNearbyRadiusKm)
	}
	if !point.Valid() {
		return nil, fmt.Errorf("%w: point out of range", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}
	if limit > MaxNearbyLimit {
		limit = MaxNearbyLimit
	}

	sim, err := s.sims.GetByID(ctx, simulationID)
	if err != nil {
		return nil, err
	}
	records, err := s.objects.FindNearby(ctx, simulationID, point, radiusKm, limit)
	if err != nil {
		return nil, fmt.Errorf("find objects near %v: %w", point, err)
	}

	fc = geojson.Assemble(records, sim, nil)
	for i, rec := range records {
		if rec.Distance != nil {
			d := geospatial.Round(*rec.Distance/1000, 2)
			fc.Features[i].Properties.Distance = &d
		}
	}
	metrics.FeaturesAssembled.WithLabelValues("nearby").Add(float64(len(fc.Features)))
	return fc, nil
}

// Timeline lists the simulations an object appears in, by year.
func (s *GeoObjectService) Timeline(ctx context.Context, id int64) ([]domain.Simulation, error) {
	if _, err := s.objects.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.sims.ListByGeoObject(ctx, id)
}

// Invalidate drops cached data derived from an updated simulation.
func (s *GeoObjectService) Invalidate(ctx context.Context, event *domain.SimulationUpdated) error {
	if s.cache == nil {
		return nil
	}
	metrics.CacheInvalidations.Inc()
	return s.cache.Delete(ctx, CollectionKey(event.SimulationID), TimelineKey(event.CityID))
}
