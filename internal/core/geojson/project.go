package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/citysim/histmap/internal/core/domain"
	orbgeojson "github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

// Supported spatial reference systems.
const (
	SRIDWGS84       = 4326
	SRIDWebMercator = 3857
)

// Reproject converts a WGS 84 geometry into the given SRID.
// 4326 returns the geometry unchanged.
func Reproject(raw json.RawMessage, srid int) (json.RawMessage, error) {
	switch srid {
	case SRIDWGS84:
		return raw, nil
	case SRIDWebMercator:
	default:
		return nil, fmt.Errorf("%w: unsupported srid %d", domain.ErrInvalidInput, srid)
	}

	g, err := orbgeojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	projected := project.Geometry(g.Geometry(), project.WGS84.ToMercator)
	return json.Marshal(orbgeojson.NewGeometry(projected))
}

// DecodeObjects parses a GeoJSON FeatureCollection into geo objects.
// name, role and description are read from each feature's properties.
func DecodeObjects(data []byte) ([]domain.GeoObject, error) {
	if !Validate(data) || GeometryType(data) != TypeFeatureCollection {
		return nil, fmt.Errorf("%w: not a valid GeoJSON FeatureCollection", domain.ErrInvalidInput)
	}

	fc, err := orbgeojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	objects := make([]domain.GeoObject, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, fmt.Errorf("%w: feature %d has no geometry", domain.ErrInvalidInput, i)
		}
		geom, err := json.Marshal(orbgeojson.NewGeometry(f.Geometry))
		if err != nil {
			return nil, fmt.Errorf("encode geometry %d: %w", i, err)
		}
		objects = append(objects, domain.GeoObject{
			Name:        f.Properties.MustString("name", ""),
			Role:        f.Properties.MustString("role", ""),
			Description: f.Properties.MustString("description", ""),
			Geometry:    geom,
		})
	}
	return objects, nil
}
