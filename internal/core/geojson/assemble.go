// Package geojson turns geo objects read from the spatial store into GeoJSON
// features and collections.
package geojson

import (
	"encoding/json"
	"math"

	"github.com/citysim/histmap/internal/core/domain"
	"github.com/citysim/histmap/internal/pkg/geospatial"
)

const (
	TypeFeature           = "Feature"
	TypeFeatureCollection = "FeatureCollection"
	TypePoint             = "Point"
)

var nullGeometry = json.RawMessage("null")

type geometryHeader struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Assemble wraps records into a FeatureCollection, preserving their order.
//
// When sim carries a center point, Point features get a distanceFromCenter
// property in kilometers rounded to two decimals. Any other geometry, or a
// geometry whose type cannot be read, is passed through without it.
// Metadata is attached whenever sim is non-nil; bbox is echoed as-is.
func Assemble(records []domain.GeoObject, sim *domain.Simulation, bbox *domain.BoundingBox) *domain.FeatureCollection {
	features := make([]domain.Feature, 0, len(records))
	for _, rec := range records {
		f := NewFeature(rec)
		if sim != nil && sim.CenterPoint != nil {
			if pt, ok := PointCoordinates(f.Geometry); ok {
				d := geospatial.Round(geospatial.Distance(*sim.CenterPoint, pt), 2)
				f.Properties.DistanceFromCenter = &d
			}
		}
		features = append(features, f)
	}

	fc := &domain.FeatureCollection{Type: TypeFeatureCollection, Features: features}
	if sim != nil {
		meta := &domain.CollectionMetadata{
			SimulationID: sim.ID,
			Year:         sim.Year,
			City:         sim.CityName,
			Mode:         sim.ModeName,
			Count:        len(features),
		}
		if bbox != nil {
			b := *bbox
			meta.BBox = &b
		}
		fc.Metadata = meta
	}
	return fc
}

// NewFeature wraps a single geo object. Geometry that is not valid JSON
// cannot be embedded and is rendered as null.
func NewFeature(obj domain.GeoObject) domain.Feature {
	geom := obj.Geometry
	if len(geom) == 0 || !json.Valid(geom) {
		geom = nullGeometry
	}
	return domain.Feature{
		Type:     TypeFeature,
		Geometry: geom,
		Properties: domain.FeatureProperties{
			ID:          obj.ID,
			Name:        obj.Name,
			Role:        obj.Role,
			Description: obj.Description,
		},
	}
}

// GeometryType returns the "type" member of a GeoJSON geometry, or "" if it
// cannot be read.
func GeometryType(raw json.RawMessage) string {
	var h geometryHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return ""
	}
	return h.Type
}

// PointCoordinates extracts [lon, lat] from a Point geometry.
// ok is false for any other geometry type or malformed coordinates.
func PointCoordinates(raw json.RawMessage) (domain.GeoPoint, bool) {
	var h geometryHeader
	if err := json.Unmarshal(raw, &h); err != nil || h.Type != TypePoint {
		return domain.GeoPoint{}, false
	}
	var coords []float64
	if err := json.Unmarshal(h.Coordinates, &coords); err != nil || len(coords) < 2 {
		return domain.GeoPoint{}, false
	}
	for _, c := range coords[:2] {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return domain.GeoPoint{}, false
		}
	}
	return domain.GeoPoint{Lon: coords[0], Lat: coords[1]}, true
}
