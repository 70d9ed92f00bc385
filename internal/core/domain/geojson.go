package domain

import "encoding/json"

// FeatureProperties are the attributes of a geo object feature.
type FeatureProperties struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Role               string   `json:"role"`
	Description        string   `json:"description"`
	DistanceFromCenter *float64 `json:"distanceFromCenter,omitempty"` // km
	Distance           *float64 `json:"distance,omitempty"`           // km, nearby queries
}

// Feature is a GeoJSON Feature.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   json.RawMessage   `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// CollectionMetadata describes the simulation a collection belongs to.
type CollectionMetadata struct {
	SimulationID int64        `json:"simulation_id"`
	Year         int          `json:"year"`
	City         string       `json:"city"`
	Mode         string       `json:"mode"`
	Count        int          `json:"count"`
	BBox         *BoundingBox `json:"bbox"`
}

// FeatureCollection is a GeoJSON FeatureCollection with simulation metadata.
type FeatureCollection struct {
	Type     string              `json:"type"`
	Features []Feature           `json:"features"`
	Metadata *CollectionMetadata `json:"metadata,omitempty"`
}
