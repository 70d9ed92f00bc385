package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidBoundingBox marks a bounding box that failed validation.
	ErrInvalidBoundingBox = errors.New("invalid bounding box parameters")
	// ErrInvalidInput marks caller-supplied values that cannot be served.
	ErrInvalidInput = errors.New("invalid input")
)

// City is a city that has one or more simulations.
type City struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	NameRu string `json:"name_ru,omitempty"`
}

// Mode is the kind of simulation run (historical, reconstruction, ...).
type Mode struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Simulation is a dated simulation run of a city under a mode.
type Simulation struct {
	ID          int64     `json:"id"`
	Year        int       `json:"year"`
	CityID      int64     `json:"city_id"`
	ModeID      int64     `json:"mode_id"`
	CityName    string    `json:"city_name"`
	ModeName    string    `json:"mode_name"`
	CenterPoint *GeoPoint `json:"center_point,omitempty"`
}

// GeoObject is a geo-referenced object as read from the spatial store.
// Geometry holds the GeoJSON geometry exactly as the database rendered it.
type GeoObject struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Role        string          `json:"role"`
	Description string          `json:"description"`
	Geometry    json.RawMessage `json:"geometry"`
	Distance    *float64        `json:"distance,omitempty"` // meters, nearby queries only
}

// TimelineEntry is one year of a city's timeline.
type TimelineEntry struct {
	Year         int   `json:"year"`
	SimulationID int64 `json:"simulation_id"`
}

// CityTimeline lists the years for which a city has simulations.
type CityTimeline struct {
	City     City            `json:"city"`
	Timeline []TimelineEntry `json:"timeline"`
}

// SimulationUpdated is emitted after new objects are attached to a simulation.
type SimulationUpdated struct {
	SimulationID int64     `json:"simulation_id"`
	CityID       int64     `json:"city_id"`
	Objects      int       `json:"objects"`
	At           time.Time `json:"at"`
}
