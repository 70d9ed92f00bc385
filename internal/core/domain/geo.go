package domain

import (
	"encoding/json"
	"math"
)

// GeoPoint represents a geographic coordinate (WGS 84), in degrees.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// MarshalJSON renders the point as a GeoJSON position [lon, lat].
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lon, p.Lat})
}

// UnmarshalJSON accepts a GeoJSON position [lon, lat].
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	var pos [2]float64
	if err := json.Unmarshal(data, &pos); err != nil {
		return err
	}
	p.Lon, p.Lat = pos[0], pos[1]
	return nil
}

// Valid reports whether the point is finite and inside WGS 84 ranges.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return false
	}
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// BoundingBox is a longitude/latitude rectangle.
type BoundingBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Valid reports whether the box is ordered and inside WGS 84 ranges.
func (b BoundingBox) Valid() bool {
	for _, v := range b.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if b.MinX > b.MaxX || b.MinY > b.MaxY {
		return false
	}
	return b.MinX >= -180 && b.MaxX <= 180 && b.MinY >= -90 && b.MaxY <= 90
}

// Values returns the bounds as [minx, miny, maxx, maxy].
func (b BoundingBox) Values() []float64 {
	return []float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
}

// MarshalJSON renders the box as [minx, miny, maxx, maxy].
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Values())
}

// UnmarshalJSON accepts [minx, miny, maxx, maxy].
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var v [4]float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	b.MinX, b.MinY, b.MaxX, b.MaxY = v[0], v[1], v[2], v[3]
	return nil
}
