package geospatial

import (
	"math"

	"github.com/citysim/histmap/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Distance calculates the great-circle distance in kilometers between two points.
// The result is not rounded.
func Distance(a, b domain.GeoPoint) float64 {
	lat1, lat2 := toRad(a.Lat), toRad(b.Lat)
	dLat := lat2 - lat1
	dLon := toRad(b.Lon) - toRad(a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// minMeridianKmPerDegree is the length of one degree of latitude at the
// equator on the WGS 84 spheroid, the shortest anywhere.
const minMeridianKmPerDegree = 110.574

// Envelopes returns boxes that together cover every point within radiusKm
// of center as measured on the WGS 84 spheroid. A box crossing the
// antimeridian is split in two; one reaching a pole spans all longitudes.
func Envelopes(center domain.GeoPoint, radiusKm float64) []domain.BoundingBox {
	latDelta := radiusKm * 1.01 / minMeridianKmPerDegree
	minY := center.Lat - latDelta
	maxY := center.Lat + latDelta
	if minY <= -90 || maxY >= 90 {
		return []domain.BoundingBox{{
			MinX: -180,
			MinY: math.Max(minY, -90),
			MaxX: 180,
			MaxY: math.Min(maxY, 90),
		}}
	}

	// Widest longitude offset of a spherical cap of angular radius latDelta.
	ratio := math.Sin(toRad(latDelta)) / math.Cos(toRad(center.Lat))
	if ratio >= 1 {
		return []domain.BoundingBox{{MinX: -180, MinY: minY, MaxX: 180, MaxY: maxY}}
	}
	lonDelta := math.Asin(ratio) * 180 / math.Pi

	minX := center.Lon - lonDelta
	maxX := center.Lon + lonDelta
	switch {
	case minX < -180:
		return []domain.BoundingBox{
			{MinX: -180, MinY: minY, MaxX: maxX, MaxY: maxY},
			{MinX: minX + 360, MinY: minY, MaxX: 180, MaxY: maxY},
		}
	case maxX > 180:
		return []domain.BoundingBox{
			{MinX: minX, MinY: minY, MaxX: 180, MaxY: maxY},
			{MinX: -180, MinY: minY, MaxX: maxX - 360, MaxY: maxY},
		}
	}
	return []domain.BoundingBox{{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}}
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
