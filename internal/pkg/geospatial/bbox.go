package geospatial

import (
	"strconv"
	"strings"

	"github.com/citysim/histmap/internal/core/domain"
)

// IsValidBoundingBox reports whether values form a sane [minx, miny, maxx, maxy] box.
func IsValidBoundingBox(values []float64) bool {
	if len(values) != 4 {
		return false
	}
	return domain.BoundingBox{
		MinX: values[0],
		MinY: values[1],
		MaxX: values[2],
		MaxY: values[3],
	}.Valid()
}

// ParseBoundingBox converts four raw query values into a validated box.
// It returns false when any value is not a number or the box is invalid.
func ParseBoundingBox(minx, miny, maxx, maxy string) (*domain.BoundingBox, bool) {
	raw := []string{minx, miny, maxx, maxy}
	values := make([]float64, 0, len(raw))
	for _, r := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	if !IsValidBoundingBox(values) {
		return nil, false
	}
	return &domain.BoundingBox{MinX: values[0], MinY: values[1], MaxX: values[2], MaxY: values[3]}, true
}
