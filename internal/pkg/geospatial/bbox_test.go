package geospatial_test

import (
	"math"
	"testing"

	"github.com/citysim/histmap/internal/pkg/geospatial"
)

func TestIsValidBoundingBox(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   bool
	}{
		{"valid", []float64{-10, -10, 10, 10}, true},
		{"whole world", []float64{-180, -90, 180, 90}, true},
		{"degenerate point", []float64{5, 5, 5, 5}, true},
		{"inverted x", []float64{10, -10, -10, 10}, false},
		{"inverted y", []float64{-10, 10, 10, -10}, false},
		{"longitude out of range", []float64{-200, -10, 10, 10}, false},
		{"max longitude out of range", []float64{-10, -10, 181, 10}, false},
		{"latitude out of range", []float64{-10, -91, 10, 10}, false},
		{"max latitude out of range", []float64{-10, -10, 10, 90.5}, false},
		{"too few values", []float64{-10, -10, 10}, false},
		{"too many values", []float64{-10, -10, 10, 10, 0}, false},
		{"nil", nil, false},
		{"NaN", []float64{math.NaN(), -10, 10, 10}, false},
		{"infinite", []float64{-10, -10, math.Inf(1), 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := geospatial.IsValidBoundingBox(tt.values); got != tt.want {
				t.Errorf("IsValidBoundingBox(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestParseBoundingBox(t *testing.T) {
	box, ok := geospatial.ParseBoundingBox("30.2", "59.9", " 30.4", "60.0")
	if !ok {
		t.Fatal("expected valid box")
	}
	if box.MinX != 30.2 || box.MinY != 59.9 || box.MaxX != 30.4 || box.MaxY != 60.0 {
		t.Errorf("unexpected box %+v", box)
	}

	if _, ok := geospatial.ParseBoundingBox("abc", "0", "1", "1"); ok {
		t.Error("expected non-numeric value to be rejected")
	}
	if _, ok := geospatial.ParseBoundingBox("1", "0", "0", "1"); ok {
		t.Error("expected inverted box to be rejected")
	}
	if _, ok := geospatial.ParseBoundingBox("NaN", "0", "1", "1"); ok {
		t.Error("expected NaN to be rejected")
	}
}
