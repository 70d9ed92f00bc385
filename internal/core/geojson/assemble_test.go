package geojson_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/citysim/histmap/internal/core/domain"
	"github.com/citysim/histmap/internal/core/geojson"
)

func pointObject(id int64, lon, lat float64) domain.GeoObject {
	geom, _ := json.Marshal(map[string]any{"type": "Point", "coordinates": []float64{lon, lat}})
	return domain.GeoObject{ID: id, Name: "Object", Role: "church", Description: "", Geometry: geom}
}

func testSimulation() *domain.Simulation {
	return &domain.Simulation{
		ID:          7,
		Year:        1812,
		CityName:    "Moscow",
		ModeName:    "historical",
		CenterPoint: &domain.GeoPoint{Lon: 0, Lat: 0},
	}
}

func TestAssemble_Empty(t *testing.T) {
	fc := geojson.Assemble(nil, testSimulation(), nil)
	if fc.Type != "FeatureCollection" {
		t.Errorf("expected FeatureCollection, got %s", fc.Type)
	}
	if fc.Features == nil || len(fc.Features) != 0 {
		t.Errorf("expected empty non-nil features, got %v", fc.Features)
	}
	if fc.Metadata == nil || fc.Metadata.Count != 0 {
		t.Fatalf("expected count 0, got %+v", fc.Metadata)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	_ = json.Unmarshal(data, &out)
	if features, ok := out["features"].([]any); !ok || len(features) != 0 {
		t.Errorf("expected features: [], got %v", out["features"])
	}
	meta := out["metadata"].(map[string]any)
	if meta["bbox"] != nil {
		t.Errorf("expected bbox null, got %v", meta["bbox"])
	}
}

func TestAssemble_PointDistanceFromCenter(t *testing.T) {
	fc := geojson.Assemble([]domain.GeoObject{pointObject(1, 0, 1)}, testSimulation(), nil)

	d := fc.Features[0].Properties.DistanceFromCenter
	if d == nil {
		t.Fatal("expected distanceFromCenter to be set")
	}
	if math.Abs(*d-111.19) > 0.1 {
		t.Errorf("expected ~111.19 km, got %f", *d)
	}
	if *d != 111.19 {
		t.Errorf("expected value rounded to 2 decimals, got %v", *d)
	}
}

func TestAssemble_NonPointHasNoDistance(t *testing.T) {
	line := domain.GeoObject{
		ID:       2,
		Name:     "Wall",
		Geometry: json.RawMessage(`{"type":"LineString","coordinates":[[0,1],[0,2]]}`),
	}
	fc := geojson.Assemble([]domain.GeoObject{line}, testSimulation(), nil)

	if fc.Features[0].Properties.DistanceFromCenter != nil {
		t.Error("LineString feature must not receive distanceFromCenter")
	}
	data, _ := json.Marshal(fc.Features[0])
	var out map[string]map[string]any
	_ = json.Unmarshal(data, &out)
	if _, ok := out["properties"]["distanceFromCenter"]; ok {
		t.Error("distanceFromCenter key must be absent from the wire format")
	}
}

func TestAssemble_NoCenterNoDistance(t *testing.T) {
	sim := testSimulation()
	sim.CenterPoint = nil
	fc := geojson.Assemble([]domain.GeoObject{pointObject(1, 0, 1)}, sim, nil)
	if fc.Features[0].Properties.DistanceFromCenter != nil {
		t.Error("expected no distance without a center point")
	}
}

func TestAssemble_GeometryWithoutTypePassesThrough(t *testing.T) {
	raw := json.RawMessage(`{"coordinates":[1,2]}`)
	fc := geojson.Assemble([]domain.GeoObject{{ID: 3, Geometry: raw}}, testSimulation(), nil)

	f := fc.Features[0]
	if string(f.Geometry) != string(raw) {
		t.Errorf("expected geometry unchanged, got %s", f.Geometry)
	}
	if f.Properties.DistanceFromCenter != nil {
		t.Error("expected no distance for untyped geometry")
	}
}

func TestAssemble_MalformedPointCoordinates(t *testing.T) {
	raw := json.RawMessage(`{"type":"Point","coordinates":"north"}`)
	fc := geojson.Assemble([]domain.GeoObject{{ID: 4, Geometry: raw}}, testSimulation(), nil)
	if fc.Features[0].Properties.DistanceFromCenter != nil {
		t.Error("expected malformed point to be skipped")
	}
}

func TestAssemble_InvalidJSONGeometryBecomesNull(t *testing.T) {
	fc := geojson.Assemble([]domain.GeoObject{{ID: 5, Geometry: json.RawMessage(`{not json`)}}, testSimulation(), nil)
	if string(fc.Features[0].Geometry) != "null" {
		t.Errorf("expected null geometry, got %s", fc.Features[0].Geometry)
	}
	if _, err := json.Marshal(fc); err != nil {
		t.Errorf("collection must stay serialisable: %v", err)
	}
}

func TestAssemble_PreservesOrder(t *testing.T) {
	ids := []int64{42, 7, 19, 3, 88}
	records := make([]domain.GeoObject, 0, len(ids))
	for i, id := range ids {
		records = append(records, pointObject(id, float64(i), float64(i)))
	}

	fc := geojson.Assemble(records, testSimulation(), nil)
	if len(fc.Features) != len(ids) {
		t.Fatalf("expected %d features, got %d", len(ids), len(fc.Features))
	}
	for i, f := range fc.Features {
		if f.Properties.ID != ids[i] {
			t.Errorf("position %d: expected id %d, got %d", i, ids[i], f.Properties.ID)
		}
	}
}

func TestAssemble_Metadata(t *testing.T) {
	bbox := &domain.BoundingBox{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10}
	records := []domain.GeoObject{pointObject(1, 0, 1), pointObject(2, 1, 1)}

	fc := geojson.Assemble(records, testSimulation(), bbox)
	bbox.MinX = 99

	m := fc.Metadata
	if m.SimulationID != 7 || m.Year != 1812 || m.City != "Moscow" || m.Mode != "historical" {
		t.Errorf("unexpected metadata %+v", m)
	}
	if m.Count != 2 {
		t.Errorf("expected count 2, got %d", m.Count)
	}
	if m.BBox == nil || m.BBox.MinX != -10 {
		t.Errorf("expected echoed bbox, got %+v", m.BBox)
	}

	data, _ := json.Marshal(fc)
	var out struct {
		Metadata struct {
			BBox []float64 `json:"bbox"`
		} `json:"metadata"`
	}
	_ = json.Unmarshal(data, &out)
	if len(out.Metadata.BBox) != 4 || out.Metadata.BBox[2] != 10 {
		t.Errorf("expected bbox as [minx,miny,maxx,maxy], got %v", out.Metadata.BBox)
	}
}

func TestAssemble_NilSimulationOmitsMetadata(t *testing.T) {
	fc := geojson.Assemble([]domain.GeoObject{pointObject(1, 0, 1)}, nil, nil)
	if fc.Metadata != nil {
		t.Errorf("expected no metadata, got %+v", fc.Metadata)
	}
	if fc.Features[0].Properties.DistanceFromCenter != nil {
		t.Error("expected no distance without a simulation")
	}
}

func TestPointCoordinates(t *testing.T) {
	pt, ok := geojson.PointCoordinates(json.RawMessage(`{"type":"Point","coordinates":[30.31,59.93,12]}`))
	if !ok || pt.Lon != 30.31 || pt.Lat != 59.93 {
		t.Errorf("unexpected point %+v ok=%v", pt, ok)
	}
	if _, ok := geojson.PointCoordinates(json.RawMessage(`{"type":"Point","coordinates":[30.31]}`)); ok {
		t.Error("expected single coordinate to be rejected")
	}
	if _, ok := geojson.PointCoordinates(json.RawMessage(`{"type":"MultiPoint","coordinates":[[1,2]]}`)); ok {
		t.Error("expected MultiPoint to be rejected")
	}
}

func TestGeometryType(t *testing.T) {
	if got := geojson.GeometryType(json.RawMessage(`{"type":"Polygon","coordinates":[]}`)); got != "Polygon" {
		t.Errorf("expected Polygon, got %q", got)
	}
	if got := geojson.GeometryType(json.RawMessage(`[1,2]`)); got != "" {
		t.Errorf("expected empty type, got %q", got)
	}
}
