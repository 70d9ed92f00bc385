//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/citysim/histmap/internal/adapters/http"
	"github.com/citysim/histmap/internal/adapters/postgres"
	"github.com/citysim/histmap/internal/core/domain"
	"github.com/citysim/histmap/internal/core/usecases"
	"github.com/citysim/histmap/internal/pkg/config"
)

// setupTestDB connects to the database named by the CITYSIM_DATABASE_* settings.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("citysim-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

// setupTestDeps creates dependencies with real repos, no cache.
func setupTestDeps(db *postgres.DB) *http.Dependencies {
	cities := postgres.NewCityRepo(db)
	sims := postgres.NewSimulationRepo(db)
	objects := postgres.NewGeoObjectRepo(db)

	return &http.Dependencies{
		Cities:      usecases.NewCityService(cities),
		Simulations: usecases.NewSimulationService(sims, cities, nil),
		GeoObjects:  usecases.NewGeoObjectService(objects, sims, nil),
		DB:          db,
	}
}

// seedSimulation creates a city, a simulation centered on Palace Square and
// two objects, returning the simulation id.
func seedSimulation(t *testing.T, db *postgres.DB) int64 {
	ctx := context.Background()
	var cityID, simID int64
	if err := db.Pool.QueryRow(ctx,
		`INSERT INTO city (name) VALUES ($1) RETURNING id`,
		"Test City "+time.Now().Format("150405.000"),
	).Scan(&cityID); err != nil {
		t.Fatalf("seed city: %v", err)
	}
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO simulation (city_id, mode_id, year, center_point)
		VALUES ($1, (SELECT min(id) FROM mode), 1850, ST_SetSRID(ST_MakePoint(30.3141, 59.9398), 4326))
		RETURNING id
	`, cityID).Scan(&simID); err != nil {
		t.Fatalf("seed simulation: %v", err)
	}

	layer := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[30.3141,59.9398]},"properties":{"name":"Winter Palace"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[32.0,61.0]},"properties":{"name":"Far Away"}}
	]}`)
	imports := usecases.NewImportService(postgres.NewGeoObjectRepo(db), postgres.NewSimulationRepo(db), nil)
	if _, err := imports.Import(ctx, simID, layer); err != nil {
		t.Fatalf("seed objects: %v", err)
	}
	return simID
}

func TestSimulationGeoObjects_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	simID := seedSimulation(t, db)
	app := setupApp(setupTestDeps(db))

	req := httptest.NewRequest("GET", "/api/geo-objects/simulation/"+itoa(simID)+"?minx=30&miny=59&maxx=31&maxy=60.5", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var fc domain.FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature inside bbox, got %d", len(fc.Features))
	}
	if d := fc.Features[0].Properties.DistanceFromCenter; d == nil || *d != 0 {
		t.Errorf("expected distanceFromCenter 0, got %v", d)
	}
}

func TestNearbyGeoObjects_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	simID := seedSimulation(t, db)
	app := setupApp(setupTestDeps(db))

	req := httptest.NewRequest("GET", "/api/geo-objects/simulation/"+itoa(simID)+"/nearby?lon=30.3141&lat=59.9398&radius=1", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var fc domain.FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(fc.Features) != 1 || fc.Features[0].Properties.Name != "Winter Palace" {
		t.Errorf("expected only the Winter Palace within 1 km, got %+v", fc.Features)
	}
}

func TestDBHealth_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	app := setupApp(setupTestDeps(db))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/healthcheck/db", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
