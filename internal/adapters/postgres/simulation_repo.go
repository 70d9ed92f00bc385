package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/citysim/histmap/internal/core/domain"
)

// SimulationRepo implements ports.SimulationRepository.
type SimulationRepo struct {
	db *DB
}

// NewSimulationRepo creates a new SimulationRepo.
func NewSimulationRepo(db *DB) *SimulationRepo {
	return &SimulationRepo{db: db}
}

const simulationColumns = `
	s.id, s.year, s.city_id, s.mode_id, c.name, m.name,
	ST_X(s.center_point), ST_Y(s.center_point)
`

const simulationFrom = `
	FROM simulation s
	JOIN city c ON s.city_id = c.id
	JOIN mode m ON s.mode_id = m.id
`

func scanSimulation(row pgx.Row) (*domain.Simulation, error) {
	var s domain.Simulation
	var lon, lat *float64
	if err := row.Scan(&s.ID, &s.Year, &s.CityID, &s.ModeID, &s.CityName, &s.ModeName, &lon, &lat); err != nil {
		return nil, err
	}
	if lon != nil && lat != nil {
		s.CenterPoint = &domain.GeoPoint{Lon: *lon, Lat: *lat}
	}
	return &s, nil
}

func (r *SimulationRepo) query(ctx context.Context, sql string, args ...any) ([]domain.Simulation, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sims []domain.Simulation
	for rows.Next() {
		s, err := scanSimulation(rows)
		if err != nil {
			return nil, err
		}
		sims = append(sims, *s)
	}
	return sims, rows.Err()
}

// List returns all simulations.
func (r *SimulationRepo) List(ctx context.Context) ([]domain.Simulation, error) {
	return r.query(ctx, `SELECT `+simulationColumns+simulationFrom+` ORDER BY s.id`)
}

// GetByID returns a simulation with its city and mode names.
func (r *SimulationRepo) GetByID(ctx context.Context, id int64) (*domain.Simulation, error) {
	s, err := scanSimulation(r.db.Pool.QueryRow(ctx,
		`SELECT `+simulationColumns+simulationFrom+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// GetByCityYearMode returns the simulation of a city for a year and mode.
func (r *SimulationRepo) GetByCityYearMode(ctx context.Context, cityID int64, year int, modeID int64) (*domain.Simulation, error) {
	s, err := scanSimulation(r.db.Pool.QueryRow(ctx,
		`SELECT `+simulationColumns+simulationFrom+`
		 WHERE s.city_id = $1 AND s.year = $2 AND s.mode_id = $3
		 ORDER BY s.id LIMIT 1`, cityID, year, modeID))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// YearsByCity returns the distinct simulated years of a city, ascending.
func (r *SimulationRepo) YearsByCity(ctx context.Context, cityID int64) ([]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT DISTINCT year FROM simulation
		WHERE city_id = $1
		ORDER BY year
	`, cityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// ListByCity returns every simulation of a city.
func (r *SimulationRepo) ListByCity(ctx context.Context, cityID int64) ([]domain.Simulation, error) {
	return r.query(ctx, `SELECT `+simulationColumns+simulationFrom+`
		WHERE s.city_id = $1 ORDER BY s.year, s.mode_id, s.id`, cityID)
}

// ListModes returns all simulation modes.
func (r *SimulationRepo) ListModes(ctx context.Context) ([]domain.Mode, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name FROM mode ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modes []domain.Mode
	for rows.Next() {
		var m domain.Mode
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, rows.Err()
}

// ListByGeoObject returns the simulations that contain an object.
func (r *SimulationRepo) ListByGeoObject(ctx context.Context, geoObjectID int64) ([]domain.Simulation, error) {
	return r.query(ctx, `SELECT `+simulationColumns+simulationFrom+`
		JOIN geoobjectsimulation gs ON gs.simulation_id = s.id
		WHERE gs.geo_object_id = $1
		ORDER BY s.year, s.mode_id`, geoObjectID)
}
