package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/citysim/histmap/internal/core/domain"
	"github.com/citysim/histmap/internal/pkg/geospatial"
)

// GeoObjectRepo implements ports.GeoObjectRepository with pgx and PostGIS.
type GeoObjectRepo struct {
	db *DB
}

// NewGeoObjectRepo creates a new GeoObjectRepo.
func NewGeoObjectRepo(db *DB) *GeoObjectRepo {
	return &GeoObjectRepo{db: db}
}

// ListBySimulation returns the objects of a simulation in id order.
// A non-nil bbox keeps only objects intersecting the envelope.
func (r *GeoObjectRepo) ListBySimulation(ctx context.Context, simulationID int64, bbox *domain.BoundingBox) ([]domain.GeoObject, error) {
	sql := `
		SELECT g.id, COALESCE(g.name, ''), COALESCE(g.role, ''), COALESCE(g.description, ''),
		       ST_AsGeoJSON(g.location)
		FROM geoobject g
		JOIN geoobjectsimulation gs ON g.id = gs.geo_object_id
		WHERE gs.simulation_id = $1
	`
	args := []any{simulationID}
	if bbox != nil {
		sql += ` AND ST_Intersects(g.location, ST_MakeEnvelope($2, $3, $4, $5, 4326))`
		args = append(args, bbox.MinX, bbox.MinY, bbox.MaxX, bbox.MaxY)
	}
	sql += ` ORDER BY g.id`

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	objects := []domain.GeoObject{}
	for rows.Next() {
		var o domain.GeoObject
		var geom *string
		if err := rows.Scan(&o.ID, &o.Name, &o.Role, &o.Description, &geom); err != nil {
			return nil, err
		}
		o.Geometry = rawGeometry(geom)
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// GetByID returns a single object.
func (r *GeoObjectRepo) GetByID(ctx context.Context, id int64) (*domain.GeoObject, error) {
	var o domain.GeoObject
	var geom *string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT g.id, COALESCE(g.name, ''), COALESCE(g.role, ''), COALESCE(g.description, ''),
		       ST_AsGeoJSON(g.location)
		FROM geoobject g
		WHERE g.id = $1
	`, id).Scan(&o.ID, &o.Name, &o.Role, &o.Description, &geom)
	if err != nil {
		return nil, notFound(err)
	}
	o.Geometry = rawGeometry(geom)
	return &o, nil
}

// FindNearby returns objects of a simulation within radiusKm of point,
// nearest first.
func (r *GeoObjectRepo) FindNearby(ctx context.Context, simulationID int64, point domain.GeoPoint, radiusKm float64, limit int) ([]domain.GeoObject, error) {
	// The GiST prefilter takes up to two envelopes; a single one is repeated.
	envs := geospatial.Envelopes(point, radiusKm)
	a, b := envs[0], envs[len(envs)-1]
	rows, err := r.db.Pool.Query(ctx, `
		SELECT g.id, COALESCE(g.name, ''), COALESCE(g.role, ''), COALESCE(g.description, ''),
		       ST_AsGeoJSON(g.location),
		       ST_Distance(g.location::geography, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography) AS distance
		FROM geoobject g
		JOIN geoobjectsimulation gs ON g.id = gs.geo_object_id
		WHERE gs.simulation_id = $1
		  AND (g.location && ST_MakeEnvelope($5, $6, $7, $8, 4326)
		    OR g.location && ST_MakeEnvelope($9, $10, $11, $12, 4326))
		  AND ST_DWithin(g.location::geography, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4)
		ORDER BY distance
		LIMIT $13
	`, simulationID, point.Lon, point.Lat, radiusKm*1000,
		a.MinX, a.MinY, a.MaxX, a.MaxY,
		b.MinX, b.MinY, b.MaxX, b.MaxY, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	objects := []domain.GeoObject{}
	for rows.Next() {
		var o domain.GeoObject
		var geom *string
		var dist float64
		if err := rows.Scan(&o.ID, &o.Name, &o.Role, &o.Description, &geom, &dist); err != nil {
			return nil, err
		}
		o.Geometry = rawGeometry(geom)
		o.Distance = &dist
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// InsertForSimulation stores objects and links them to a simulation in one transaction.
func (r *GeoObjectRepo) InsertForSimulation(ctx context.Context, simulationID int64, objects []domain.GeoObject) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, o := range objects {
		batch.Queue(`
			WITH inserted AS (
				INSERT INTO geoobject (name, role, description, location)
				VALUES ($2, $3, $4, ST_SetSRID(ST_GeomFromGeoJSON($5), 4326))
				RETURNING id
			)
			INSERT INTO geoobjectsimulation (geo_object_id, simulation_id)
			SELECT id, $1 FROM inserted
		`, simulationID, o.Name, o.Role, o.Description, string(o.Geometry))
	}

	br := tx.SendBatch(ctx, batch)
	for i := range objects {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("batch exec %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("batch close: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(objects), nil
}

func rawGeometry(geom *string) json.RawMessage {
	if geom == nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(*geom)
}
