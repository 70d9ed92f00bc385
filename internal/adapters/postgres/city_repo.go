package postgres

import (
	"context"

	"github.com/citysim/histmap/internal/core/domain"
)

// CityRepo implements ports.CityRepository.
type CityRepo struct {
	db *DB
}

func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

func (r *CityRepo) List(ctx context.Context) ([]domain.City, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(name_ru, '')
		FROM city ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Name, &c.NameRu); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *CityRepo) GetByID(ctx context.Context, id int64) (*domain.City, error) {
	c := &domain.City{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(name_ru, '')
		FROM city WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.NameRu)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *CityRepo) Create(ctx context.Context, name string) (*domain.City, error) {
	c := &domain.City{}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO city (name) VALUES ($1)
		RETURNING id, name, COALESCE(name_ru, '')
	`, name).Scan(&c.ID, &c.Name, &c.NameRu)
	if err != nil {
		return nil, err
	}
	return c, nil
}
