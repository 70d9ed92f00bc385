package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/citysim/histmap/internal/core/domain"
	"github.com/citysim/histmap/internal/core/ports"
)

const maxNameLength = 255

var nameStripper = strings.NewReplacer("<", "", ">", "", "'", "", "\"", "", ";", "")

// SanitizeName strips markup and quote characters, trims whitespace and caps
// the result at 255 characters.
func SanitizeName(s string) string {
	s = strings.TrimSpace(nameStripper.Replace(s))
	if r := []rune(s); len(r) > maxNameLength {
		s = string(r[:maxNameLength])
	}
	return s
}

// CityService handles city-related business logic.
type CityService struct {
	cities ports.CityRepository
}

// NewCityService creates a new CityService.
func NewCityService(cities ports.CityRepository) *CityService {
	return &CityService{cities: cities}
}

// List returns all cities ordered by name.
func (s *CityService) List(ctx context.Context) ([]domain.City, error) {
	return s.cities.List(ctx)
}

// Get returns a single city.
func (s *CityService) Get(ctx context.Context, id int64) (*domain.City, error) {
	return s.cities.GetByID(ctx, id)
}

// Create stores a city under a sanitised name.
func (s *CityService) Create(ctx context.Context, name string) (*domain.City, error) {
	clean := SanitizeName(name)
	if clean == "" {
		return nil, fmt.Errorf("%w: city name must not be empty", domain.ErrInvalidInput)
	}
	return s.cities.Create(ctx, clean)
}
