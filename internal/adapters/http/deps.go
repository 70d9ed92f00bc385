package http

import (
	"github.com/citysim/histmap/internal/adapters/postgres"
	"github.com/citysim/histmap/internal/adapters/valkey"
	"github.com/citysim/histmap/internal/core/usecases"
	"github.com/nats-io/nats.go"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Cities      *usecases.CityService
	Simulations *usecases.SimulationService
	GeoObjects  *usecases.GeoObjectService
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
}
