package http

import (
	"strconv"
	"strings"

	"github.com/citysim/histmap/internal/core/domain"
	"github.com/citysim/histmap/internal/pkg/geospatial"
	"github.com/gofiber/fiber/v2"
)

// paramID reads a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryFloat reads a required float query parameter.
func queryFloat(c *fiber.Ctx, name string) (float64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ---- Cities ----

// ListCitiesHandler returns all cities, paginated.
func ListCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cities, err := deps.Cities.List(c.UserContext())
		if err != nil {
			return serviceError(c, err, "")
		}
		return paginate(c, cities)
	}
}

type createCityRequest struct {
	Name string `json:"name"`
}

// CreateCityHandler stores a new city.
func CreateCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createCityRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		city, err := deps.Cities.Create(c.UserContext(), req.Name)
		if err != nil {
			return serviceError(c, err, "")
		}
		return c.Status(fiber.StatusCreated).JSON(city)
	}
}

// GetCityHandler returns a city by ID.
func GetCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid city id")
		}
		city, err := deps.Cities.Get(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, "City not found")
		}
		return c.JSON(city)
	}
}

// CityTimelineHandler returns one simulation per year for a city.
func CityTimelineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid city id")
		}
		tl, err := deps.Simulations.Timeline(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, "City not found")
		}
		return c.JSON(tl)
	}
}

// ---- Simulations ----

// ListSimulationsHandler returns all simulations, paginated.
func ListSimulationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sims, err := deps.Simulations.List(c.UserContext())
		if err != nil {
			return serviceError(c, err, "")
		}
		return paginate(c, sims)
	}
}

// ListModesHandler returns the simulation modes.
func ListModesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		modes, err := deps.Simulations.Modes(c.UserContext())
		if err != nil {
			return serviceError(c, err, "")
		}
		if modes == nil {
			modes = []domain.Mode{}
		}
		return c.JSON(modes)
	}
}

// GetSimulationHandler returns a simulation by ID.
func GetSimulationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid simulation id")
		}
		sim, err := deps.Simulations.Get(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, "Simulation not found")
		}
		return c.JSON(sim)
	}
}

// CityYearsHandler returns the years for which a city has simulations.
func CityYearsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cityID, ok := paramID(c, "city_id")
		if !ok {
			return errBadRequest(c, "invalid city id")
		}
		years, err := deps.Simulations.YearsByCity(c.UserContext(), cityID)
		if err != nil {
			return serviceError(c, err, "City not found")
		}
		if years == nil {
			years = []int{}
		}
		return c.JSON(fiber.Map{"city_id": cityID, "years": years})
	}
}

// SimulationByCityYearModeHandler finds the simulation of a city for a year and mode.
func SimulationByCityYearModeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cityID, ok := paramID(c, "city_id")
		if !ok {
			return errBadRequest(c, "invalid city id")
		}
		modeID, ok := paramID(c, "mode_id")
		if !ok {
			return errBadRequest(c, "invalid mode id")
		}
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil {
			return errBadRequest(c, "invalid year")
		}
		sim, err := deps.Simulations.ByCityYearMode(c.UserContext(), cityID, year, modeID)
		if err != nil {
			return serviceError(c, err, "Simulation not found")
		}
		return c.JSON(sim)
	}
}

// ---- Geo objects ----

// parseBBoxQuery reads minx, miny, maxx and maxy. The filter applies only
// when all four are present; present reports whether it does.
func parseBBoxQuery(c *fiber.Ctx) (bbox *domain.BoundingBox, present, ok bool) {
	minx, miny := c.Query("minx"), c.Query("miny")
	maxx, maxy := c.Query("maxx"), c.Query("maxy")
	if minx == "" || miny == "" || maxx == "" || maxy == "" {
		return nil, false, true
	}
	bbox, ok = geospatial.ParseBoundingBox(minx, miny, maxx, maxy)
	return bbox, true, ok
}

// SimulationGeoObjectsHandler returns the objects of a simulation as a
// GeoJSON FeatureCollection, optionally restricted to a bounding box.
func SimulationGeoObjectsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		simID, ok := paramID(c, "simulation_id")
		if !ok {
			return errBadRequest(c, "invalid simulation id")
		}
		bbox, present, ok := parseBBoxQuery(c)
		if present && !ok {
			return errBadRequest(c, "Invalid bounding box parameters")
		}

		fc, err := deps.GeoObjects.ForSimulation(c.UserContext(), simID, bbox)
		if err != nil {
			return serviceError(c, err, "Simulation not found")
		}
		return respond(c, fc)
	}
}

// NearbyGeoObjectsHandler returns the objects of a simulation nearest to a point.
func NearbyGeoObjectsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		simID, ok := paramID(c, "simulation_id")
		if !ok {
			return errBadRequest(c, "invalid simulation id")
		}
		lon, okLon := queryFloat(c, "lon")
		lat, okLat := queryFloat(c, "lat")
		if !okLon || !okLat {
			return errBadRequest(c, "lon and lat are required")
		}
		var radius float64
		if strings.TrimSpace(c.Query("radius")) != "" {
			if radius, ok = queryFloat(c, "radius"); !ok {
				return errBadRequest(c, "radius must be a number")
			}
		}
		limit := c.QueryInt("limit", 0)

		fc, err := deps.GeoObjects.Nearby(c.UserContext(), simID, domain.GeoPoint{Lon: lon, Lat: lat}, radius, limit)
		if err != nil {
			return serviceError(c, err, "Simulation not found")
		}
		return respond(c, fc)
	}
}

// GetGeoObjectHandler returns a single object as a GeoJSON Feature.
func GetGeoObjectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid geo object id")
		}
		srid := c.QueryInt("srid", 0)

		f, err := deps.GeoObjects.Get(c.UserContext(), id, srid)
		if err != nil {
			return serviceError(c, err, "Geo object not found")
		}
		return respond(c, f)
	}
}

// GeoObjectTimelineHandler lists the simulations an object appears in.
func GeoObjectTimelineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return errBadRequest(c, "invalid geo object id")
		}
		sims, err := deps.GeoObjects.Timeline(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, "Geo object not found")
		}
		if sims == nil {
			sims = []domain.Simulation{}
		}
		return c.JSON(fiber.Map{"geo_object_id": id, "simulations": sims})
	}
}
