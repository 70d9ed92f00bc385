package http

import (
	"time"

	"github.com/citysim/histmap/internal/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(deprecatedRoutes))

	api := app.Group("/api")

	// Health checks run without the request timeout.
	api.Get("/health", HealthHandler(deps))
	api.Get("/ready", ReadyHandler(deps))
	api.Get("/healthcheck/db", DBHealthHandler(deps))

	api.Get("/cities", withTimeout(ListCitiesHandler(deps)))
	api.Post("/cities", withTimeout(CreateCityHandler(deps)))
	api.Get("/cities/:id", withTimeout(GetCityHandler(deps)))
	api.Get("/cities/:id/timeline", withTimeout(CityTimelineHandler(deps)))

	api.Get("/simulations", withTimeout(ListSimulationsHandler(deps)))
	api.Get("/simulations/modes", withTimeout(ListModesHandler(deps)))
	api.Get("/simulations/city/:city_id/years", withTimeout(CityYearsHandler(deps)))
	api.Get("/simulations/city/:city_id/year/:year/mode/:mode_id", withTimeout(SimulationByCityYearModeHandler(deps)))
	api.Get("/simulations/:id", withTimeout(GetSimulationHandler(deps)))

	api.Get("/geo-objects/simulation/:simulation_id", withTimeout(SimulationGeoObjectsHandler(deps)))
	api.Get("/geo-objects/simulation/:simulation_id/nearby", withTimeout(NearbyGeoObjectsHandler(deps)))
	api.Get("/geo-objects/:id", withTimeout(GetGeoObjectHandler(deps)))
	api.Get("/geo-objects/:id/timeline", withTimeout(GeoObjectTimelineHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

func withTimeout(h fiber.Handler) fiber.Handler {
	return timeout.NewWithContext(h, requestTimeout)
}
