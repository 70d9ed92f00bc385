package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/api/health" || path == "/api/ready" || path == "/api/healthcheck/db":
		return "no-cache"

	case path == "/metrics":
		return "no-cache"

	case path == "/api/simulations/modes":
		return "public, max-age=3600" // modes are seed data

	case strings.HasSuffix(path, "/nearby"):
		return "public, max-age=60"

	case strings.HasPrefix(path, "/api/geo-objects/"):
		return "public, max-age=300"

	case strings.HasPrefix(path, "/api/cities") || strings.HasPrefix(path, "/api/simulations"):
		return "public, max-age=600"

	case strings.HasPrefix(path, "/api/"):
		return "public, max-age=300"
	}
	return ""
}
