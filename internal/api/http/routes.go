package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/i474232898/weather-cache-api/internal/weather"
)

var validate = validator.New()

// WeatherLookup is the lookup operation the HTTP surface exposes.
type WeatherLookup interface {
	Lookup(ctx context.Context, city string) (weather.Record, bool, error)
}

// Pinger reports the health of the cache backend.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service WeatherLookup, cache Pinger) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Weather API running!")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := cache.Ping(ctx); err != nil {
			log.Warnw("health check: cache ping failed", "cache", cache.Name(), "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "degraded",
				"service": serviceName,
				"cache":   cache.Name(),
				"error":   "cache unreachable",
			})
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
			"cache":   cache.Name(),
		})
	})

	api := app.Group("/api")

	api.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, found, err := service.Lookup(c.UserContext(), q.City)
		if err != nil {
			switch {
			case errors.Is(err, weather.ErrConfiguration):
				return fiber.NewError(fiber.StatusServiceUnavailable, "weather provider is not configured")
			case errors.Is(err, weather.ErrProvider):
				return fiber.NewError(fiber.StatusBadGateway, "weather provider request failed")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
			}
		}
		if !found {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "City not found",
				"city":  q.City,
			})
		}

		return c.JSON(newWeatherResponse(rec))
	})
}

// RegisterMetrics exposes a net/http metrics handler at /metrics.
func RegisterMetrics(app *fiber.App, h http.Handler) {
	app.Get("/metrics", adaptor.HTTPHandler(h))
}

// weatherQuery holds the query parameters of the weather endpoint.
type weatherQuery struct {
	City string `validate:"required,min=2,max=50"`
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	q := weatherQuery{City: c.Query("city")}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

type weatherResponse struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	Conditions  string  `json:"conditions"`
	Humidity    float64 `json:"humidity"`
}

func newWeatherResponse(r weather.Record) weatherResponse {
	return weatherResponse{
		City:        r.City,
		Temperature: r.Temperature,
		Conditions:  r.Conditions,
		Humidity:    r.Humidity,
	}
}
