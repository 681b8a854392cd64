package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/history"
	"github.com/i474232898/weather-dashboard/internal/preferences"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

// codeBadRequest is reported for malformed requests that never reach a
// provider.
const codeBadRequest = 4000

var validate = validator.New()

// Deps are the components the routes serve. Nil components leave their
// routes unregistered.
type Deps struct {
	Service     *weather.Service
	History     *history.Cache
	Preferences *preferences.Store
	Proxy       *providers.WeatherGovProxy
	Logger      *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{"status": "ok", "service": "weather-dashboard"}
		if deps.Service != nil {
			body["providers"] = deps.Service.Providers()
		}
		return c.JSON(body)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")
	if deps.Service != nil {
		registerWeatherRoutes(v1, deps.Service)
	}
	if deps.History != nil {
		registerHistoryRoutes(v1, deps.History)
	}
	if deps.Preferences != nil {
		registerPreferenceRoutes(v1, deps.Preferences)
	}
	if deps.Proxy != nil {
		app.Get("/api/weather-proxy", proxyHandler(deps.Proxy, deps.Logger))
	}
}

func registerWeatherRoutes(v1 fiber.Router, service *weather.Service) {
	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return writeError(c, err)
		}
		resp, err := service.CurrentWeather(c.UserContext(), c.Query("provider"), q)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(resp)
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return writeError(c, err)
		}
		days, err := parseDays(c)
		if err != nil {
			return writeError(c, err)
		}
		resp, err := service.Forecast(c.UserContext(), c.Query("provider"), q, days)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(resp)
	})

	v1.Get("/weather/search", func(c *fiber.Ctx) error {
		results, err := service.SearchLocations(c.UserContext(), c.Query("provider"), c.Query("q"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(results)
	})

	v1.Get("/weather/dashboard", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return writeError(c, err)
		}
		resp, err := service.Dashboard(c.UserContext(), c.Query("provider"), q)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(resp)
	})
}

// coordinateQuery holds the lat/lon form of a location query.
type coordinateQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

// parseLocationQuery accepts either q=<name or "lat,lon"> or lat=&lon=.
func parseLocationQuery(c *fiber.Ctx) (weather.Query, error) {
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		return weather.ParseQuery(q), nil
	}

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return weather.Query{}, weather.ErrMissingQuery
	}

	var coords coordinateQuery
	var err error
	if coords.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return weather.Query{}, badRequest("lat must be a number")
	}
	if coords.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return weather.Query{}, badRequest("lon must be a number")
	}
	if err := validate.Struct(coords); err != nil {
		return weather.Query{}, badRequest("lat must be within [-90,90] and lon within [-180,180]")
	}
	return weather.ByCoordinates(coords.Lat, coords.Lon), nil
}

// parseDays reads the optional days parameter; zero means the default.
func parseDays(c *fiber.Ctx) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, weather.ErrInvalidDays
	}
	if days == 0 {
		return 0, weather.ErrInvalidDays
	}
	return days, nil
}

func badRequest(message string) error {
	return &weather.APIError{Code: codeBadRequest, Message: message, Status: fiber.StatusBadRequest}
}

// writeError renders err as {"error":{"code":N,"message":"..."}}.
func writeError(c *fiber.Ctx, err error) error {
	apiErr := weather.Classify(err)
	return c.Status(apiErr.Status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

// ErrorHandler renders errors that escape the handlers, such as unknown
// routes, in the same shape as handler errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fiber.Map{"code": fe.Code, "message": fe.Message},
		})
	}
	return writeError(c, err)
}
