package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/history"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// locationKey normalizes the location parameter the same way the dashboard
// keys its history records.
func locationKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return weather.ParseQuery(raw).Key()
}

func registerHistoryRoutes(v1 fiber.Router, cache *history.Cache) {
	// GET /history                               -> cached location keys
	// GET /history?location=X                    -> every cached day for X
	// GET /history?location=X&date=YYYY-MM-DD    -> one day
	// GET /history?location=X&dates=D1,D2        -> coverage map
	v1.Get("/history", func(c *fiber.Ctx) error {
		key := locationKey(c.Query("location"))
		if key == "" {
			return c.JSON(fiber.Map{"locations": cache.Locations()})
		}

		if date := c.Query("date"); date != "" {
			if _, err := time.Parse(weather.DateLayout, date); err != nil {
				return writeError(c, badRequest("date must be YYYY-MM-DD"))
			}
			day, ok := cache.Retrieve(key, date)
			if !ok {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": fiber.Map{"code": weather.CodeLocationNotFound, "message": "no cached day for requested date"},
				})
			}
			return c.JSON(day)
		}

		if dates := c.Query("dates"); dates != "" {
			return c.JSON(fiber.Map{"location": key, "coverage": cache.Coverage(key, strings.Split(dates, ","))})
		}

		return c.JSON(fiber.Map{"location": key, "days": cache.Days(key)})
	})

	v1.Delete("/history", func(c *fiber.Ctx) error {
		if err := cache.Clear(c.UserContext(), locationKey(c.Query("location"))); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
