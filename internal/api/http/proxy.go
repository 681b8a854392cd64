package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

// proxyHandler relays allow-listed api.weather.gov paths so browsers can
// reach the upstream without CORS or User-Agent restrictions. The upstream
// status and body pass through unchanged.
func proxyHandler(proxy *providers.WeatherGovProxy, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Query("path")
		if path == "" {
			metrics.ProxyRequestsTotal.WithLabelValues("missing_path").Inc()
			return writeError(c, badRequest("Missing path parameter"))
		}

		resp, err := proxy.Forward(c.UserContext(), path)
		if err != nil {
			logger.Warn("weather proxy request failed", zap.String("path", path), zap.Error(err))
			return writeError(c, err)
		}

		contentType := resp.ContentType
		if contentType == "" {
			contentType = "application/geo+json"
		}
		c.Set(fiber.HeaderContentType, contentType)
		return c.Status(resp.Status).Send(resp.Body)
	}
}
