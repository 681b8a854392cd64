package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ProxyTimeout bounds one forwarded request.
const ProxyTimeout = 15 * time.Second

// ProxyResponse is an upstream reply passed through verbatim.
type ProxyResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// WeatherGovProxy forwards allow-listed paths to api.weather.gov with the
// headers the upstream requires.
type WeatherGovProxy struct {
	baseURL   string
	userAgent string
	client    *http.Client
	timeout   time.Duration
	logger    *zap.Logger
}

// NewWeatherGovProxy creates a forwarder. A zero cfg.Timeout selects
// ProxyTimeout.
func NewWeatherGovProxy(cfg HTTPClientConfig, baseURL, userAgent string, logger *zap.Logger) *WeatherGovProxy {
	if cfg.Timeout <= 0 {
		cfg.Timeout = ProxyTimeout
	}
	cfg = cfg.withDefaults()
	if baseURL == "" {
		baseURL = WeatherGovBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherGovProxy{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    cfg.Client,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

// Forward validates rawPath and relays the request. Any upstream status,
// including 4xx and 5xx, is returned as a ProxyResponse; only rejection and
// transport failures are errors.
func (p *WeatherGovProxy) Forward(ctx context.Context, rawPath string) (ProxyResponse, error) {
	path, err := ValidateWeatherGovPath(rawPath)
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues("rejected").Inc()
		p.logger.Warn("proxy path rejected", zap.String("path", rawPath), zap.Error(err))
		return ProxyResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return ProxyResponse{}, fmt.Errorf("building proxy request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", geoJSON)

	resp, err := p.client.Do(req)
	if err != nil {
		return ProxyResponse{}, p.transportError(path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return ProxyResponse{}, p.transportError(path, err)
	}

	metrics.ProxyRequestsTotal.WithLabelValues("forwarded").Inc()
	return ProxyResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (p *WeatherGovProxy) transportError(path string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		metrics.ProxyRequestsTotal.WithLabelValues("timeout").Inc()
		p.logger.Warn("proxy request timed out", zap.String("path", path))
		return fmt.Errorf("%w: %v", weather.ErrTimeout, err)
	}
	metrics.ProxyRequestsTotal.WithLabelValues("error").Inc()
	p.logger.Error("proxy request failed", zap.String("path", path), zap.Error(err))
	return fmt.Errorf("%w: %v", weather.ErrNetwork, err)
}
