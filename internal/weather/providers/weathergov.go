package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/timezone"
	"github.com/i474232898/weather-dashboard/internal/validation"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	// WeatherGovBaseURL is the US National Weather Service API root.
	WeatherGovBaseURL = "https://api.weather.gov"
	// WeatherGovName identifies the government provider.
	WeatherGovName = "weathergov"
	// DefaultUserAgent identifies this application to upstreams that
	// require it.
	DefaultUserAgent = "weather-dashboard/1.0"

	geoJSON = "application/geo+json"
)

// Grid is a resolved forecast office grid cell.
type Grid struct {
	ID       string
	X        int
	Y        int
	TimeZone string
	City     string
	Region   string
	Lat      float64
	Lon      float64
}

func (g Grid) path(suffix string) string {
	return fmt.Sprintf("/gridpoints/%s/%d,%d/%s", g.ID, g.X, g.Y, suffix)
}

// WeatherGovConfig configures the government provider.
type WeatherGovConfig struct {
	// BaseURL defaults to WeatherGovBaseURL.
	BaseURL string
	// ProxyURL, when set, routes every call through a same-origin proxy as
	// ProxyURL?path=<api path>.
	ProxyURL  string
	UserAgent string
	// Geocoder resolves name queries. Without one only coordinates work.
	Geocoder Geocoder
	// Timezones is consulted when /points omits timeZone.
	Timezones timezone.Resolver
	Logger    *zap.Logger
	Now       func() time.Time
}

// WeatherGovProvider implements weather.Provider against api.weather.gov.
// A coordinate is resolved to a grid cell first, then to the nearest
// observation station.
type WeatherGovProvider struct {
	baseURL   string
	proxyURL  string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
	geocoder  Geocoder
	timezones timezone.Resolver
	logger    *zap.Logger
	now       func() time.Time
}

// NewWeatherGovProvider creates the government provider.
func NewWeatherGovProvider(httpCfg HTTPClientConfig, cfg WeatherGovConfig) *WeatherGovProvider {
	p := &WeatherGovProvider{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		proxyURL:  cfg.ProxyURL,
		userAgent: cfg.UserAgent,
		httpCfg:   httpCfg.withDefaults(),
		circuit:   newBreaker(WeatherGovName),
		geocoder:  cfg.Geocoder,
		timezones: cfg.Timezones,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if p.baseURL == "" {
		p.baseURL = WeatherGovBaseURL
	}
	if p.userAgent == "" {
		p.userAgent = DefaultUserAgent
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

func (p *WeatherGovProvider) Name() string {
	return WeatherGovName
}

// CurrentWeather prefers the nearest station's latest observation and falls
// back to the forecast period spanning now.
func (p *WeatherGovProvider) CurrentWeather(ctx context.Context, q weather.Query) (weather.CurrentWeatherResponse, error) {
	grid, err := p.resolveQuery(ctx, q)
	if err != nil {
		return weather.CurrentWeatherResponse{}, err
	}

	forecast, err := p.forecastPeriods(ctx, grid)
	if err != nil {
		return weather.CurrentWeatherResponse{}, err
	}

	now := p.now()
	current, err := p.current(ctx, grid, forecast.Properties.Periods, now)
	if err != nil {
		return weather.CurrentWeatherResponse{}, err
	}

	return weather.CurrentWeatherResponse{
		Location: locationFromGrid(grid, now),
		Current:  current,
		Provider: WeatherGovName,
	}, nil
}

// Forecast returns up to DefaultForecastDays days starting today. The days
// argument is left to the caller's window alignment since the upstream
// publishes a fixed horizon.
func (p *WeatherGovProvider) Forecast(ctx context.Context, q weather.Query, _ int) (weather.ForecastResponse, error) {
	grid, err := p.resolveQuery(ctx, q)
	if err != nil {
		return weather.ForecastResponse{}, err
	}

	forecast, err := p.forecastPeriods(ctx, grid)
	if err != nil {
		return weather.ForecastResponse{}, err
	}

	now := p.now()
	today := weather.LocalTime(now, grid.TimeZone).Format(weather.DateLayout)
	days, err := transformPeriods(forecast.Properties.Periods, today)
	if err != nil {
		return weather.ForecastResponse{}, err
	}

	resp := weather.ForecastResponse{
		Location: locationFromGrid(grid, now),
		Forecast: days,
		Provider: WeatherGovName,
	}

	current, err := p.current(ctx, grid, forecast.Properties.Periods, now)
	switch {
	case err == nil:
		resp.Current = &current
	case errors.Is(err, weather.ErrWeatherDataUnavailable):
		p.logger.Debug("forecast served without current conditions",
			zap.String("grid", grid.ID), zap.Error(err))
	default:
		return weather.ForecastResponse{}, err
	}
	return resp, nil
}

// SearchLocations delegates to the configured geocoder.
func (p *WeatherGovProvider) SearchLocations(ctx context.Context, query string) ([]weather.LocationSuggestion, error) {
	if p.geocoder == nil {
		return []weather.LocationSuggestion{}, nil
	}
	return p.geocoder.Search(ctx, query)
}

func (p *WeatherGovProvider) resolveQuery(ctx context.Context, q weather.Query) (Grid, error) {
	if lat, lon, ok := q.Coordinates(); ok {
		return p.ResolvePoint(ctx, lat, lon)
	}

	name, _ := q.Name()
	if p.geocoder == nil {
		return Grid{}, fmt.Errorf("%w: name lookup for %q needs a geocoder", weather.ErrUnsupportedLocation, name)
	}
	matches, err := p.geocoder.Search(ctx, name)
	if err != nil {
		return Grid{}, err
	}
	if len(matches) == 0 {
		return Grid{}, fmt.Errorf("%w: no match for %q", weather.ErrUnsupportedLocation, name)
	}
	return p.ResolvePoint(ctx, matches[0].Lat, matches[0].Lon)
}

// ResolvePoint maps a coordinate to its forecast grid cell. Coordinates the
// upstream does not cover yield weather.ErrUnsupportedLocation.
func (p *WeatherGovProvider) ResolvePoint(ctx context.Context, lat, lon float64) (Grid, error) {
	if err := (weather.Location{Lat: lat, Lon: lon}).Validate(); err != nil {
		return Grid{}, fmt.Errorf("%w: %v", weather.ErrUnsupportedLocation, err)
	}

	var payload validation.GovPointPayload
	path := fmt.Sprintf("/points/%.4f,%.4f", lat, lon)
	if err := p.fetch(ctx, "points", path, validation.SchemaGovPoint, &payload); err != nil {
		var statusErr *upstreamStatusError
		if errors.As(err, &statusErr) &&
			(statusErr.Status == http.StatusNotFound || statusErr.Status == http.StatusBadRequest) {
			return Grid{}, fmt.Errorf("%w: %.4f,%.4f", weather.ErrUnsupportedLocation, lat, lon)
		}
		return Grid{}, p.mapError(err)
	}

	props := payload.Properties
	rel := props.RelativeLocation.Properties
	grid := Grid{
		ID:       *props.GridID,
		X:        *props.GridX,
		Y:        *props.GridY,
		TimeZone: props.TimeZone,
		City:     *rel.City,
		Region:   *rel.State,
		Lat:      lat,
		Lon:      lon,
	}

	if grid.TimeZone == "" && p.timezones != nil {
		tz, err := p.timezones.Timezone(lat, lon)
		if err != nil {
			p.logger.Warn("timezone lookup failed", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		} else {
			grid.TimeZone = tz
		}
	}
	return grid, nil
}

// NearestStation returns the first station listed for the grid cell, which
// the upstream orders by distance.
func (p *WeatherGovProvider) NearestStation(ctx context.Context, grid Grid) (string, error) {
	var payload validation.GovStationsPayload
	if err := p.fetch(ctx, "stations", grid.path("stations"), validation.SchemaGovStations, &payload); err != nil {
		return "", p.mapError(err)
	}
	if len(payload.Features) == 0 {
		return "", fmt.Errorf("%w: grid %s/%d,%d", weather.ErrNoStationsFound, grid.ID, grid.X, grid.Y)
	}
	return *payload.Features[0].Properties.StationIdentifier, nil
}

// LatestObservation fetches the station's most recent reading.
func (p *WeatherGovProvider) LatestObservation(ctx context.Context, station string) (*validation.GovObservationPayload, error) {
	var payload validation.GovObservationPayload
	path := fmt.Sprintf("/stations/%s/observations/latest", station)
	if err := p.fetch(ctx, "observations", path, validation.SchemaGovObservation, &payload); err != nil {
		return nil, p.mapError(err)
	}
	return &payload, nil
}

func (p *WeatherGovProvider) forecastPeriods(ctx context.Context, grid Grid) (*validation.GovForecastPayload, error) {
	var payload validation.GovForecastPayload
	if err := p.fetch(ctx, "forecast", grid.path("forecast"), validation.SchemaGovForecast, &payload); err != nil {
		return nil, p.mapError(err)
	}
	return &payload, nil
}

// current resolves current conditions: the station observation when one is
// usable, otherwise the period spanning now. Schema violations and transport
// failures propagate; a missing station or reading does not.
func (p *WeatherGovProvider) current(
	ctx context.Context,
	grid Grid,
	periods []validation.GovPeriod,
	now time.Time,
) (weather.CurrentConditions, error) {
	period := findCurrentPeriod(periods, now)
	isDay := period != nil && *period.IsDaytime

	obs, err := p.observation(ctx, grid)
	if err != nil {
		return weather.CurrentConditions{}, err
	}
	if obs != nil {
		if cur, ok := currentFromObservation(obs, isDay); ok {
			return cur, nil
		}
		p.logger.Debug("observation has no temperature, using forecast period", zap.String("grid", grid.ID))
	}

	if period == nil {
		return weather.CurrentConditions{}, fmt.Errorf("%w: no observation and no forecast period spans %s",
			weather.ErrWeatherDataUnavailable, now.UTC().Format(time.RFC3339))
	}
	return currentFromPeriod(period), nil
}

// observation returns nil without error when the grid has no station or the
// station has no latest reading.
func (p *WeatherGovProvider) observation(ctx context.Context, grid Grid) (*validation.GovObservationPayload, error) {
	station, err := p.NearestStation(ctx, grid)
	if err != nil {
		if errors.Is(err, weather.ErrNoStationsFound) {
			p.logger.Info("no observation stations, using forecast period", zap.String("grid", grid.ID))
			return nil, nil
		}
		return nil, err
	}

	obs, err := p.LatestObservation(ctx, station)
	if err != nil {
		var apiErr *weather.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			p.logger.Info("station has no latest observation", zap.String("station", station))
			return nil, nil
		}
		return nil, err
	}
	return obs, nil
}

// fetch issues one GET for an allow-listed API path, directly or through the
// configured proxy, and decodes the body against schema.
func (p *WeatherGovProvider) fetch(ctx context.Context, endpoint, path, schema string, dst any) error {
	path, err := ValidateWeatherGovPath(path)
	if err != nil {
		return err
	}

	target := p.baseURL + path
	if p.proxyURL != "" {
		target = p.proxyURL + "?path=" + url.QueryEscape(path)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", p.userAgent)
		req.Header.Set("Accept", geoJSON)
		return req, nil
	}

	body, err := doRequest(ctx, p.httpCfg, p.circuit, WeatherGovName, endpoint, buildRequest)
	if err != nil {
		return err
	}
	return validation.Decode(schema, body, dst)
}

// mapError converts an unexpected upstream status into the shared error
// vocabulary. A 403 in proxy mode means the proxy refused the path.
func (p *WeatherGovProvider) mapError(err error) error {
	var statusErr *upstreamStatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	if p.proxyURL != "" && statusErr.Status == http.StatusForbidden {
		return fmt.Errorf("%w: proxy refused request", weather.ErrProxyRejected)
	}
	return statusError(WeatherGovName, statusErr)
}
