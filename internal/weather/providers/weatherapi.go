package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/validation"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// WeatherAPIBaseURL is the commercial provider's API root.
const WeatherAPIBaseURL = "https://api.weatherapi.com/v1"

// WeatherAPIName identifies the commercial provider.
const WeatherAPIName = "weatherapi"

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com. Its
// payloads arrive pre-bucketed by date in metric units.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewWeatherAPIProvider creates the commercial provider. An empty baseURL
// selects WeatherAPIBaseURL.
func NewWeatherAPIProvider(cfg HTTPClientConfig, apiKey, baseURL string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = WeatherAPIBaseURL
	}
	return &WeatherAPIProvider{
		name:    WeatherAPIName,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: cfg.withDefaults(),
		circuit: newBreaker(WeatherAPIName),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// CurrentWeather calls current.json.
func (p *WeatherAPIProvider) CurrentWeather(ctx context.Context, q weather.Query) (weather.CurrentWeatherResponse, error) {
	body, err := p.get(ctx, "current.json", url.Values{"q": {q.String()}})
	if err != nil {
		return weather.CurrentWeatherResponse{}, err
	}

	var payload validation.CurrentPayload
	if err := validation.Decode(validation.SchemaCurrent, body, &payload); err != nil {
		return weather.CurrentWeatherResponse{}, err
	}

	return weather.CurrentWeatherResponse{
		Location: toLocation(payload.Location),
		Current:  toCurrent(payload.Current),
		Provider: p.name,
	}, nil
}

// Forecast calls forecast.json for the requested number of days.
func (p *WeatherAPIProvider) Forecast(ctx context.Context, q weather.Query, days int) (weather.ForecastResponse, error) {
	params := url.Values{
		"q":      {q.String()},
		"days":   {strconv.Itoa(days)},
		"aqi":    {"no"},
		"alerts": {"no"},
	}
	body, err := p.get(ctx, "forecast.json", params)
	if err != nil {
		return weather.ForecastResponse{}, err
	}

	var payload validation.ForecastPayload
	if err := validation.Decode(validation.SchemaForecast, body, &payload); err != nil {
		return weather.ForecastResponse{}, err
	}

	current := toCurrent(payload.Current)
	forecastDays := make([]weather.ForecastDay, 0, len(payload.Forecast.Forecastday))
	for _, d := range payload.Forecast.Forecastday {
		forecastDays = append(forecastDays, toForecastDay(d))
	}

	return weather.ForecastResponse{
		Location: toLocation(payload.Location),
		Current:  &current,
		Forecast: forecastDays,
		Provider: p.name,
	}, nil
}

// SearchLocations calls search.json.
func (p *WeatherAPIProvider) SearchLocations(ctx context.Context, query string) ([]weather.LocationSuggestion, error) {
	body, err := p.get(ctx, "search.json", url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}

	var results []validation.SearchResult
	if err := validation.Decode(validation.SchemaSearch, body, &results); err != nil {
		return nil, err
	}

	out := make([]weather.LocationSuggestion, 0, len(results))
	for _, r := range results {
		out = append(out, weather.LocationSuggestion{
			ID:      r.ID,
			Name:    *r.Name,
			Region:  r.Region,
			Country: r.Country,
			Lat:     *r.Lat,
			Lon:     *r.Lon,
			URL:     r.URL,
		})
	}
	return out, nil
}

func (p *WeatherAPIProvider) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if p.apiKey == "" {
		return nil, &weather.APIError{Code: 1002, Message: "API key is not configured.", Status: http.StatusUnauthorized}
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		for k, v := range params {
			values[k] = v
		}
		values.Set("key", p.apiKey)
		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	body, err := doRequest(ctx, p.httpCfg, p.circuit, p.name, endpoint, buildRequest)
	if err != nil {
		var statusErr *upstreamStatusError
		if errors.As(err, &statusErr) {
			return nil, p.providerError(statusErr)
		}
		return nil, err
	}
	return body, nil
}

// providerError turns a non-2xx response into the provider's typed error when
// the body carries one.
func (p *WeatherAPIProvider) providerError(e *upstreamStatusError) error {
	var payload validation.ErrorPayload
	if err := validation.Decode(validation.SchemaError, e.Body, &payload); err != nil {
		return statusError(p.name, e)
	}
	apiErr := &weather.APIError{
		Code:    *payload.Error.Code,
		Message: *payload.Error.Message,
		Err:     e,
	}
	if e.Status >= 500 {
		apiErr.Status = http.StatusBadGateway
	}
	return apiErr
}

func toLocation(l *validation.Location) weather.Location {
	return weather.Location{
		Name:           *l.Name,
		Region:         *l.Region,
		Country:        *l.Country,
		Lat:            *l.Lat,
		Lon:            *l.Lon,
		TimeZone:       *l.TzID,
		LocalTimeEpoch: *l.LocaltimeEpoch,
		LocalTime:      *l.Localtime,
	}
}

func toCondition(c *validation.Condition) weather.Condition {
	code := weather.CanonicalCode(*c.Code, *c.Text)
	return weather.NewCondition(code, *c.Text, *c.Icon)
}

// toCurrent keeps the metric fields and derives the imperial ones.
func toCurrent(c *validation.Current) weather.CurrentConditions {
	return weather.CurrentConditions{
		LastUpdatedEpoch: *c.LastUpdatedEpoch,
		LastUpdated:      *c.LastUpdated,
		TempC:            *c.TempC,
		TempF:            weather.Round1(weather.CelsiusToFahrenheit(*c.TempC)),
		FeelsLikeC:       *c.FeelslikeC,
		FeelsLikeF:       weather.Round1(weather.CelsiusToFahrenheit(*c.FeelslikeC)),
		IsDay:            *c.IsDay == 1,
		Condition:        toCondition(c.Condition),
		WindKph:          *c.WindKph,
		WindMph:          weather.Round1(weather.KphToMph(*c.WindKph)),
		WindDegree:       int(*c.WindDegree),
		WindDir:          *c.WindDir,
		PressureMb:       *c.PressureMb,
		PressureIn:       weather.Round2(weather.MbToInHg(*c.PressureMb)),
		PrecipMm:         *c.PrecipMm,
		PrecipIn:         weather.Round2(weather.MmToIn(*c.PrecipMm)),
		Humidity:         int(*c.Humidity),
		Cloud:            int(*c.Cloud),
		VisKm:            *c.VisKm,
		VisMiles:         weather.Round1(weather.KmToMi(*c.VisKm)),
		UV:               *c.UV,
	}
}

func toForecastDay(d validation.ForecastDay) weather.ForecastDay {
	day := d.Day
	return weather.ForecastDay{
		Date:      *d.Date,
		DateEpoch: *d.DateEpoch,
		Day: weather.DaySummary{
			MaxTemp:           weather.NewTemperatureC(*day.MaxtempC),
			MinTemp:           weather.NewTemperatureC(*day.MintempC),
			AvgTemp:           weather.NewTemperatureC(*day.AvgtempC),
			MaxWindKph:        *day.MaxwindKph,
			MaxWindMph:        weather.Round1(weather.KphToMph(*day.MaxwindKph)),
			TotalPrecipMm:     *day.TotalprecipMm,
			TotalPrecipIn:     weather.Round2(weather.MmToIn(*day.TotalprecipMm)),
			AvgVisKm:          *day.AvgvisKm,
			AvgVisMiles:       weather.Round1(weather.KmToMi(*day.AvgvisKm)),
			AvgHumidity:       int(*day.Avghumidity),
			DailyWillItRain:   *day.DailyWillItRain == 1,
			DailyChanceOfRain: *day.DailyChanceOfRain,
			DailyWillItSnow:   *day.DailyWillItSnow == 1,
			DailyChanceOfSnow: *day.DailyChanceOfSnow,
			Condition:         toCondition(day.Condition),
			UV:                *day.UV,
		},
		Astro: weather.Astro{
			Sunrise:          *d.Astro.Sunrise,
			Sunset:           *d.Astro.Sunset,
			Moonrise:         *d.Astro.Moonrise,
			Moonset:          *d.Astro.Moonset,
			MoonPhase:        *d.Astro.MoonPhase,
			MoonIllumination: *d.Astro.MoonIllumination,
		},
		Source: weather.SourceProvider,
	}
}
