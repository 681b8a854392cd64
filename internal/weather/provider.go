package weather

import (
	"context"
	"time"
)

// Provider abstracts a weather data source (e.g. WeatherAPI.com, api.weather.gov).
type Provider interface {
	Name() string
	CurrentWeather(ctx context.Context, q Query) (CurrentWeatherResponse, error)
	Forecast(ctx context.Context, q Query, days int) (ForecastResponse, error)
}

// LocationSearcher is implemented by providers that can suggest locations for
// free text.
type LocationSearcher interface {
	SearchLocations(ctx context.Context, query string) ([]LocationSuggestion, error)
}

// History is the contract the history cache satisfies.
type History interface {
	Store(ctx context.Context, key string, forecast ForecastResponse, current CurrentWeatherResponse) error
	Window(key string, forecast []ForecastDay, ref time.Time) []WindowDay
}

// WindowDay is one labelled slot of the rolling display window.
type WindowDay struct {
	Label string      `json:"label"`
	Day   ForecastDay `json:"day"`
}

// DashboardResponse combines current conditions, the aligned forecast and the
// rolling history window for one location.
type DashboardResponse struct {
	Location Location          `json:"location"`
	Current  CurrentConditions `json:"current"`
	Forecast []ForecastDay     `json:"forecast"`
	Window   []WindowDay       `json:"window"`
	Provider string            `json:"provider"`
}
