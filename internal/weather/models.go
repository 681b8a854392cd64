package weather

import (
	"fmt"
	"time"
)

// Day sources distinguish provider data from values the history cache derived
// or filled in for display.
const (
	SourceProvider    = "provider"
	SourceDerived     = "derived"
	SourcePlaceholder = "placeholder"
)

// Condition is the canonical weather state shared by every provider.
type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

// Location represents a resolved place as reported by a provider.
type Location struct {
	Name           string  `json:"name"`
	Region         string  `json:"region"`
	Country        string  `json:"country"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	TimeZone       string  `json:"tz_id"`
	LocalTimeEpoch int64   `json:"localtime_epoch"`
	LocalTime      string  `json:"localtime"`
}

// Validate checks the coordinate ranges.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("latitude %.4f out of range [-90,90]", l.Lat)
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("longitude %.4f out of range [-180,180]", l.Lon)
	}
	return nil
}

// Key returns a canonical string key for indexing this location in caches.
func (l Location) Key() string {
	if l.Name != "" {
		return fmt.Sprintf("%s:%s:%s", l.Name, l.Region, l.Country)
	}
	return fmt.Sprintf("%.4f,%.4f", l.Lat, l.Lon)
}

// CurrentConditions is the normalized reading at a point in time. Only one unit
// of each pair comes from the provider; the other is derived.
type CurrentConditions struct {
	LastUpdatedEpoch int64     `json:"last_updated_epoch"`
	LastUpdated      string    `json:"last_updated"`
	TempC            float64   `json:"temp_c"`
	TempF            float64   `json:"temp_f"`
	FeelsLikeC       float64   `json:"feelslike_c"`
	FeelsLikeF       float64   `json:"feelslike_f"`
	IsDay            bool      `json:"is_day"`
	Condition        Condition `json:"condition"`
	WindKph          float64   `json:"wind_kph"`
	WindMph          float64   `json:"wind_mph"`
	WindDegree       int       `json:"wind_degree"`
	WindDir          string    `json:"wind_dir"`
	PressureMb       float64   `json:"pressure_mb"`
	PressureIn       float64   `json:"pressure_in"`
	PrecipMm         float64   `json:"precip_mm"`
	PrecipIn         float64   `json:"precip_in"`
	Humidity         int       `json:"humidity"`
	Cloud            int       `json:"cloud"`
	VisKm            float64   `json:"vis_km"`
	VisMiles         float64   `json:"vis_miles"`
	UV               float64   `json:"uv"`
}

// Temperature holds one reading in both unit systems.
type Temperature struct {
	C float64 `json:"c"`
	F float64 `json:"f"`
}

// DaySummary aggregates a calendar day. A nil temperature means the provider
// did not supply it.
type DaySummary struct {
	MaxTemp           *Temperature `json:"maxtemp"`
	MinTemp           *Temperature `json:"mintemp"`
	AvgTemp           *Temperature `json:"avgtemp"`
	MaxWindKph        float64      `json:"maxwind_kph"`
	MaxWindMph        float64      `json:"maxwind_mph"`
	TotalPrecipMm     float64      `json:"totalprecip_mm"`
	TotalPrecipIn     float64      `json:"totalprecip_in"`
	AvgVisKm          float64      `json:"avgvis_km"`
	AvgVisMiles       float64      `json:"avgvis_miles"`
	AvgHumidity       int          `json:"avghumidity"`
	DailyWillItRain   bool         `json:"daily_will_it_rain"`
	DailyChanceOfRain int          `json:"daily_chance_of_rain"`
	DailyWillItSnow   bool         `json:"daily_will_it_snow"`
	DailyChanceOfSnow int          `json:"daily_chance_of_snow"`
	Condition         Condition    `json:"condition"`
	UV                float64      `json:"uv"`
}

// Astro carries the astronomy record for a day.
type Astro struct {
	Sunrise          string `json:"sunrise"`
	Sunset           string `json:"sunset"`
	Moonrise         string `json:"moonrise"`
	Moonset          string `json:"moonset"`
	MoonPhase        string `json:"moon_phase"`
	MoonIllumination int    `json:"moon_illumination"`
}

// ForecastDay is one calendar day of a forecast, dated in provider-local time.
type ForecastDay struct {
	Date      string     `json:"date"`
	DateEpoch int64      `json:"date_epoch"`
	Day       DaySummary `json:"day"`
	Astro     Astro      `json:"astro"`
	Source    string     `json:"source"`
}

// CurrentWeatherResponse is the normalized current-conditions result.
type CurrentWeatherResponse struct {
	Location Location          `json:"location"`
	Current  CurrentConditions `json:"current"`
	Provider string            `json:"provider"`
}

// ForecastResponse is the normalized forecast result.
type ForecastResponse struct {
	Location Location           `json:"location"`
	Current  *CurrentConditions `json:"current,omitempty"`
	Forecast []ForecastDay      `json:"forecast"`
	Provider string             `json:"provider"`
}

// LocationSuggestion is one entry of a location search.
type LocationSuggestion struct {
	ID      int64   `json:"id,omitempty"`
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	URL     string  `json:"url,omitempty"`
}

// DateLayout is the calendar-date format used for forecast days.
const DateLayout = "2006-01-02"

// DateEpoch returns the unix timestamp of midnight UTC for a forecast date.
func DateEpoch(date string) int64 {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0
	}
	return t.Unix()
}
