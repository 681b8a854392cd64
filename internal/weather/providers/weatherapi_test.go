package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const weatherAPILocation = `{"name":"London","region":"City of London, Greater London","country":"United Kingdom","lat":51.52,"lon":-0.11,"tz_id":"Europe/London","localtime_epoch":1758016800,"localtime":"2025-09-16 11:00"}`

const weatherAPICurrent = `{"last_updated_epoch":1758016800,"last_updated":"2025-09-16 11:00","temp_c":18.0,"temp_f":64.4,"is_day":1,
	"condition":{"text":"Partly cloudy","icon":"//cdn.weatherapi.com/weather/64x64/day/116.png","code":1003},
	"wind_mph":8.1,"wind_kph":13.0,"wind_degree":240,"wind_dir":"WSW","pressure_mb":1015.0,"pressure_in":29.97,
	"precip_mm":0.0,"precip_in":0.0,"humidity":72,"cloud":50,"feelslike_c":17.0,"feelslike_f":62.6,
	"vis_km":10.0,"vis_miles":6.0,"uv":4.0}`

func weatherAPIDay(date string) string {
	return fmt.Sprintf(`{"date":%q,"date_epoch":1758067200,
	"day":{"maxtemp_c":21.3,"maxtemp_f":70.3,"mintemp_c":12.1,"mintemp_f":53.8,"avgtemp_c":16.4,"avgtemp_f":61.5,
	  "maxwind_mph":11.6,"maxwind_kph":18.7,"totalprecip_mm":1.2,"totalprecip_in":0.05,"avgvis_km":9.8,"avgvis_miles":6.0,
	  "avghumidity":70,"daily_will_it_rain":1,"daily_chance_of_rain":84,"daily_will_it_snow":0,"daily_chance_of_snow":0,
	  "condition":{"text":"Patchy rain nearby","icon":"//cdn.weatherapi.com/weather/64x64/day/176.png","code":1063},"uv":3.0},
	"astro":{"sunrise":"06:36 AM","sunset":"07:10 PM","moonrise":"01:02 AM","moonset":"05:14 PM","moon_phase":"Waning Crescent","moon_illumination":31}}`, date)
}

func weatherAPIForecast(days int) string {
	entries := make([]string, 0, days)
	for i := 0; i < days; i++ {
		entries = append(entries, weatherAPIDay(fmt.Sprintf("2025-09-%02d", 16+i)))
	}
	return fmt.Sprintf(`{"location":%s,"current":%s,"forecast":{"forecastday":[%s]}}`,
		weatherAPILocation, weatherAPICurrent, strings.Join(entries, ","))
}

func TestWeatherAPIForecastKeepsUpstreamDays(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, weatherAPIForecast(3))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(HTTPClientConfig{Client: srv.Client()}, "test-key", srv.URL)
	resp, err := p.Forecast(context.Background(), weather.ByName("London"), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"key=test-key", "days=3", "q=London"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if len(resp.Forecast) != 3 {
		t.Fatalf("expected 3 days, got %d", len(resp.Forecast))
	}
	if resp.Provider != WeatherAPIName {
		t.Errorf("expected provider %q, got %q", WeatherAPIName, resp.Provider)
	}

	day := resp.Forecast[0]
	if day.Day.MaxTemp == nil || day.Day.MaxTemp.C != 21.3 {
		t.Fatalf("expected max 21.3C, got %+v", day.Day.MaxTemp)
	}
	if day.Day.Condition.Code != weather.CodeLightRain {
		t.Errorf("expected code %d, got %d", weather.CodeLightRain, day.Day.Condition.Code)
	}
	if day.Day.Condition.Icon != "https://cdn.weatherapi.com/weather/64x64/day/176.png" {
		t.Errorf("icon not absolutized: %q", day.Day.Condition.Icon)
	}
	if !day.Day.DailyWillItRain {
		t.Error("expected will-it-rain")
	}
	if day.Source != weather.SourceProvider {
		t.Errorf("expected source provider, got %q", day.Source)
	}

	if resp.Current == nil {
		t.Fatal("expected current conditions")
	}
	if resp.Current.TempF != 64.4 {
		t.Errorf("expected derived 64.4F, got %v", resp.Current.TempF)
	}
	if resp.Current.PressureIn != 29.97 {
		t.Errorf("expected derived 29.97 inHg, got %v", resp.Current.PressureIn)
	}
}

func TestWeatherAPIErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":1006,"message":"No matching location found."}}`)
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(HTTPClientConfig{Client: srv.Client()}, "test-key", srv.URL)
	_, err := p.CurrentWeather(context.Background(), weather.ByName("Atlantis"))

	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != weather.CodeLocationNotFound {
		t.Fatalf("expected code 1006, got %d", apiErr.Code)
	}
	if got := weather.Classify(err).Status; got != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", got)
	}
	if weather.Retryable(err) {
		t.Fatal("a 1006 must not be retried")
	}
}

func TestWeatherAPIInvalidPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"location":%s}`, weatherAPILocation)
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(HTTPClientConfig{Client: srv.Client()}, "test-key", srv.URL)
	_, err := p.CurrentWeather(context.Background(), weather.ByName("London"))

	var vErr *weather.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "current" {
		t.Fatalf("expected field current, got %q", vErr.Field)
	}
}

func TestWeatherAPIMissingKey(t *testing.T) {
	p := NewWeatherAPIProvider(HTTPClientConfig{}, "", "http://127.0.0.1:0")
	_, err := p.CurrentWeather(context.Background(), weather.ByName("London"))
	if got := weather.Classify(err).Status; got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (%v)", got, err)
	}
}

func TestWeatherAPISearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `[{"id":2801268,"name":"London","region":"City of London, Greater London","country":"United Kingdom","lat":51.52,"lon":-0.11,"url":"london-city-of-london-greater-london-united-kingdom"}]`)
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(HTTPClientConfig{Client: srv.Client()}, "test-key", srv.URL)
	results, err := p.SearchLocations(context.Background(), "Lond")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Name != "London" || results[0].ID != 2801268 {
		t.Fatalf("unexpected results: %+v", results)
	}
}
