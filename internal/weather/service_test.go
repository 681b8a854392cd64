package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeProvider struct {
	name     string
	days     int
	failures int32
	failWith error

	currentCalls  int32
	forecastCalls int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) fail() error {
	if atomic.AddInt32(&f.failures, -1) >= 0 {
		return f.failWith
	}
	return nil
}

func (f *fakeProvider) CurrentWeather(ctx context.Context, q Query) (CurrentWeatherResponse, error) {
	atomic.AddInt32(&f.currentCalls, 1)
	if err := f.fail(); err != nil {
		return CurrentWeatherResponse{}, err
	}
	return CurrentWeatherResponse{
		Location: Location{Name: "Denver", TimeZone: "America/Denver", LocalTime: "2025-09-16 10:00"},
		Current:  CurrentConditions{TempC: 22},
		Provider: f.name,
	}, nil
}

func (f *fakeProvider) Forecast(ctx context.Context, q Query, days int) (ForecastResponse, error) {
	atomic.AddInt32(&f.forecastCalls, 1)
	if err := f.fail(); err != nil {
		return ForecastResponse{}, err
	}
	out := make([]ForecastDay, f.days)
	for i := range out {
		out[i] = ForecastDay{Date: fmt.Sprintf("2025-09-%02d", 16+i), Source: SourceProvider}
	}
	return ForecastResponse{
		Location: Location{Name: "Denver", TimeZone: "America/Denver"},
		Forecast: out,
		Provider: f.name,
	}, nil
}

func (f *fakeProvider) SearchLocations(ctx context.Context, query string) ([]LocationSuggestion, error) {
	return []LocationSuggestion{{Name: query}}, nil
}

type fakeHistory struct {
	mu       sync.Mutex
	keys     []string
	storeErr error
	ref      time.Time
}

func (h *fakeHistory) Store(ctx context.Context, key string, forecast ForecastResponse, current CurrentWeatherResponse) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = append(h.keys, key)
	return h.storeErr
}

func (h *fakeHistory) Window(key string, forecast []ForecastDay, ref time.Time) []WindowDay {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ref = ref
	out := make([]WindowDay, 0, len(forecast))
	for _, d := range forecast {
		out = append(out, WindowDay{Label: d.Date, Day: d})
	}
	return out
}

func TestForecastAlignsToRequestedDays(t *testing.T) {
	p := &fakeProvider{name: "fake", days: 7}
	svc := NewService([]Provider{p}, WithRetryWait(time.Millisecond))

	resp, err := svc.Forecast(context.Background(), "", ByName("Denver"), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Forecast) != 3 {
		t.Fatalf("expected 3 days, got %d", len(resp.Forecast))
	}

	resp, err = svc.Forecast(context.Background(), "", ByName("Denver"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Forecast) != DefaultForecastDays {
		t.Fatalf("expected default %d days, got %d", DefaultForecastDays, len(resp.Forecast))
	}
}

func TestForecastRejectsOutOfRangeDays(t *testing.T) {
	p := &fakeProvider{name: "fake", days: 5}
	svc := NewService([]Provider{p})

	for _, days := range []int{-1, MaxForecastDays + 1} {
		if _, err := svc.Forecast(context.Background(), "", ByName("Denver"), days); !errors.Is(err, ErrInvalidDays) {
			t.Fatalf("days=%d: expected ErrInvalidDays, got %v", days, err)
		}
	}
	if atomic.LoadInt32(&p.forecastCalls) != 0 {
		t.Fatal("provider must not be called for invalid input")
	}
}

func TestRetriesOnceOnNetworkError(t *testing.T) {
	p := &fakeProvider{name: "fake", days: 5, failures: 1, failWith: fmt.Errorf("%w: connection reset", ErrNetwork)}
	svc := NewService([]Provider{p}, WithRetryWait(time.Millisecond))

	if _, err := svc.CurrentWeather(context.Background(), "", ByName("Denver")); err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if got := atomic.LoadInt32(&p.currentCalls); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestRetryGivesUpAfterOneRetry(t *testing.T) {
	p := &fakeProvider{name: "fake", days: 5, failures: 5, failWith: fmt.Errorf("%w: connection reset", ErrNetwork)}
	svc := NewService([]Provider{p}, WithRetryWait(time.Millisecond))

	_, err := svc.CurrentWeather(context.Background(), "", ByName("Denver"))
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if got := atomic.LoadInt32(&p.currentCalls); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestNoRetryOnValidationError(t *testing.T) {
	vErr := &ValidationError{Schema: "current", Field: "current", Expected: "object", Received: "missing"}
	p := &fakeProvider{name: "fake", days: 5, failures: 5, failWith: vErr}
	svc := NewService([]Provider{p}, WithRetryWait(time.Millisecond))

	_, err := svc.CurrentWeather(context.Background(), "", ByName("Denver"))
	var got *ValidationError
	if !errors.As(err, &got) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if calls := atomic.LoadInt32(&p.currentCalls); calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestUnknownProvider(t *testing.T) {
	svc := NewService([]Provider{&fakeProvider{name: "fake"}})
	if _, err := svc.CurrentWeather(context.Background(), "nope", ByName("Denver")); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestSearchLocationsShortQuery(t *testing.T) {
	svc := NewService([]Provider{&fakeProvider{name: "fake"}})

	got, err := svc.SearchLocations(context.Background(), "", "L")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no suggestions, got %v, %v", got, err)
	}

	got, err = svc.SearchLocations(context.Background(), "", "é")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no suggestions for one multi-byte character, got %v, %v", got, err)
	}

	got, err = svc.SearchLocations(context.Background(), "", "Lo")
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one suggestion, got %v, %v", got, err)
	}
}

func TestDashboardStoresHistoryAndBuildsWindow(t *testing.T) {
	p := &fakeProvider{name: "fake", days: 5}
	h := &fakeHistory{storeErr: errors.New("disk full")}
	now := time.Date(2025, 9, 16, 16, 0, 0, 0, time.UTC)
	svc := NewService([]Provider{p}, WithHistory(h), WithClock(func() time.Time { return now }))

	resp, err := svc.Dashboard(context.Background(), "", ByName("Denver"))
	if err != nil {
		t.Fatalf("a failed history write must not fail the request: %v", err)
	}
	if len(resp.Forecast) != 5 || len(resp.Window) != 5 {
		t.Fatalf("expected 5 forecast days and window slots, got %d/%d", len(resp.Forecast), len(resp.Window))
	}
	if resp.Current.TempC != 22 {
		t.Fatalf("expected current conditions, got %+v", resp.Current)
	}
	if len(h.keys) != 1 || h.keys[0] != "denver" {
		t.Fatalf("expected history stored under denver, got %v", h.keys)
	}
	if h.ref.Location().String() != "America/Denver" || h.ref.Hour() != 10 {
		t.Fatalf("expected window reference in location time, got %v", h.ref)
	}
}

func TestDashboardFailsWhenEitherFetchFails(t *testing.T) {
	p := &fakeProvider{name: "fake", days: 5, failures: 10, failWith: ErrUnsupportedLocation}
	svc := NewService([]Provider{p}, WithHistory(&fakeHistory{}))

	if _, err := svc.Dashboard(context.Background(), "", ByName("Atlantis")); !errors.Is(err, ErrUnsupportedLocation) {
		t.Fatalf("expected ErrUnsupportedLocation, got %v", err)
	}
}
