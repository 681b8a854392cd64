package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/validation"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Geocoder turns free-text place names into coordinates for providers whose
// API only accepts a lat/lon.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]weather.LocationSuggestion, error)
}

const (
	NominatimBaseURL = "https://nominatim.openstreetmap.org"
	nominatimName    = "nominatim"
	nominatimLimit   = 5
)

// NominatimGeocoder queries OpenStreetMap's Nominatim, restricted to the US.
// Calls are spaced at least one second apart and results are cached.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
	cache     *cache.Cache

	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

// NewNominatimGeocoder creates a geocoder. An empty baseURL selects the
// public instance. Nominatim requires an identifying User-Agent.
func NewNominatimGeocoder(cfg HTTPClientConfig, baseURL, userAgent string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: common.FirstNonEmpty(userAgent, DefaultUserAgent),
		httpCfg:   cfg.withDefaults(),
		circuit:   newBreaker(nominatimName),
		cache:     cache.New(10*time.Minute, 20*time.Minute),
		interval:  time.Second,
	}
}

// Search returns up to five matches for query.
func (g *NominatimGeocoder) Search(ctx context.Context, query string) ([]weather.LocationSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, weather.ErrMissingQuery
	}

	cacheKey := strings.ToLower(query)
	if cached, found := g.cache.Get(cacheKey); found {
		return cached.([]weather.LocationSuggestion), nil
	}

	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"addressdetails": {"1"},
		"countrycodes":   {"us"},
		"limit":          {strconv.Itoa(nominatimLimit)},
	}
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", g.userAgent)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	body, err := doRequest(ctx, g.httpCfg, g.circuit, nominatimName, "search", buildRequest)
	if err != nil {
		var statusErr *upstreamStatusError
		if errors.As(err, &statusErr) {
			return nil, statusError(nominatimName, statusErr)
		}
		return nil, err
	}

	var results []validation.GeocodeResult
	if err := validation.Decode(validation.SchemaGeocode, body, &results); err != nil {
		return nil, err
	}

	out := make([]weather.LocationSuggestion, 0, len(results))
	for _, r := range results {
		lat, _ := strconv.ParseFloat(*r.Lat, 64)
		lon, _ := strconv.ParseFloat(*r.Lon, 64)
		name := common.FirstNonEmpty(r.Address.City, r.Address.Town, r.Address.Village, r.Address.Hamlet,
			strings.TrimSpace(strings.SplitN(*r.DisplayName, ",", 2)[0]))
		out = append(out, weather.LocationSuggestion{
			ID:      r.PlaceID,
			Name:    name,
			Region:  r.Address.State,
			Country: common.FirstNonEmpty(r.Address.Country, "United States"),
			Lat:     lat,
			Lon:     lon,
		})
	}

	g.cache.Set(cacheKey, out, cache.DefaultExpiration)
	return out, nil
}

// wait enforces Nominatim's one request per second policy.
func (g *NominatimGeocoder) wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lastCall.IsZero() {
		if elapsed := time.Since(g.lastCall); elapsed < g.interval {
			timer := time.NewTimer(g.interval - elapsed)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	g.lastCall = time.Now()
	return nil
}

// GoogleGeocoder resolves place names through the Google Maps Geocoding API.
// The underlying client keeps its key in a package variable, so only one key
// can be active per process.
type GoogleGeocoder struct {
	cache *cache.Cache
}

// NewGoogleGeocoder installs apiKey and returns the geocoder.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{cache: cache.New(10*time.Minute, 20*time.Minute)}
}

// Search returns the single best match for query.
func (g *GoogleGeocoder) Search(ctx context.Context, query string) ([]weather.LocationSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, weather.ErrMissingQuery
	}

	cacheKey := strings.ToLower(query)
	if cached, found := g.cache.Get(cacheKey); found {
		return cached.([]weather.LocationSuggestion), nil
	}

	type result struct {
		suggestion weather.LocationSuggestion
		err        error
	}
	done := make(chan result, 1)

	go func() {
		loc, err := geocoder.Geocoding(geocoder.Address{City: query, Country: "United States"})
		if err != nil {
			done <- result{err: err}
			return
		}
		s := weather.LocationSuggestion{Name: query, Country: "United States", Lat: loc.Latitude, Lon: loc.Longitude}
		if addresses, err := geocoder.GeocodingReverse(loc); err == nil && len(addresses) > 0 {
			a := addresses[0]
			s.Name = common.FirstNonEmpty(a.City, query)
			s.Region = a.State
			s.Country = common.FirstNonEmpty(a.Country, s.Country)
		}
		done <- result{suggestion: s}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", weather.ErrTimeout, ctx.Err())
	case r := <-done:
		if r.err != nil {
			if strings.Contains(strings.ToLower(r.err.Error()), "zero_results") {
				return []weather.LocationSuggestion{}, nil
			}
			return nil, fmt.Errorf("%w: google geocoding: %v", weather.ErrNetwork, r.err)
		}
		out := []weather.LocationSuggestion{r.suggestion}
		g.cache.Set(cacheKey, out, cache.DefaultExpiration)
		return out, nil
	}
}
