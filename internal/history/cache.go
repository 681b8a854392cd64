// Package history keeps previously seen forecast days per location so the
// dashboard can fill its rolling window when a provider cannot supply a day.
// It is a display fallback, not authoritative storage.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// StorageKey is the KV record holding the whole cache.
const StorageKey = "weather-history-cache"

// Offsets used when a day is derived from a current reading.
const (
	derivedMinOffsetC = 5
	derivedMinOffsetF = 9
)

// Cache maps location -> date -> ForecastDay. The in-memory map is the merge
// point; every mutation rewrites the persisted record wholesale.
type Cache struct {
	mu     sync.RWMutex
	data   map[string]map[string]weather.ForecastDay
	kv     store.KV
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the wall clock used to date derived records.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New loads the persisted cache once. A missing or unreadable record starts
// an empty cache.
func New(ctx context.Context, kv store.KV, logger *zap.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		data:   make(map[string]map[string]weather.ForecastDay),
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	raw, err := kv.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		logger.Warn("failed to load weather history cache", zap.Error(err))
	default:
		if err := json.Unmarshal(raw, &c.data); err != nil {
			logger.Warn("discarding unreadable weather history cache", zap.Error(err))
			c.data = make(map[string]map[string]weather.ForecastDay)
		}
		if c.data == nil {
			c.data = make(map[string]map[string]weather.ForecastDay)
		}
		for key, days := range c.data {
			if days == nil {
				delete(c.data, key)
			}
		}
	}
	return c
}

// Store records every forecast day under (key, date) and, when the forecast
// does not cover the location's current date, a day derived from the current
// reading.
func (c *Cache) Store(ctx context.Context, key string, forecast weather.ForecastResponse, current weather.CurrentWeatherResponse) error {
	if key == "" {
		return fmt.Errorf("history: empty location key")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	days := c.data[key]
	if days == nil {
		days = make(map[string]weather.ForecastDay)
		c.data[key] = days
	}

	for _, d := range forecast.Forecast {
		days[d.Date] = d
	}
	stored := len(forecast.Forecast)

	today := c.localDate(current.Location)
	if _, ok := days[today]; !ok {
		days[today] = deriveDay(today, current.Current)
		stored++
	}
	metrics.HistoryDaysStored.Add(float64(stored))

	return c.persistLocked(ctx)
}

// Retrieve is a pure lookup.
func (c *Cache) Retrieve(key, date string) (weather.ForecastDay, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.data[key][date]
	return d, ok
}

// Coverage reports which of dates have a cached day for key.
func (c *Cache) Coverage(key string, dates []string) map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]bool, len(dates))
	for _, date := range dates {
		_, out[date] = c.data[key][date]
	}
	return out
}

// Days returns the cached days for key in ascending date order.
func (c *Cache) Days(key string) []weather.ForecastDay {
	c.mu.RLock()
	defer c.mu.RUnlock()

	days := make([]weather.ForecastDay, 0, len(c.data[key]))
	for _, d := range c.data[key] {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// Locations lists the cached location keys.
func (c *Cache) Locations() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear drops one location, or every location when key is empty.
func (c *Cache) Clear(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key == "" {
		c.data = make(map[string]map[string]weather.ForecastDay)
	} else {
		delete(c.data, key)
	}
	return c.persistLocked(ctx)
}

func (c *Cache) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("encode history cache: %w", err)
	}
	if err := c.kv.Put(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("persist history cache: %w", err)
	}
	return nil
}

// localDate is the calendar date at the location. The provider's local time
// string wins; the zone and then the server clock are fallbacks.
func (c *Cache) localDate(loc weather.Location) string {
	if len(loc.LocalTime) >= len(weather.DateLayout) {
		prefix := loc.LocalTime[:len(weather.DateLayout)]
		if _, err := time.Parse(weather.DateLayout, prefix); err == nil {
			return prefix
		}
	}
	return weather.LocalTime(c.now(), loc.TimeZone).Format(weather.DateLayout)
}

// deriveDay estimates a day from a current reading. The minimum is a fixed
// offset below the reading, so the record is marked derived.
func deriveDay(date string, cur weather.CurrentConditions) weather.ForecastDay {
	return weather.ForecastDay{
		Date:      date,
		DateEpoch: weather.DateEpoch(date),
		Day: weather.DaySummary{
			MaxTemp:       &weather.Temperature{C: cur.TempC, F: cur.TempF},
			MinTemp:       &weather.Temperature{C: cur.TempC - derivedMinOffsetC, F: cur.TempF - derivedMinOffsetF},
			AvgTemp:       &weather.Temperature{C: cur.TempC, F: cur.TempF},
			MaxWindKph:    cur.WindKph,
			MaxWindMph:    cur.WindMph,
			TotalPrecipMm: cur.PrecipMm,
			TotalPrecipIn: cur.PrecipIn,
			AvgVisKm:      cur.VisKm,
			AvgVisMiles:   cur.VisMiles,
			AvgHumidity:   cur.Humidity,
			Condition:     cur.Condition,
			UV:            cur.UV,
		},
		Astro:  weather.AstroForDate(date),
		Source: weather.SourceDerived,
	}
}
