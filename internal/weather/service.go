package weather

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// MinSearchLength is the shortest query worth sending to a location search.
const MinSearchLength = 2

// Service orchestrates provider calls, the forecast window policy and the
// history cache.
type Service struct {
	providers       map[string]Provider
	defaultProvider string
	history         History
	logger          *zap.Logger
	now             func() time.Time
	retryWait       time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithHistory attaches the history cache used by Dashboard.
func WithHistory(h History) Option {
	return func(s *Service) { s.history = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaultProvider selects the provider used when a caller names none.
func WithDefaultProvider(name string) Option {
	return func(s *Service) { s.defaultProvider = name }
}

// WithRetryWait sets the pause before the single retry.
func WithRetryWait(d time.Duration) Option {
	return func(s *Service) { s.retryWait = d }
}

// NewService creates a new Service. The first provider is the default unless
// WithDefaultProvider says otherwise.
func NewService(providers []Provider, opts ...Option) *Service {
	s := &Service{
		providers: make(map[string]Provider, len(providers)),
		logger:    zap.NewNop(),
		now:       time.Now,
		retryWait: 500 * time.Millisecond,
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		if s.defaultProvider == "" {
			s.defaultProvider = p.Name()
		}
		s.providers[p.Name()] = p
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers lists the registered provider names.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) provider(name string) (Provider, error) {
	if name == "" {
		name = s.defaultProvider
	}
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// CurrentWeather fetches current conditions for q.
func (s *Service) CurrentWeather(ctx context.Context, providerName string, q Query) (CurrentWeatherResponse, error) {
	if err := q.Validate(); err != nil {
		return CurrentWeatherResponse{}, err
	}
	p, err := s.provider(providerName)
	if err != nil {
		return CurrentWeatherResponse{}, err
	}
	return withRetry(ctx, s, p.Name()+" current", func() (CurrentWeatherResponse, error) {
		return p.CurrentWeather(ctx, q)
	})
}

// Forecast fetches the forecast for q and aligns it to days entries. A zero
// days value means DefaultForecastDays.
func (s *Service) Forecast(ctx context.Context, providerName string, q Query, days int) (ForecastResponse, error) {
	if days == 0 {
		days = DefaultForecastDays
	}
	if days < 1 || days > MaxForecastDays {
		return ForecastResponse{}, ErrInvalidDays
	}
	if err := q.Validate(); err != nil {
		return ForecastResponse{}, err
	}
	p, err := s.provider(providerName)
	if err != nil {
		return ForecastResponse{}, err
	}

	resp, err := withRetry(ctx, s, p.Name()+" forecast", func() (ForecastResponse, error) {
		return p.Forecast(ctx, q, days)
	})
	if err != nil {
		return ForecastResponse{}, err
	}

	if len(resp.Forecast) < days {
		s.logger.Debug("provider returned a short forecast",
			zap.String("provider", p.Name()),
			zap.Int("requested", days),
			zap.Int("returned", len(resp.Forecast)))
	}
	resp.Forecast = Align(resp.Forecast, days)
	return resp, nil
}

// SearchLocations returns suggestions for free text. Queries shorter than
// MinSearchLength return no suggestions.
func (s *Service) SearchLocations(ctx context.Context, providerName, query string) ([]LocationSuggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return []LocationSuggestion{}, nil
	}
	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}
	searcher, ok := p.(LocationSearcher)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support location search", p.Name())
	}
	return withRetry(ctx, s, p.Name()+" search", func() ([]LocationSuggestion, error) {
		return searcher.SearchLocations(ctx, query)
	})
}

// Dashboard issues the current and forecast fetches concurrently. Both must
// succeed. The result is recorded in the history cache and the rolling window
// is built around the location's current date.
func (s *Service) Dashboard(ctx context.Context, providerName string, q Query) (DashboardResponse, error) {
	var (
		wg          sync.WaitGroup
		current     CurrentWeatherResponse
		forecast    ForecastResponse
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = s.CurrentWeather(ctx, providerName, q)
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = s.Forecast(ctx, providerName, q, DefaultForecastDays)
	}()
	wg.Wait()

	if currentErr != nil {
		return DashboardResponse{}, currentErr
	}
	if forecastErr != nil {
		return DashboardResponse{}, forecastErr
	}

	out := DashboardResponse{
		Location: forecast.Location,
		Current:  current.Current,
		Forecast: forecast.Forecast,
		Provider: forecast.Provider,
	}

	if s.history == nil {
		return out, nil
	}

	key := q.Key()
	if err := s.history.Store(ctx, key, forecast, current); err != nil {
		// The cache is best effort; a failed write never fails the request.
		s.logger.Warn("history cache write failed", zap.String("location", key), zap.Error(err))
	}
	out.Window = s.history.Window(key, forecast.Forecast, LocalTime(s.now(), forecast.Location.TimeZone))
	return out, nil
}

// LocalTime converts t to the named zone, falling back to t unchanged when the
// zone is unknown.
func LocalTime(t time.Time, zone string) time.Time {
	if zone == "" {
		return t
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return t
	}
	return t.In(loc)
}

// withRetry runs fn and retries it once when the failure is a network error, a
// timeout or an upstream 5xx.
func withRetry[T any](ctx context.Context, s *Service, op string, fn func() (T, error)) (T, error) {
	attempt := 0
	operation := func() (T, error) {
		attempt++
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !Retryable(err) {
			return v, backoff.Permanent(err)
		}
		s.logger.Warn("provider call failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return v, err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryWait), 1), ctx)
	return backoff.RetryWithData(operation, b)
}
