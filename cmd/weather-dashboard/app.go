package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/history"
	"github.com/i474232898/weather-dashboard/internal/preferences"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/timezone"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

// app holds every wired component. Commands take what they need.
type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	kv          store.KV
	history     *history.Cache
	preferences *preferences.Store
	service     *weather.Service
	proxy       *providers.WeatherGovProxy
	closers     []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// bootstrap loads configuration and builds the component graph.
func bootstrap(ctx context.Context, providerOverride string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	kv, closer, err := openStore(cfg.Store.Path, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.kv = kv
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	a.history = history.New(ctx, kv, logger.Named("history"))
	a.preferences = preferences.NewStore(kv, logger.Named("preferences"))

	tz, err := timezone.NewService()
	if err != nil {
		// Without the offline index /points responses must carry timeZone.
		logger.Warn("timezone index unavailable", zap.Error(err))
	}

	httpCfg := providers.HTTPClientConfig{Client: &http.Client{}, Timeout: cfg.Providers.Timeout}

	gov := providers.WeatherGovConfig{
		BaseURL:   cfg.Providers.WeatherGov.BaseURL,
		ProxyURL:  cfg.Providers.WeatherGov.ProxyURL,
		UserAgent: cfg.Providers.WeatherGov.UserAgent,
		Geocoder:  newGeocoder(cfg, httpCfg),
		Logger:    logger.Named(providers.WeatherGovName),
	}
	if tz != nil {
		gov.Timezones = tz
	}

	provs := []weather.Provider{
		providers.NewWeatherAPIProvider(httpCfg, cfg.Providers.WeatherAPI.Key, cfg.Providers.WeatherAPI.BaseURL),
		providers.NewWeatherGovProvider(httpCfg, gov),
	}

	defaultProvider := cfg.Providers.Default
	if providerOverride != "" {
		defaultProvider = providerOverride
	}
	a.service = weather.NewService(provs,
		weather.WithHistory(a.history),
		weather.WithLogger(logger.Named("service")),
		weather.WithDefaultProvider(defaultProvider),
		weather.WithRetryWait(cfg.Providers.RetryWait),
	)

	a.proxy = providers.NewWeatherGovProxy(
		providers.HTTPClientConfig{Client: &http.Client{}, Timeout: cfg.Server.ProxyTimeout},
		cfg.Providers.WeatherGov.BaseURL,
		cfg.Providers.WeatherGov.UserAgent,
		logger.Named("proxy"),
	)
	return a, nil
}

// openStore opens SQLite at path, or an in-process map when path is empty.
func openStore(path string, logger *zap.Logger) (store.KV, func() error, error) {
	if path == "" {
		logger.Info("store.path empty; using in-memory store")
		return store.NewMemoryStore(), nil, nil
	}
	db, err := store.OpenSQLite(path, logger.Named("store"))
	if err != nil {
		return nil, nil, fmt.Errorf("open store %q: %w", path, err)
	}
	return db, db.Close, nil
}

func newGeocoder(cfg *config.Config, httpCfg providers.HTTPClientConfig) providers.Geocoder {
	if cfg.Geocoder.Provider == "google" {
		return providers.NewGoogleGeocoder(cfg.Geocoder.GoogleKey)
	}
	return providers.NewNominatimGeocoder(httpCfg, cfg.Geocoder.NominatimURL, cfg.Providers.WeatherGov.UserAgent)
}
