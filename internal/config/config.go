package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// EnvPrefix prefixes every environment override, e.g. WEATHER_SERVER_PORT.
const EnvPrefix = "WEATHER"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Store     StoreConfig     `mapstructure:"store"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readtimeout"`
	WriteTimeout time.Duration `mapstructure:"writetimeout"`
	ProxyTimeout time.Duration `mapstructure:"proxytimeout"`
}

// LogConfig selects the zap level (debug, info, warn, error) and encoding
// (json, console).
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ProvidersConfig struct {
	// Default is the provider used when a request names none.
	Default    string           `mapstructure:"default"`
	Timeout    time.Duration    `mapstructure:"timeout"`
	RetryWait  time.Duration    `mapstructure:"retrywait"`
	WeatherAPI WeatherAPIConfig `mapstructure:"weatherapi"`
	WeatherGov WeatherGovConfig `mapstructure:"weathergov"`
}

type WeatherAPIConfig struct {
	Key     string `mapstructure:"key"`
	BaseURL string `mapstructure:"baseurl"`
}

type WeatherGovConfig struct {
	BaseURL   string `mapstructure:"baseurl"`
	ProxyURL  string `mapstructure:"proxyurl"`
	UserAgent string `mapstructure:"useragent"`
}

// GeocoderConfig picks the name resolver for the government provider:
// "nominatim" or "google".
type GeocoderConfig struct {
	Provider     string `mapstructure:"provider"`
	NominatimURL string `mapstructure:"nominatimurl"`
	GoogleKey    string `mapstructure:"googlekey"`
}

// StoreConfig locates the key-value database. ":memory:" keeps everything in
// process; an empty path disables SQLite entirely.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type SchedulerConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Locations []string      `mapstructure:"locations"`
}

// Load reads .env, then config.yaml if present, then environment overrides.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.weather-dashboard")

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("providers.weatherapi.key", "WEATHERAPI_API_KEY", EnvPrefix+"_PROVIDERS_WEATHERAPI_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("server.port", "PORT", EnvPrefix+"_SERVER_PORT"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readtimeout", 10*time.Second)
	v.SetDefault("server.writetimeout", 20*time.Second)
	v.SetDefault("server.proxytimeout", 15*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("providers.default", "weatherapi")
	v.SetDefault("providers.timeout", 10*time.Second)
	v.SetDefault("providers.retrywait", 500*time.Millisecond)
	v.SetDefault("providers.weatherapi.key", "")
	v.SetDefault("providers.weatherapi.baseurl", "https://api.weatherapi.com/v1")
	v.SetDefault("providers.weathergov.baseurl", "https://api.weather.gov")
	v.SetDefault("providers.weathergov.proxyurl", "")
	v.SetDefault("providers.weathergov.useragent", "weather-dashboard/1.0")
	v.SetDefault("geocoder.provider", "nominatim")
	v.SetDefault("geocoder.nominatimurl", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.googlekey", "")
	v.SetDefault("store.path", "weather-dashboard.db")
	v.SetDefault("scheduler.interval", 15*time.Minute)
	v.SetDefault("scheduler.locations", []string{})
}

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Geocoder.Provider {
	case "nominatim":
	case "google":
		if c.Geocoder.GoogleKey == "" {
			return fmt.Errorf("geocoder.provider google requires geocoder.googlekey")
		}
	default:
		return fmt.Errorf("unknown geocoder.provider %q", c.Geocoder.Provider)
	}
	for _, loc := range c.Scheduler.Locations {
		if err := weather.ParseQuery(loc).Validate(); err != nil {
			return fmt.Errorf("invalid scheduler location %q: %w", loc, err)
		}
	}
	return nil
}

// ServerAddr returns the listen address in the ":port" form.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Queries returns the scheduler locations as provider queries.
func (c *Config) Queries() []weather.Query {
	out := make([]weather.Query, 0, len(c.Scheduler.Locations))
	for _, loc := range c.Scheduler.Locations {
		if strings.TrimSpace(loc) == "" {
			continue
		}
		out = append(out, weather.ParseQuery(loc))
	}
	return out
}

// NewLogger builds a zap logger from the log settings.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if strings.ToLower(c.Log.Format) == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zc.Build()
}
