// Package preferences persists the display settings and theme choice.
package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/store"
)

const (
	PreferencesKey = "weather-preferences"
	ThemeKey       = "theme"
)

// Preferences selects the units and formats the dashboard renders in.
type Preferences struct {
	TemperatureUnit string `json:"temperatureUnit" validate:"required,oneof=celsius fahrenheit"`
	WindSpeedUnit   string `json:"windSpeedUnit" validate:"required,oneof=metric imperial"`
	TimeFormat      string `json:"timeFormat" validate:"required,oneof=12hr 24hr"`
	PressureUnit    string `json:"pressureUnit" validate:"required,oneof=mb inHg"`
}

// Defaults returns the metric, 24-hour preference set.
func Defaults() Preferences {
	return Preferences{
		TemperatureUnit: "celsius",
		WindSpeedUnit:   "metric",
		TimeFormat:      "24hr",
		PressureUnit:    "mb",
	}
}

// Theme is the light or dark palette choice.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ErrInvalid wraps every rejected update.
var ErrInvalid = errors.New("invalid preferences")

var validate = validator.New()

// Validate checks every field against its allowed values.
func (p Preferences) Validate() error {
	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s must be one of [%s]", ErrInvalid, fe.Field(), fe.Param())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Validate checks the theme name.
func (t Theme) Validate() error {
	if t != ThemeLight && t != ThemeDark {
		return fmt.Errorf("%w: theme must be one of [light dark], got %q", ErrInvalid, string(t))
	}
	return nil
}

// Store reads and writes preferences through a KV backend. Missing or
// unreadable records fall back to the defaults.
type Store struct {
	kv     store.KV
	logger *zap.Logger
}

func NewStore(kv store.KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger}
}

// Get returns the saved preferences merged over the defaults.
func (s *Store) Get(ctx context.Context) (Preferences, error) {
	prefs := Defaults()
	data, err := s.kv.Get(ctx, PreferencesKey)
	if errors.Is(err, store.ErrNotFound) {
		return prefs, nil
	}
	if err != nil {
		return prefs, err
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		s.logger.Warn("discarding unreadable preferences", zap.Error(err))
		return Defaults(), nil
	}
	if err := prefs.Validate(); err != nil {
		s.logger.Warn("discarding invalid preferences", zap.Error(err))
		return Defaults(), nil
	}
	return prefs, nil
}

// Save validates and persists prefs.
func (s *Store) Save(ctx context.Context, prefs Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, PreferencesKey, data)
}

// Reset removes the saved preferences and theme so both read back as defaults.
func (s *Store) Reset(ctx context.Context) error {
	for _, key := range []string{PreferencesKey, ThemeKey} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}
	return nil
}

// Theme returns the saved theme, light when none is stored.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	data, err := s.kv.Get(ctx, ThemeKey)
	if errors.Is(err, store.ErrNotFound) {
		return ThemeLight, nil
	}
	if err != nil {
		return ThemeLight, err
	}
	theme := Theme(data)
	if theme.Validate() != nil {
		s.logger.Warn("discarding invalid theme", zap.String("theme", string(data)))
		return ThemeLight, nil
	}
	return theme, nil
}

// SetTheme validates and persists theme.
func (s *Store) SetTheme(ctx context.Context, theme Theme) error {
	if err := theme.Validate(); err != nil {
		return err
	}
	return s.kv.Put(ctx, ThemeKey, []byte(theme))
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context) (Theme, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return current, err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(ctx, next)
}
