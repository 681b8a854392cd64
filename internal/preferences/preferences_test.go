package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/i474232898/weather-dashboard/internal/store"
)

func TestGetReturnsDefaults(t *testing.T) {
	s := NewStore(store.NewMemoryStore(), nil)

	prefs, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prefs != Defaults() {
		t.Fatalf("expected defaults, got %+v", prefs)
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemoryStore(), nil)

	want := Preferences{TemperatureUnit: "fahrenheit", WindSpeedUnit: "imperial", TimeFormat: "12hr", PressureUnit: "inHg"}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSaveRejectsUnknownValues(t *testing.T) {
	s := NewStore(store.NewMemoryStore(), nil)

	bad := Defaults()
	bad.TemperatureUnit = "kelvin"
	if err := s.Save(context.Background(), bad); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestGetMergesPartialRecord(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	if err := kv.Put(ctx, PreferencesKey, []byte(`{"temperatureUnit":"fahrenheit"}`)); err != nil {
		t.Fatal(err)
	}

	prefs, err := NewStore(kv, nil).Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prefs.TemperatureUnit != "fahrenheit" || prefs.PressureUnit != "mb" {
		t.Fatalf("expected partial record merged over defaults, got %+v", prefs)
	}
}

func TestGetDiscardsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	if err := kv.Put(ctx, PreferencesKey, []byte(`{not json`)); err != nil {
		t.Fatal(err)
	}

	prefs, err := NewStore(kv, nil).Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prefs != Defaults() {
		t.Fatalf("expected defaults, got %+v", prefs)
	}
}

func TestTheme(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemoryStore(), nil)

	theme, err := s.Theme(ctx)
	if err != nil || theme != ThemeLight {
		t.Fatalf("expected light by default, got %q, %v", theme, err)
	}

	theme, err = s.ToggleTheme(ctx)
	if err != nil || theme != ThemeDark {
		t.Fatalf("expected dark after toggle, got %q, %v", theme, err)
	}
	if theme, _ = s.Theme(ctx); theme != ThemeDark {
		t.Fatalf("expected dark persisted, got %q", theme)
	}

	if err := s.SetTheme(ctx, "sepia"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemoryStore(), nil)

	custom := Preferences{TemperatureUnit: "fahrenheit", WindSpeedUnit: "imperial", TimeFormat: "12hr", PressureUnit: "inHg"}
	if err := s.Save(ctx, custom); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SetTheme(ctx, ThemeDark); err != nil {
		t.Fatalf("set theme: %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got, _ := s.Get(ctx); got != Defaults() {
		t.Fatalf("expected defaults after reset, got %+v", got)
	}
	if theme, _ := s.Theme(ctx); theme != ThemeLight {
		t.Fatalf("expected light after reset, got %q", theme)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("resetting twice should not fail: %v", err)
	}
}
