package timezone

import "testing"

func TestServiceResolvesKnownCities(t *testing.T) {
	if testing.Short() {
		t.Skip("loads timezone polygons")
	}

	svc, err := NewService()
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"denver", 39.7392, -104.9903, "America/Denver"},
		{"new york", 40.7128, -74.0060, "America/New_York"},
		{"london", 51.5074, -0.1278, "Europe/London"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Timezone(tt.lat, tt.lon)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	got, err := Static("America/Chicago").Timezone(0, 0)
	if err != nil || got != "America/Chicago" {
		t.Fatalf("unexpected %q, %v", got, err)
	}
	if _, err := Static("").Timezone(0, 0); err == nil {
		t.Fatal("expected error for empty static zone")
	}
}
