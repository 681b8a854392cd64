package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestValidateWeatherGovPath(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/points/39.7392,-104.9903", "/points/39.7392,-104.9903", true},
		{"/gridpoints/BOU/62,60/forecast", "/gridpoints/BOU/62,60/forecast", true},
		{"/gridpoints/BOU/62,60/forecast/hourly", "/gridpoints/BOU/62,60/forecast/hourly", true},
		{"/gridpoints/BOU/62,60/stations", "/gridpoints/BOU/62,60/stations", true},
		{"/stations/KDEN/observations/latest", "/stations/KDEN/observations/latest", true},
		{"/points/39.7\n392,-104.9903", "/points/39.7392,-104.9903", true},
		{"/points/../../etc/passwd", "", false},
		{"/points//39,-104", "", false},
		{"/alerts/active", "", false},
		{"/gridpoints/bou/62,60/forecast", "", false},
		{"/stations/KDEN/observations", "", false},
		{"", "", false},
		{"/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ValidateWeatherGovPath(tt.path)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Fatalf("expected %q, got %q", tt.want, got)
				}
				return
			}
			if !errors.Is(err, weather.ErrProxyRejected) {
				t.Fatalf("expected ErrProxyRejected, got %v", err)
			}
		})
	}
}

func TestWeatherGovProxyForwardsStatus(t *testing.T) {
	var gotUA, gotAccept string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", geoJSON)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"title":"Not Found"}`)
	}))
	defer upstream.Close()

	proxy := NewWeatherGovProxy(HTTPClientConfig{Client: upstream.Client()}, upstream.URL, "", nil)
	resp, err := proxy.Forward(context.Background(), "/points/39.7392,-104.9903")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusNotFound {
		t.Errorf("expected upstream 404 passed through, got %d", resp.Status)
	}
	if resp.ContentType != geoJSON {
		t.Errorf("expected content type %q, got %q", geoJSON, resp.ContentType)
	}
	if gotUA != DefaultUserAgent || gotAccept != geoJSON {
		t.Errorf("unexpected headers: UA=%q Accept=%q", gotUA, gotAccept)
	}
}

func TestWeatherGovProxyRejectsTraversal(t *testing.T) {
	proxy := NewWeatherGovProxy(HTTPClientConfig{}, "http://127.0.0.1:0", "", nil)
	_, err := proxy.Forward(context.Background(), "/points/../../etc")
	if got := weather.Classify(err).Status; got != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (%v)", got, err)
	}
}

func TestWeatherGovProxyTimeout(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer upstream.Close()
	defer close(release)

	proxy := NewWeatherGovProxy(HTTPClientConfig{Client: upstream.Client(), Timeout: 50 * time.Millisecond}, upstream.URL, "", nil)
	_, err := proxy.Forward(context.Background(), "/points/39.7392,-104.9903")
	if !errors.Is(err, weather.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if got := weather.Classify(err).Status; got != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", got)
	}
}
