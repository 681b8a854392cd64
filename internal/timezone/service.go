package timezone

import (
	"fmt"
	"sync"

	"github.com/ringsaturn/tzf"
)

// Resolver returns the IANA zone for a coordinate.
type Resolver interface {
	Timezone(lat, lon float64) (string, error)
}

// Service implements Resolver using tzf. The finder holds the zone polygons
// in memory, so build one Service per process and pass it where needed.
type Service struct {
	finder tzf.F
	mu     sync.RWMutex
}

// NewService loads the default tzf finder.
func NewService() (*Service, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize timezone finder: %w", err)
	}
	return &Service{finder: finder}, nil
}

// Timezone returns names like "America/Denver" for the given coordinates.
func (s *Service) Timezone(lat, lon float64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name := s.finder.GetTimezoneName(lon, lat)
	if name == "" {
		return "", fmt.Errorf("could not determine timezone for coordinates lat=%f, lon=%f", lat, lon)
	}
	return name, nil
}

// Static resolves every coordinate to one zone. Useful where the polygon data
// is not wanted.
type Static string

func (s Static) Timezone(float64, float64) (string, error) {
	if s == "" {
		return "", fmt.Errorf("no static timezone configured")
	}
	return string(s), nil
}
