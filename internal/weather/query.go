package weather

import (
	"fmt"
	"strconv"
	"strings"
)

type queryKind int

const (
	queryByName queryKind = iota + 1
	queryByCoordinates
)

// Query identifies the location a caller asks about: either free text or a
// coordinate pair. The zero value is invalid.
type Query struct {
	kind queryKind
	name string
	lat  float64
	lon  float64
}

// ByName builds a free-text query such as "London" or "Paris, FR".
func ByName(name string) Query {
	return Query{kind: queryByName, name: strings.TrimSpace(name)}
}

// ByCoordinates builds a coordinate query.
func ByCoordinates(lat, lon float64) Query {
	return Query{kind: queryByCoordinates, lat: lat, lon: lon}
}

// ParseQuery reads "lat,lon" as coordinates and anything else as a name.
func ParseQuery(s string) Query {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, ","); len(parts) == 2 {
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if latErr == nil && lonErr == nil {
			return ByCoordinates(lat, lon)
		}
	}
	return ByName(s)
}

// Name returns the free-text form and whether the query is a name query.
func (q Query) Name() (string, bool) {
	return q.name, q.kind == queryByName
}

// Coordinates returns the coordinate pair and whether the query is a coordinate query.
func (q Query) Coordinates() (lat, lon float64, ok bool) {
	return q.lat, q.lon, q.kind == queryByCoordinates
}

// Validate reports whether the query can be sent to a provider.
func (q Query) Validate() error {
	switch q.kind {
	case queryByName:
		if q.name == "" {
			return ErrMissingQuery
		}
		return nil
	case queryByCoordinates:
		if err := (Location{Lat: q.lat, Lon: q.lon}).Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
		}
		return nil
	default:
		return ErrMissingQuery
	}
}

// String renders the query in the "q" parameter form providers accept.
func (q Query) String() string {
	if q.kind == queryByCoordinates {
		return fmt.Sprintf("%.4f,%.4f", q.lat, q.lon)
	}
	return q.name
}

// Key returns a normalized cache key for the query.
func (q Query) Key() string {
	if q.kind == queryByCoordinates {
		return q.String()
	}
	return strings.ToLower(q.name)
}
