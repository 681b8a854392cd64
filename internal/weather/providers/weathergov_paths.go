package providers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var allowedGovRoots = map[string]bool{
	"points":     true,
	"gridpoints": true,
	"stations":   true,
}

var allowedGovPaths = []*regexp.Regexp{
	regexp.MustCompile(`^/points/-?\d+(\.\d+)?,-?\d+(\.\d+)?$`),
	regexp.MustCompile(`^/gridpoints/[A-Z]{3}/\d+,\d+/(forecast|forecast/hourly|stations)$`),
	regexp.MustCompile(`^/stations/[A-Za-z0-9]+/observations/latest$`),
}

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// ValidateWeatherGovPath checks a path destined for api.weather.gov against
// the allow-list and returns it with control characters stripped. Traversal
// segments, double slashes and unknown roots are rejected with
// weather.ErrProxyRejected.
func ValidateWeatherGovPath(raw string) (string, error) {
	path := controlChars.ReplaceAllString(raw, "")

	if strings.Contains(path, "..") || strings.Contains(path, "//") {
		return "", fmt.Errorf("%w: traversal in %q", weather.ErrProxyRejected, path)
	}

	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) == 0 || !allowedGovRoots[parts[0]] {
		return "", fmt.Errorf("%w: root not allowed in %q", weather.ErrProxyRejected, path)
	}

	for _, re := range allowedGovPaths {
		if re.MatchString(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %q does not match an allowed endpoint", weather.ErrProxyRejected, path)
}
