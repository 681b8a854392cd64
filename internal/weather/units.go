package weather

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Fixed conversion constants. Derived units are always computed from these.
const (
	MphToKph        = 1.60934
	KmToMiles       = 0.621371
	MbPerInHg       = 33.864
	MmPerInch       = 25.4
	PaPerMb         = 100.0
	compassSegments = 16
)

var compassPoints = [compassSegments]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FahrenheitToCelsius converts °F to °C.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// NewTemperatureC builds a Temperature from an authoritative Celsius value.
func NewTemperatureC(c float64) *Temperature {
	return &Temperature{C: Round1(c), F: Round1(CelsiusToFahrenheit(c))}
}

// NewTemperatureF builds a Temperature from an authoritative Fahrenheit value.
func NewTemperatureF(f float64) *Temperature {
	return &Temperature{C: math.Round(FahrenheitToCelsius(f)), F: f}
}

// KphToMph converts km/h to mph.
func KphToMph(kph float64) float64 {
	return kph / MphToKph
}

// MbToInHg converts millibars to inches of mercury.
func MbToInHg(mb float64) float64 {
	return mb / MbPerInHg
}

func KmToMi(km float64) float64 {
	return km * KmToMiles
}

func MmToIn(mm float64) float64 {
	return mm / MmPerInch
}

func PaToMb(pa float64) float64 {
	return pa / PaPerMb
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CompassDirection maps a bearing in degrees to a 16-point compass label.
func CompassDirection(deg float64) string {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	idx := int(math.Round(deg/22.5)) % compassSegments
	return compassPoints[idx]
}

// CompassDegrees maps a compass label back to its bearing. Unknown labels
// report false.
func CompassDegrees(label string) (int, bool) {
	label = strings.ToUpper(strings.TrimSpace(label))
	for i, p := range compassPoints {
		if p == label {
			return int(float64(i) * 22.5), true
		}
	}
	return 0, false
}

var windSpeedRe = regexp.MustCompile(`(\d+(?:\.\d+)?)(?:\s*to\s*(\d+(?:\.\d+)?))?\s*mph`)

// ParseWindSpeed reads "A to B mph" (mean of the bounds) or "A mph" and
// returns the representative mph with its kph derivation. Unparseable text
// yields zeros.
func ParseWindSpeed(text string) (mph, kph float64) {
	m := windSpeedRe.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, 0
	}
	lo, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0
	}
	mph = lo
	if m[2] != "" {
		hi, err := strconv.ParseFloat(m[2], 64)
		if err == nil {
			mph = (lo + hi) / 2
		}
	}
	return mph, math.Round(mph * MphToKph)
}
