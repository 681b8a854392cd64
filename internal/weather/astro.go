package weather

import (
	"math"
	"time"
)

// LunarCycle is the synodic month in days.
const LunarCycle = 29.530588853

var moonPhaseNames = [8]string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

// reference new moon: 2000-01-06 18:14 UTC
var newMoonRef = time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC)

func lunarAge(t time.Time) float64 {
	days := t.Sub(newMoonRef).Hours() / 24
	pos := math.Mod(days, LunarCycle)
	if pos < 0 {
		pos += LunarCycle
	}
	return pos
}

// MoonPhase returns the name of the moon phase at t.
func MoonPhase(t time.Time) string {
	idx := int((lunarAge(t) / LunarCycle) * 8)
	if idx > 7 {
		idx = 7
	}
	return moonPhaseNames[idx]
}

// MoonIllumination returns the approximate illuminated fraction (0-100) at t.
func MoonIllumination(t time.Time) int {
	angle := (lunarAge(t) / LunarCycle) * 2 * math.Pi
	return int(math.Round((1 - math.Cos(angle)) / 2 * 100))
}

// AstroForDate fills the moon fields for a calendar date. Rise and set times
// are left empty when the provider does not supply them.
func AstroForDate(date string) Astro {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return Astro{}
	}
	noon := t.Add(12 * time.Hour)
	return Astro{
		MoonPhase:        MoonPhase(noon),
		MoonIllumination: MoonIllumination(noon),
	}
}
