package weather

// DefaultForecastDays is the nominal length of the forecast window.
const DefaultForecastDays = 5

// MaxForecastDays is the largest day count a caller may request.
const MaxForecastDays = 10

// Align caps days to target entries, keeping order. A shorter input is
// returned as is: missing days are never synthesized. The result is always a
// fresh slice.
func Align(days []ForecastDay, target int) []ForecastDay {
	if target <= 0 {
		target = DefaultForecastDays
	}
	n := len(days)
	if n > target {
		n = target
	}
	out := make([]ForecastDay, n)
	copy(out, days[:n])
	return out
}
