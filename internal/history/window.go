package history

import (
	"time"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// windowOffsets are the day offsets of the display window around the
// reference date.
var windowOffsets = []int{-2, -1, 0, 1, 2}

// WindowDates returns the window's dates [D-2 .. D+2] for ref's calendar day.
func WindowDates(ref time.Time) []string {
	y, m, d := ref.Date()
	base := time.Date(y, m, d, 12, 0, 0, 0, ref.Location())

	dates := make([]string, 0, len(windowOffsets))
	for _, off := range windowOffsets {
		dates = append(dates, base.AddDate(0, 0, off).Format(weather.DateLayout))
	}
	return dates
}

// Label names a window slot by its offset from the reference date.
func Label(offset int, date time.Time) string {
	switch offset {
	case -2:
		return "2 days ago"
	case -1:
		return "Yesterday"
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	case 2:
		return "In 2 days"
	default:
		return date.Format("Mon, Jan 2")
	}
}

// Window builds the rolling display window for key. Each slot takes the fresh
// forecast's day first, then the cache, then a placeholder that carries no
// temperatures.
func (c *Cache) Window(key string, forecast []weather.ForecastDay, ref time.Time) []weather.WindowDay {
	byDate := make(map[string]weather.ForecastDay, len(forecast))
	for _, d := range forecast {
		byDate[d.Date] = d
	}

	dates := WindowDates(ref)
	out := make([]weather.WindowDay, 0, len(dates))
	for i, date := range dates {
		t, _ := time.Parse(weather.DateLayout, date)
		slot := weather.WindowDay{Label: Label(windowOffsets[i], t)}

		if d, ok := byDate[date]; ok {
			slot.Day = d
			metrics.HistoryWindowFills.WithLabelValues("forecast").Inc()
		} else if d, ok := c.Retrieve(key, date); ok {
			slot.Day = d
			metrics.HistoryWindowFills.WithLabelValues("cache").Inc()
		} else {
			slot.Day = Placeholder(date)
			metrics.HistoryWindowFills.WithLabelValues("placeholder").Inc()
		}
		out = append(out, slot)
	}
	return out
}

// Placeholder is the last-resort filler for a window slot. It never carries
// weather values.
func Placeholder(date string) weather.ForecastDay {
	return weather.ForecastDay{
		Date:      date,
		DateEpoch: weather.DateEpoch(date),
		Day: weather.DaySummary{
			Condition: weather.Condition{Text: "No data available"},
		},
		Source: weather.SourcePlaceholder,
	}
}
