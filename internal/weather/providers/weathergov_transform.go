package providers

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/validation"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	govDefaultDayIcon   = "https://api.weather.gov/icons/land/day/skc?size=medium"
	govDefaultNightIcon = "https://api.weather.gov/icons/land/night/skc?size=medium"

	// Forecast periods carry no visibility; these are the display values.
	clearVisibilityKm   = 16
	defaultVisibilityKm = 10

	willOccurThreshold = 30
)

// periodBucket groups the day and night periods sharing a start date.
type periodBucket struct {
	Date  string
	Day   *validation.GovPeriod
	Night *validation.GovPeriod
}

// bucketPeriods groups periods by the date prefix of their start time, taken
// verbatim from the upstream timestamp. Buckets come back in ascending date
// order.
func bucketPeriods(periods []validation.GovPeriod) ([]periodBucket, error) {
	byDate := make(map[string]*periodBucket)
	for i := range periods {
		p := &periods[i]
		start := *p.StartTime
		if len(start) < len(weather.DateLayout) {
			return nil, &weather.ValidationError{
				Schema:   validation.SchemaGovForecast,
				Field:    fmt.Sprintf("properties.periods[%d].startTime", i),
				Expected: "ISO-8601 timestamp",
				Received: start,
			}
		}
		date := start[:len(weather.DateLayout)]
		if _, err := time.Parse(weather.DateLayout, date); err != nil {
			return nil, &weather.ValidationError{
				Schema:   validation.SchemaGovForecast,
				Field:    fmt.Sprintf("properties.periods[%d].startTime", i),
				Expected: "ISO-8601 timestamp",
				Received: start,
			}
		}

		b, ok := byDate[date]
		if !ok {
			b = &periodBucket{Date: date}
			byDate[date] = b
		}
		if *p.IsDaytime {
			b.Day = p
		} else {
			b.Night = p
		}
	}

	buckets := make([]periodBucket, 0, len(byDate))
	for _, b := range byDate {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date < buckets[j].Date })
	return buckets, nil
}

// transformPeriods turns the flat period list into forecast days, dropping
// dates before today and keeping at most DefaultForecastDays.
func transformPeriods(periods []validation.GovPeriod, today string) ([]weather.ForecastDay, error) {
	buckets, err := bucketPeriods(periods)
	if err != nil {
		return nil, err
	}

	days := make([]weather.ForecastDay, 0, weather.DefaultForecastDays)
	for _, b := range buckets {
		if b.Date < today {
			continue
		}
		days = append(days, dayFromBucket(b))
		if len(days) == weather.DefaultForecastDays {
			break
		}
	}
	return days, nil
}

// periodTemperature reads a period's temperature in its native unit.
func periodTemperature(p *validation.GovPeriod) *weather.Temperature {
	if p == nil || p.Temperature == nil {
		return nil
	}
	if strings.EqualFold(p.TemperatureUnit, "C") {
		return weather.NewTemperatureC(*p.Temperature)
	}
	return weather.NewTemperatureF(*p.Temperature)
}

func measurementValue(m *validation.Measurement) (float64, bool) {
	if m == nil || m.Value == nil {
		return 0, false
	}
	return *m.Value, true
}

// dayFromBucket assigns the daytime temperature to max and the nighttime one
// to min. A missing half stays nil.
func dayFromBucket(b periodBucket) weather.ForecastDay {
	maxT := periodTemperature(b.Day)
	minT := periodTemperature(b.Night)

	var avgT *weather.Temperature
	if maxT != nil && minT != nil {
		avgT = &weather.Temperature{
			C: weather.Round1((maxT.C + minT.C) / 2),
			F: weather.Round1((maxT.F + minT.F) / 2),
		}
	}

	primary := b.Day
	defaultIcon := govDefaultDayIcon
	if primary == nil {
		primary = b.Night
		defaultIcon = govDefaultNightIcon
	}

	text := *primary.ShortForecast
	code := weather.ConditionCodeFromText(text)
	mph, kph := weather.ParseWindSpeed(primary.WindSpeed)
	pop, _ := measurementValue(primary.ProbabilityOfPrecipitation)
	chance := int(math.Round(pop))

	visKm := float64(defaultVisibilityKm)
	if code == weather.CodeSunny {
		visKm = clearVisibilityKm
	}

	summary := weather.DaySummary{
		MaxTemp:     maxT,
		MinTemp:     minT,
		AvgTemp:     avgT,
		MaxWindMph:  mph,
		MaxWindKph:  kph,
		AvgVisKm:    visKm,
		AvgVisMiles: weather.Round1(weather.KmToMi(visKm)),
		AvgHumidity: averageHumidity(b.Day, b.Night),
		Condition:   weather.NewCondition(code, text, common.FirstNonEmpty(primary.Icon, defaultIcon)),
	}
	if weather.IsSnowCode(code) {
		summary.DailyChanceOfSnow = chance
		summary.DailyWillItSnow = chance > willOccurThreshold
	} else {
		summary.DailyChanceOfRain = chance
		summary.DailyWillItRain = chance > willOccurThreshold
	}

	return weather.ForecastDay{
		Date:      b.Date,
		DateEpoch: weather.DateEpoch(b.Date),
		Day:       summary,
		Astro:     weather.AstroForDate(b.Date),
		Source:    weather.SourceProvider,
	}
}

func averageHumidity(periods ...*validation.GovPeriod) int {
	var sum float64
	var n int
	for _, p := range periods {
		if p == nil {
			continue
		}
		if v, ok := measurementValue(p.RelativeHumidity); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// findCurrentPeriod returns the period whose [start, end) contains now.
func findCurrentPeriod(periods []validation.GovPeriod, now time.Time) *validation.GovPeriod {
	for i := range periods {
		p := &periods[i]
		start, err := time.Parse(time.RFC3339, *p.StartTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, *p.EndTime)
		if err != nil {
			continue
		}
		if !now.Before(start) && now.Before(end) {
			return p
		}
	}
	return nil
}

// currentFromObservation builds current conditions from a station reading in
// WMO units. It reports false when the reading has no temperature.
func currentFromObservation(obs *validation.GovObservationPayload, isDay bool) (weather.CurrentConditions, bool) {
	props := obs.Properties
	tempC, ok := measurementValue(props.Temperature)
	if !ok {
		return weather.CurrentConditions{}, false
	}

	feelsC := tempC
	if v, ok := measurementValue(props.HeatIndex); ok {
		feelsC = v
	} else if v, ok := measurementValue(props.WindChill); ok {
		feelsC = v
	}

	var windKph float64
	if v, ok := measurementValue(props.WindSpeed); ok {
		windKph = v
		if strings.HasSuffix(props.WindSpeed.UnitCode, "m_s-1") {
			windKph = v * 3.6
		}
	}
	windDeg, _ := measurementValue(props.WindDirection)

	var pressureMb float64
	if v, ok := measurementValue(props.BarometricPressure); ok {
		pressureMb = weather.Round1(weather.PaToMb(v))
	}
	var visKm float64
	if v, ok := measurementValue(props.Visibility); ok {
		visKm = weather.Round1(v / 1000)
	}
	humidity, _ := measurementValue(props.RelativeHumidity)

	text := common.FirstNonEmpty(props.TextDescription, weather.ConditionText(weather.CodeSunny))
	code := weather.ConditionCodeFromText(text)
	defaultIcon := govDefaultNightIcon
	if isDay {
		defaultIcon = govDefaultDayIcon
	}

	updated := *props.Timestamp
	var epoch int64
	if ts, err := time.Parse(time.RFC3339, updated); err == nil {
		epoch = ts.Unix()
	}

	return weather.CurrentConditions{
		LastUpdatedEpoch: epoch,
		LastUpdated:      updated,
		TempC:            weather.Round1(tempC),
		TempF:            weather.Round1(weather.CelsiusToFahrenheit(tempC)),
		FeelsLikeC:       weather.Round1(feelsC),
		FeelsLikeF:       weather.Round1(weather.CelsiusToFahrenheit(feelsC)),
		IsDay:            isDay,
		Condition:        weather.NewCondition(code, text, common.FirstNonEmpty(props.Icon, defaultIcon)),
		WindKph:          weather.Round1(windKph),
		WindMph:          weather.Round1(weather.KphToMph(windKph)),
		WindDegree:       int(math.Round(windDeg)),
		WindDir:          weather.CompassDirection(windDeg),
		PressureMb:       pressureMb,
		PressureIn:       weather.Round2(weather.MbToInHg(pressureMb)),
		Humidity:         int(math.Round(humidity)),
		VisKm:            visKm,
		VisMiles:         weather.Round1(weather.KmToMi(visKm)),
	}, true
}

// currentFromPeriod builds current conditions from the forecast period that
// spans now. The period's own unit is authoritative.
func currentFromPeriod(p *validation.GovPeriod) weather.CurrentConditions {
	temp := periodTemperature(p)
	mph, kph := weather.ParseWindSpeed(p.WindSpeed)
	deg, _ := weather.CompassDegrees(p.WindDirection)
	windDir := p.WindDirection
	if windDir == "" {
		windDir = weather.CompassDirection(float64(deg))
	}

	text := *p.ShortForecast
	code := weather.ConditionCodeFromText(text)
	defaultIcon := govDefaultNightIcon
	if *p.IsDaytime {
		defaultIcon = govDefaultDayIcon
	}
	visKm := float64(defaultVisibilityKm)
	if code == weather.CodeSunny {
		visKm = clearVisibilityKm
	}
	humidity, _ := measurementValue(p.RelativeHumidity)

	var epoch int64
	if ts, err := time.Parse(time.RFC3339, *p.StartTime); err == nil {
		epoch = ts.Unix()
	}

	return weather.CurrentConditions{
		LastUpdatedEpoch: epoch,
		LastUpdated:      *p.StartTime,
		TempC:            temp.C,
		TempF:            temp.F,
		FeelsLikeC:       temp.C,
		FeelsLikeF:       temp.F,
		IsDay:            *p.IsDaytime,
		Condition:        weather.NewCondition(code, text, common.FirstNonEmpty(p.Icon, defaultIcon)),
		WindMph:          mph,
		WindKph:          kph,
		WindDegree:       deg,
		WindDir:          windDir,
		Humidity:         int(math.Round(humidity)),
		VisKm:            visKm,
		VisMiles:         weather.Round1(weather.KmToMi(visKm)),
	}
}

// locationFromGrid builds the canonical location for a resolved point.
func locationFromGrid(g Grid, now time.Time) weather.Location {
	local := weather.LocalTime(now, g.TimeZone)
	return weather.Location{
		Name:           g.City,
		Region:         g.Region,
		Country:        "US",
		Lat:            g.Lat,
		Lon:            g.Lon,
		TimeZone:       g.TimeZone,
		LocalTimeEpoch: now.Unix(),
		LocalTime:      local.Format("2006-01-02 15:04"),
	}
}
