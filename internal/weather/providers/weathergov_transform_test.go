package providers

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/validation"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

func decodePeriods(t *testing.T, body string) []validation.GovPeriod {
	t.Helper()
	var payload validation.GovForecastPayload
	if err := validation.Decode(validation.SchemaGovForecast, []byte(body), &payload); err != nil {
		t.Fatalf("fixture failed validation: %v", err)
	}
	return payload.Properties.Periods
}

func TestTransformPeriodsDayAndNightOnly(t *testing.T) {
	periods := decodePeriods(t, `{"properties":{"periods":[
		{"startTime":"2025-09-16T06:00:00-05:00","endTime":"2025-09-16T18:00:00-05:00","isDaytime":true,"temperature":75,"temperatureUnit":"F","shortForecast":"Sunny"},
		{"startTime":"2025-09-16T18:00:00-05:00","endTime":"2025-09-17T06:00:00-05:00","isDaytime":false,"temperature":50,"temperatureUnit":"F","shortForecast":"Clear"}
	]}}`)

	days, err := transformPeriods(periods, "2025-09-16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected one day, got %d", len(days))
	}
	d := days[0]
	if d.Day.MaxTemp.F != 75 || d.Day.MinTemp.F != 50 {
		t.Fatalf("expected 75/50, got %+v/%+v", d.Day.MaxTemp, d.Day.MinTemp)
	}
	if d.Day.AvgTemp == nil || d.Day.AvgTemp.F != 62.5 {
		t.Fatalf("expected avg 62.5F, got %+v", d.Day.AvgTemp)
	}
	if d.DateEpoch != weather.DateEpoch("2025-09-16") {
		t.Fatalf("unexpected date epoch %d", d.DateEpoch)
	}
}

func TestTransformPeriodsNightOnlyUsesNightCondition(t *testing.T) {
	periods := decodePeriods(t, `{"properties":{"periods":[
		{"startTime":"2025-09-16T18:00:00-05:00","endTime":"2025-09-17T06:00:00-05:00","isDaytime":false,"temperature":41,"temperatureUnit":"F","shortForecast":"Light Snow Likely","probabilityOfPrecipitation":{"value":70}}
	]}}`)

	days, err := transformPeriods(periods, "2025-09-16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := days[0]
	if d.Day.MaxTemp != nil {
		t.Fatalf("expected nil max, got %+v", d.Day.MaxTemp)
	}
	if d.Day.MinTemp == nil || d.Day.MinTemp.C != 5 {
		t.Fatalf("expected min 5C, got %+v", d.Day.MinTemp)
	}
	if d.Day.Condition.Code != weather.CodeLightSnow {
		t.Fatalf("expected light snow, got %d", d.Day.Condition.Code)
	}
	if !d.Day.DailyWillItSnow || d.Day.DailyChanceOfSnow != 70 || d.Day.DailyWillItRain {
		t.Fatalf("expected snow chance 70, got %+v", d.Day)
	}
	if d.Day.Condition.Icon != govDefaultNightIcon {
		t.Fatalf("expected night default icon, got %q", d.Day.Condition.Icon)
	}
}

func TestTransformPeriodsBucketsByStartDatePrefix(t *testing.T) {
	// 23:00 local on the 16th is the 17th in UTC; the local prefix wins.
	periods := decodePeriods(t, `{"properties":{"periods":[
		{"startTime":"2025-09-16T23:00:00-05:00","endTime":"2025-09-17T06:00:00-05:00","isDaytime":false,"temperature":55,"temperatureUnit":"F","shortForecast":"Cloudy"}
	]}}`)

	days, err := transformPeriods(periods, "2025-09-16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 || days[0].Date != "2025-09-16" {
		t.Fatalf("expected bucket 2025-09-16, got %+v", days)
	}
}

func TestTransformPeriodsCapsAtFiveDays(t *testing.T) {
	var periods []validation.GovPeriod
	start := time.Date(2025, 9, 16, 6, 0, 0, 0, time.FixedZone("CDT", -5*3600))
	for i := 0; i < 14; i++ {
		s := start.Add(time.Duration(i) * 12 * time.Hour)
		e := s.Add(12 * time.Hour)
		startStr, endStr := s.Format(time.RFC3339), e.Format(time.RFC3339)
		isDay := i%2 == 0
		temp := 60.0 + float64(i)
		short := "Sunny"
		periods = append(periods, validation.GovPeriod{
			StartTime: &startStr, EndTime: &endStr, IsDaytime: &isDay, Temperature: &temp, TemperatureUnit: "F", ShortForecast: &short,
		})
	}

	days, err := transformPeriods(periods, "2025-09-17")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != weather.DefaultForecastDays {
		t.Fatalf("expected %d days, got %d", weather.DefaultForecastDays, len(days))
	}
	if days[0].Date != "2025-09-17" || days[4].Date != "2025-09-21" {
		t.Fatalf("unexpected range %s..%s", days[0].Date, days[4].Date)
	}
	for i := 1; i < len(days); i++ {
		if days[i].Date <= days[i-1].Date {
			t.Fatalf("days out of order: %s after %s", days[i].Date, days[i-1].Date)
		}
	}
}

func TestTransformPeriodsRejectsMalformedStart(t *testing.T) {
	start, end := "yesterday", "2025-09-16T18:00:00-05:00"
	isDay, temp, short := true, 70.0, "Sunny"
	_, err := transformPeriods([]validation.GovPeriod{{
		StartTime: &start, EndTime: &end, IsDaytime: &isDay, Temperature: &temp, ShortForecast: &short,
	}}, "2025-09-16")

	var vErr *weather.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "properties.periods[0].startTime" {
		t.Fatalf("unexpected field %q", vErr.Field)
	}
}

func TestCurrentFromObservationWithoutTemperature(t *testing.T) {
	var obs validation.GovObservationPayload
	body := `{"properties":{"timestamp":"2025-09-16T15:53:00+00:00","temperature":{"unitCode":"wmoUnit:degC","value":null}}}`
	if err := json.Unmarshal([]byte(body), &obs); err != nil {
		t.Fatal(err)
	}
	if _, ok := currentFromObservation(&obs, true); ok {
		t.Fatal("expected a reading without temperature to be unusable")
	}
}
