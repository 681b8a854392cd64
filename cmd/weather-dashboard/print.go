package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorMuted   = lipgloss.Color("#6C757D")
	colorDanger  = lipgloss.Color("#FF6B6B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true).
			Width(13)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)
)

var titleCase = cases.Title(language.English)

// cliTimeout bounds a one-shot command, retries included.
const cliTimeout = 30 * time.Second

type CurrentCmd struct {
	Location string `arg:"" help:"City name or \"lat,lon\"."`
}

func (c *CurrentCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	a, err := bootstrap(ctx, cli.Provider)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.service.CurrentWeather(ctx, "", weather.ParseQuery(c.Location))
	if err != nil {
		return err
	}
	fmt.Println(renderCurrent(resp.Location, resp.Current, resp.Provider))
	return nil
}

type ForecastCmd struct {
	Location string `arg:"" help:"City name or \"lat,lon\"."`
	Days     int    `short:"d" default:"5" help:"Number of days (1-10)."`
}

func (f *ForecastCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	a, err := bootstrap(ctx, cli.Provider)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.service.Forecast(ctx, "", weather.ParseQuery(f.Location), f.Days)
	if err != nil {
		return err
	}
	if resp.Current != nil {
		fmt.Println(renderCurrent(resp.Location, *resp.Current, resp.Provider))
	}
	fmt.Println(renderForecast(resp))
	return nil
}

type SearchCmd struct {
	Query string `arg:"" help:"Free text, at least two characters."`
}

func (s *SearchCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	a, err := bootstrap(ctx, cli.Provider)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.service.SearchLocations(ctx, "", s.Query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println(mutedStyle.Render("no matches"))
		return nil
	}
	for _, r := range results {
		place := strings.Join(nonEmpty(r.Name, r.Region, r.Country), ", ")
		fmt.Printf("%s %s\n", place, mutedStyle.Render(fmt.Sprintf("(%.4f,%.4f)", r.Lat, r.Lon)))
	}
	return nil
}

func renderCurrent(loc weather.Location, cur weather.CurrentConditions, provider string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Current conditions for %s", placeName(loc))))
	b.WriteString("\n")
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("Conditions", titleCase.String(cur.Condition.Text))
	row("Temperature", fmt.Sprintf("%.1f°C / %.1f°F", cur.TempC, cur.TempF))
	row("Feels like", fmt.Sprintf("%.1f°C / %.1f°F", cur.FeelsLikeC, cur.FeelsLikeF))
	row("Humidity", fmt.Sprintf("%d%%", cur.Humidity))
	row("Wind", fmt.Sprintf("%.1f km/h (%.1f mph) %s", cur.WindKph, cur.WindMph, cur.WindDir))
	row("Pressure", fmt.Sprintf("%.0f mb / %.2f inHg", cur.PressureMb, cur.PressureIn))
	row("Visibility", fmt.Sprintf("%.0f km", cur.VisKm))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s", provider, loc.LocalTime)))
	return boxStyle.Render(b.String())
}

func renderForecast(resp weather.ForecastResponse) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d-day forecast for %s", len(resp.Forecast), placeName(resp.Location))))
	for _, d := range resp.Forecast {
		b.WriteString("\n")
		day := d.Date
		if t, err := time.Parse(weather.DateLayout, d.Date); err == nil {
			day = t.Format("Mon 2006-01-02")
		}
		if d.Source == weather.SourcePlaceholder {
			b.WriteString(labelStyle.Width(16).Render(day) + mutedStyle.Render("no data"))
			continue
		}
		b.WriteString(labelStyle.Width(16).Render(day))
		b.WriteString(fmt.Sprintf("%-24s High: %s  Low: %s",
			titleCase.String(d.Day.Condition.Text),
			formatTemp(d.Day.MaxTemp),
			formatTemp(d.Day.MinTemp)))
		if d.Day.DailyChanceOfRain > 0 {
			b.WriteString(fmt.Sprintf("  Rain: %d%%", d.Day.DailyChanceOfRain))
		}
		if d.Day.DailyChanceOfSnow > 0 {
			b.WriteString(fmt.Sprintf("  Snow: %d%%", d.Day.DailyChanceOfSnow))
		}
	}
	return boxStyle.Render(b.String())
}

func formatTemp(t *weather.Temperature) string {
	if t == nil {
		return "  --  "
	}
	return fmt.Sprintf("%5.1f°C", t.C)
}

func placeName(loc weather.Location) string {
	return strings.Join(nonEmpty(loc.Name, loc.Region), ", ")
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
