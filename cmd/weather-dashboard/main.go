package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the command tree. Flags shared by every command live at the top.
type CLI struct {
	Provider string `short:"p" help:"Weather provider (weatherapi, weathergov). Defaults to providers.default."`

	Serve    ServeCmd    `cmd:"" default:"1" help:"Run the HTTP API and the background refresher."`
	Current  CurrentCmd  `cmd:"" help:"Print current conditions for a location."`
	Forecast ForecastCmd `cmd:"" help:"Print the daily forecast for a location."`
	Search   SearchCmd   `cmd:"" help:"Suggest locations matching free text."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("weather-dashboard"),
		kong.Description("Normalized current conditions and forecasts from weatherapi.com and api.weather.gov."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
