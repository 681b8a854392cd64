package validation

// Schema tags accepted by Decode.
const (
	SchemaCurrent        = "current"
	SchemaForecast       = "forecast"
	SchemaError          = "error"
	SchemaSearch         = "search"
	SchemaGovPoint       = "gov-point"
	SchemaGovStations    = "gov-stations"
	SchemaGovForecast    = "gov-forecast"
	SchemaGovObservation = "gov-observation"
	SchemaGeocode        = "geocode"
)

// Required fields are pointers so that an absent field can be told apart from
// a zero value.

type Condition struct {
	Text *string `json:"text" validate:"required"`
	Icon *string `json:"icon" validate:"required"`
	Code *int    `json:"code" validate:"required"`
}

type Location struct {
	Name           *string  `json:"name" validate:"required"`
	Region         *string  `json:"region" validate:"required"`
	Country        *string  `json:"country" validate:"required"`
	Lat            *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon            *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	TzID           *string  `json:"tz_id" validate:"required"`
	LocaltimeEpoch *int64   `json:"localtime_epoch" validate:"required"`
	Localtime      *string  `json:"localtime" validate:"required"`
}

type Current struct {
	LastUpdatedEpoch *int64     `json:"last_updated_epoch" validate:"required"`
	LastUpdated      *string    `json:"last_updated" validate:"required"`
	TempC            *float64   `json:"temp_c" validate:"required"`
	TempF            *float64   `json:"temp_f" validate:"required"`
	IsDay            *int       `json:"is_day" validate:"required"`
	Condition        *Condition `json:"condition" validate:"required"`
	WindMph          *float64   `json:"wind_mph" validate:"required"`
	WindKph          *float64   `json:"wind_kph" validate:"required"`
	WindDegree       *float64   `json:"wind_degree" validate:"required"`
	WindDir          *string    `json:"wind_dir" validate:"required"`
	PressureMb       *float64   `json:"pressure_mb" validate:"required"`
	PressureIn       *float64   `json:"pressure_in" validate:"required"`
	PrecipMm         *float64   `json:"precip_mm" validate:"required"`
	PrecipIn         *float64   `json:"precip_in" validate:"required"`
	Humidity         *float64   `json:"humidity" validate:"required"`
	Cloud            *float64   `json:"cloud" validate:"required"`
	FeelslikeC       *float64   `json:"feelslike_c" validate:"required"`
	FeelslikeF       *float64   `json:"feelslike_f" validate:"required"`
	VisKm            *float64   `json:"vis_km" validate:"required"`
	VisMiles         *float64   `json:"vis_miles" validate:"required"`
	UV               *float64   `json:"uv" validate:"required"`
}

type Day struct {
	MaxtempC          *float64   `json:"maxtemp_c" validate:"required"`
	MaxtempF          *float64   `json:"maxtemp_f" validate:"required"`
	MintempC          *float64   `json:"mintemp_c" validate:"required"`
	MintempF          *float64   `json:"mintemp_f" validate:"required"`
	AvgtempC          *float64   `json:"avgtemp_c" validate:"required"`
	AvgtempF          *float64   `json:"avgtemp_f" validate:"required"`
	MaxwindMph        *float64   `json:"maxwind_mph" validate:"required"`
	MaxwindKph        *float64   `json:"maxwind_kph" validate:"required"`
	TotalprecipMm     *float64   `json:"totalprecip_mm" validate:"required"`
	TotalprecipIn     *float64   `json:"totalprecip_in" validate:"required"`
	AvgvisKm          *float64   `json:"avgvis_km" validate:"required"`
	AvgvisMiles       *float64   `json:"avgvis_miles" validate:"required"`
	Avghumidity       *float64   `json:"avghumidity" validate:"required"`
	DailyWillItRain   *int       `json:"daily_will_it_rain" validate:"required"`
	DailyChanceOfRain *int       `json:"daily_chance_of_rain" validate:"required"`
	DailyWillItSnow   *int       `json:"daily_will_it_snow" validate:"required"`
	DailyChanceOfSnow *int       `json:"daily_chance_of_snow" validate:"required"`
	Condition         *Condition `json:"condition" validate:"required"`
	UV                *float64   `json:"uv" validate:"required"`
}

type Astro struct {
	Sunrise          *string `json:"sunrise" validate:"required"`
	Sunset           *string `json:"sunset" validate:"required"`
	Moonrise         *string `json:"moonrise" validate:"required"`
	Moonset          *string `json:"moonset" validate:"required"`
	MoonPhase        *string `json:"moon_phase" validate:"required"`
	MoonIllumination *int    `json:"moon_illumination" validate:"required"`
}

type ForecastDay struct {
	Date      *string `json:"date" validate:"required,datetime=2006-01-02"`
	DateEpoch *int64  `json:"date_epoch" validate:"required"`
	Day       *Day    `json:"day" validate:"required"`
	Astro     *Astro  `json:"astro" validate:"required"`
}

// CurrentPayload is the commercial provider's current.json response.
type CurrentPayload struct {
	Location *Location `json:"location" validate:"required"`
	Current  *Current  `json:"current" validate:"required"`
}

// ForecastPayload is the commercial provider's forecast.json response.
type ForecastPayload struct {
	Location *Location `json:"location" validate:"required"`
	Current  *Current  `json:"current" validate:"required"`
	Forecast *struct {
		Forecastday []ForecastDay `json:"forecastday" validate:"required,dive"`
	} `json:"forecast" validate:"required"`
}

// ErrorPayload is the commercial provider's error body.
type ErrorPayload struct {
	Error *struct {
		Code    *int    `json:"code" validate:"required"`
		Message *string `json:"message" validate:"required"`
	} `json:"error" validate:"required"`
}

// SearchResult is one entry of the commercial provider's search.json response.
type SearchResult struct {
	ID      int64    `json:"id"`
	Name    *string  `json:"name" validate:"required"`
	Region  string   `json:"region"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat" validate:"required"`
	Lon     *float64 `json:"lon" validate:"required"`
	URL     string   `json:"url"`
}

// Measurement is a WMO-unit quantity as published by api.weather.gov. Value is
// null when the station did not report it.
type Measurement struct {
	Value    *float64 `json:"value"`
	UnitCode string   `json:"unitCode"`
}

// GovPointPayload is the /points/{lat},{lon} response.
type GovPointPayload struct {
	Geometry *struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties *struct {
		GridID           *string `json:"gridId" validate:"required"`
		GridX            *int    `json:"gridX" validate:"required"`
		GridY            *int    `json:"gridY" validate:"required"`
		TimeZone         string  `json:"timeZone"`
		RelativeLocation *struct {
			Properties *struct {
				City  *string `json:"city" validate:"required"`
				State *string `json:"state" validate:"required"`
			} `json:"properties" validate:"required"`
		} `json:"relativeLocation" validate:"required"`
	} `json:"properties" validate:"required"`
}

// GovStationsPayload is the /gridpoints/{id}/{x},{y}/stations response.
type GovStationsPayload struct {
	Features []struct {
		Properties *struct {
			StationIdentifier *string `json:"stationIdentifier" validate:"required"`
			Name              string  `json:"name"`
		} `json:"properties" validate:"required"`
	} `json:"features" validate:"required,dive"`
}

// GovPeriod is one half-day forecast period.
type GovPeriod struct {
	Number                     int          `json:"number"`
	Name                       string       `json:"name"`
	StartTime                  *string      `json:"startTime" validate:"required"`
	EndTime                    *string      `json:"endTime" validate:"required"`
	IsDaytime                  *bool        `json:"isDaytime" validate:"required"`
	Temperature                *float64     `json:"temperature" validate:"required"`
	TemperatureUnit            string       `json:"temperatureUnit"`
	WindSpeed                  string       `json:"windSpeed"`
	WindDirection              string       `json:"windDirection"`
	Icon                       string       `json:"icon"`
	ShortForecast              *string      `json:"shortForecast" validate:"required"`
	DetailedForecast           string       `json:"detailedForecast"`
	ProbabilityOfPrecipitation *Measurement `json:"probabilityOfPrecipitation"`
	RelativeHumidity           *Measurement `json:"relativeHumidity"`
}

// GovForecastPayload is the /gridpoints/{id}/{x},{y}/forecast response.
type GovForecastPayload struct {
	Properties *struct {
		Updated string      `json:"updated"`
		Periods []GovPeriod `json:"periods" validate:"required,dive"`
	} `json:"properties" validate:"required"`
}

// GovObservationPayload is the /stations/{id}/observations/latest response.
type GovObservationPayload struct {
	Properties *struct {
		Timestamp          *string      `json:"timestamp" validate:"required"`
		TextDescription    string       `json:"textDescription"`
		Icon               string       `json:"icon"`
		Temperature        *Measurement `json:"temperature" validate:"required"`
		Dewpoint           *Measurement `json:"dewpoint"`
		WindDirection      *Measurement `json:"windDirection"`
		WindSpeed          *Measurement `json:"windSpeed"`
		BarometricPressure *Measurement `json:"barometricPressure"`
		Visibility         *Measurement `json:"visibility"`
		RelativeHumidity   *Measurement `json:"relativeHumidity"`
		HeatIndex          *Measurement `json:"heatIndex"`
		WindChill          *Measurement `json:"windChill"`
	} `json:"properties" validate:"required"`
}

// GeocodeResult is one Nominatim search hit. Coordinates arrive as strings.
type GeocodeResult struct {
	PlaceID     int64   `json:"place_id"`
	Lat         *string `json:"lat" validate:"required,numeric"`
	Lon         *string `json:"lon" validate:"required,numeric"`
	DisplayName *string `json:"display_name" validate:"required"`
	Address     struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		Hamlet      string `json:"hamlet"`
		State       string `json:"state"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}
