package meteo

import (
	"strings"
	"time"
)

// Symbol is a MET weather symbol code such as "partlycloudy_day"
type Symbol string

// Condition maps the symbol onto the coarse conditions used by the
// dashboard: sunny, partly-cloudy, cloudy, rainy, snowy or foggy.
func (s Symbol) Condition() string {
	code := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(string(s), "_day"), "_night"), "_polartwilight")
	switch {
	case code == "":
		return ""
	case code == "clearsky" || code == "fair":
		return "sunny"
	case code == "partlycloudy":
		return "partly-cloudy"
	case code == "cloudy":
		return "cloudy"
	case code == "fog":
		return "foggy"
	case strings.Contains(code, "snow") || strings.Contains(code, "sleet"):
		return "snowy"
	case strings.Contains(code, "rain") || strings.Contains(code, "thunder"):
		return "rainy"
	}
	return "cloudy"
}

// Instant holds the values valid at the time step
type Instant struct {
	AirTemperature    *float64 `json:"air_temperature,omitempty"`
	RelativeHumidity  *float64 `json:"relative_humidity,omitempty"`
	WindSpeed         *float64 `json:"wind_speed,omitempty"`
	WindFromDirection *float64 `json:"wind_from_direction,omitempty"`
	CloudAreaFraction *float64 `json:"cloud_area_fraction,omitempty"`
}

// Period holds the summary of the hours following a time step
type Period struct {
	Summary *struct {
		SymbolCode Symbol `json:"symbol_code"`
	} `json:"summary,omitempty"`
	Details *struct {
		PrecipitationAmount *float64 `json:"precipitation_amount,omitempty"`
	} `json:"details,omitempty"`
}

type TimeStep struct {
	Time time.Time `json:"time"`
	Data struct {
		Instant struct {
			Details *Instant `json:"details,omitempty"`
		} `json:"instant"`
		Next1Hours  *Period `json:"next_1_hours,omitempty"`
		Next6Hours  *Period `json:"next_6_hours,omitempty"`
		Next12Hours *Period `json:"next_12_hours,omitempty"`
	} `json:"data"`
}

// Forecast is the compact GeoJSON document returned by MET
type Forecast struct {
	Type       string `json:"type"`
	Properties *struct {
		Meta struct {
			UpdatedAt time.Time `json:"updated_at"`
		} `json:"meta"`
		Timeseries []TimeStep `json:"timeseries"`
	} `json:"properties,omitempty"`
}

// Location of the site
type Location struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lon" yaml:"lon"`
	Altitude  *int    `json:"altitude,omitempty" yaml:"altitude,omitempty"`
}

// Symbol returns the shortest-period symbol available for the step
func (ts *TimeStep) Symbol() Symbol {
	for _, p := range []*Period{ts.Data.Next1Hours, ts.Data.Next6Hours, ts.Data.Next12Hours} {
		if p != nil && p.Summary != nil {
			return p.Summary.SymbolCode
		}
	}
	return ""
}

// Hourly is one row of the weather conditions chart
type Hourly struct {
	Time      time.Time `json:"time"`
	Temp      float64   `json:"temp"`
	Humidity  float64   `json:"humidity"`
	WindSpeed float64   `json:"windSpeed"`
	Cloud     float64   `json:"cloud"`
	Condition string    `json:"condition,omitempty"`
}
