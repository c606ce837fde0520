package forecast

import (
	"context"
	"errors"
)

// EnergyType selects which production series a forecast is requested for
type EnergyType string

const (
	EnergySolar EnergyType = "solar"
	EnergyWind  EnergyType = "wind"
	EnergyBoth  EnergyType = "both"
)

// Valid reports whether the energy type is one the dashboard offers
func (e EnergyType) Valid() bool {
	switch e {
	case EnergySolar, EnergyWind, EnergyBoth:
		return true
	}
	return false
}

// Request describes a forecast the user asked for
type Request struct {
	Location   string     `json:"location"`
	Days       int        `json:"days"`
	EnergyType EnergyType `json:"energyType"`
}

// Prediction is one day of forecast output
type Prediction struct {
	Date        string  `json:"date"`
	Solar       float64 `json:"solar"`
	Wind        float64 `json:"wind"`
	Confidence  float64 `json:"confidence"`
	Weather     string  `json:"weather"`
	Temperature float64 `json:"temperature"`
}

// Data is the payload of a successful forecast
type Data struct {
	Location       string       `json:"location"`
	ForecastPeriod int          `json:"forecastPeriod"`
	Predictions    []Prediction `json:"predictions"`
	Summary        *Summary     `json:"summary,omitempty"`
}

// Response is the result of a forecast call. Data is set when Success is
// true, Error otherwise.
type Response struct {
	Success bool   `json:"success"`
	Data    *Data  `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UnknownError is reported when a failure carries no message of its own
const UnknownError = "Unknown error occurred"

// Failure builds a failed response from err
func Failure(err error) Response {
	msg := UnknownError
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Response{Success: false, Error: msg}
}

// Source is anything that can produce a forecast response
type Source interface {
	Fetch(ctx context.Context, req Request) Response
}

// ErrShortSeries is wrapped when the model returns fewer values than days requested
var ErrShortSeries = errors.New("model returned too few values")
