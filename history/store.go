// Package history persists generated forecasts so the dashboard can list
// recent runs and overlay forecast totals on the analytics charts.
// SQLite is used by default; PostgreSQL when a connection string is
// configured.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devskill-org/energy-dashboard/forecast"
)

// Record is one stored forecast run
type Record struct {
	ID            string                `json:"id"`
	Location      string                `json:"location"`
	EnergyType    string                `json:"energyType"`
	Days          int                   `json:"days"`
	TotalExpected float64               `json:"totalExpected"`
	CreatedAt     time.Time             `json:"createdAt"`
	Predictions   []forecast.Prediction `json:"predictions"`
}

// NewRecord builds a record for a successful forecast response
func NewRecord(req forecast.Request, data *forecast.Data, now time.Time) Record {
	r := Record{
		ID:         uuid.NewString(),
		Location:   req.Location,
		EnergyType: string(req.EnergyType),
		Days:       req.Days,
		CreatedAt:  now.UTC().Truncate(time.Second),
	}
	if data != nil {
		r.Predictions = data.Predictions
		for _, p := range data.Predictions {
			r.TotalExpected += p.Solar + p.Wind
		}
		r.TotalExpected = forecast.Round2(r.TotalExpected)
	}
	return r
}

// Store is the forecast history backend
type Store interface {
	SaveForecast(ctx context.Context, r Record) error
	// Recent returns the newest records first. An empty location matches all.
	Recent(ctx context.Context, location string, limit int) ([]Record, error)
	// MonthlySolar sums the expected totals of the runs created in year,
	// keyed by month in loc.
	MonthlySolar(ctx context.Context, year int, loc *time.Location) (map[time.Month]float64, error)
	// Prune deletes records created before cutoff and returns how many
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}
