package meteo

import "time"

// HourlyConditions samples the forecast every step starting at the first
// time step at or after from, returning at most n rows. Steps without an
// instant temperature are skipped.
func HourlyConditions(f *Forecast, from time.Time, n int, step time.Duration) []Hourly {
	if f == nil || f.Properties == nil || n <= 0 {
		return nil
	}

	var rows []Hourly
	next := from.Truncate(time.Hour)
	for i := range f.Properties.Timeseries {
		ts := &f.Properties.Timeseries[i]
		if ts.Time.Before(next) {
			continue
		}
		d := ts.Data.Instant.Details
		if d == nil || d.AirTemperature == nil {
			continue
		}

		rows = append(rows, Hourly{
			Time:      ts.Time,
			Temp:      *d.AirTemperature,
			Humidity:  valueOf(d.RelativeHumidity),
			WindSpeed: valueOf(d.WindSpeed),
			Cloud:     valueOf(d.CloudAreaFraction),
			Condition: ts.Symbol().Condition(),
		})
		if len(rows) == n {
			break
		}
		if step > 0 {
			next = ts.Time.Add(step)
		}
	}
	return rows
}

// Current returns the time step closest to now, or nil for an empty forecast
func Current(f *Forecast, now time.Time) *TimeStep {
	if f == nil || f.Properties == nil {
		return nil
	}

	var closest *TimeStep
	var best time.Duration
	for i := range f.Properties.Timeseries {
		ts := &f.Properties.Timeseries[i]
		diff := ts.Time.Sub(now).Abs()
		if closest == nil || diff < best {
			closest, best = ts, diff
		}
	}
	return closest
}

func valueOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
