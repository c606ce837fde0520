// Package sun computes daylight times and solar altitude for the plant site.
package sun

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Daylight describes one day at a site
type Daylight struct {
	Sunrise     time.Time     `json:"sunrise"`
	Sunset      time.Time     `json:"sunset"`
	SolarNoon   time.Time     `json:"solarNoon"`
	DayLength   time.Duration `json:"dayLength"`
	AltitudeDeg float64       `json:"altitudeDeg"`
}

// Today returns the daylight times of the day containing t and the solar
// altitude at t. During polar night or day the sunrise and sunset are zero.
func Today(t time.Time, lat, lon float64) Daylight {
	times := suncalc.GetTimes(t, lat, lon)
	d := Daylight{
		Sunrise:     times["sunrise"].Value,
		Sunset:      times["sunset"].Value,
		SolarNoon:   times["solarNoon"].Value,
		AltitudeDeg: Altitude(t, lat, lon),
	}
	if !d.Sunrise.IsZero() && d.Sunset.After(d.Sunrise) {
		d.DayLength = d.Sunset.Sub(d.Sunrise)
	}
	return d
}

// Altitude returns the solar altitude above the horizon in degrees
func Altitude(t time.Time, lat, lon float64) float64 {
	pos := suncalc.GetPosition(t, lat, lon)
	return pos.Altitude * 180 / math.Pi
}

// IsDaylight reports whether the sun is above the horizon at t
func IsDaylight(t time.Time, lat, lon float64) bool {
	return Altitude(t, lat, lon) > 0
}

// ExpectedPower estimates PV output in kW from the panel peak power, the
// solar altitude and the cloud area fraction (0-100).
func ExpectedPower(t time.Time, lat, lon, peakKW, cloudPct float64) float64 {
	factor := math.Sin(Altitude(t, lat, lon) * math.Pi / 180)
	if factor <= 0 || peakKW <= 0 {
		return 0
	}
	cloudPct = math.Max(0, math.Min(100, cloudPct))
	// heavy overcast still lets through roughly a quarter of clear-sky output
	return peakKW * factor * (1 - 0.75*cloudPct/100)
}
