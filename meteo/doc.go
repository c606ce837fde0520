// Package meteo reads the MET Norway locationforecast 2.0 compact feed for
// the plant site and turns it into the hourly rows of the dashboard
// weather conditions chart.
//
//	client := meteo.NewClient("energy-dashboard/1.0 ops@example.com")
//	forecast, err := client.GetCompact(ctx, meteo.Location{Latitude: 37.77, Longitude: -122.42})
//	if err != nil {
//		return err
//	}
//	rows := meteo.HourlyConditions(forecast, time.Now(), 6, 3*time.Hour)
//
// MET requires a User-Agent identifying the application; requests without
// one are rejected with 403.
package meteo
