package meteo

import (
	"encoding/json"
	"testing"
	"time"
)

func loadForecast(t *testing.T) *Forecast {
	t.Helper()
	var f Forecast
	if err := json.Unmarshal([]byte(compactBody), &f); err != nil {
		t.Fatalf("Failed to decode forecast: %v", err)
	}
	return &f
}

func TestHourlyConditions(t *testing.T) {
	f := loadForecast(t)
	from := time.Date(2025, 6, 1, 6, 20, 0, 0, time.UTC)

	rows := HourlyConditions(f, from, 6, 3*time.Hour)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	wantHours := []int{6, 9, 12}
	for i, row := range rows {
		if row.Time.Hour() != wantHours[i] {
			t.Errorf("Row %d: expected hour %d, got %d", i, wantHours[i], row.Time.Hour())
		}
	}
	if rows[0].Temp != 18.2 || rows[0].Humidity != 65 || rows[0].WindSpeed != 3.4 {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[1].Condition != "rainy" {
		t.Errorf("Expected rainy at 09:00, got %s", rows[1].Condition)
	}
	if rows[2].Condition != "partly-cloudy" {
		t.Errorf("Expected partly-cloudy at 12:00, got %s", rows[2].Condition)
	}
}

func TestHourlyConditionsSkipsMissingTemperature(t *testing.T) {
	f := loadForecast(t)
	from := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	rows := HourlyConditions(f, from, 1, time.Hour)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Time.Hour() != 9 {
		t.Errorf("Expected 09:00 row, got %v", rows[0].Time)
	}
}

func TestHourlyConditionsEmpty(t *testing.T) {
	if rows := HourlyConditions(nil, time.Now(), 6, time.Hour); rows != nil {
		t.Error("Expected nil rows for nil forecast")
	}
	if rows := HourlyConditions(loadForecast(t), time.Now(), 0, time.Hour); rows != nil {
		t.Error("Expected nil rows for n=0")
	}
}

func TestCurrent(t *testing.T) {
	f := loadForecast(t)

	step := Current(f, time.Date(2025, 6, 1, 7, 10, 0, 0, time.UTC))
	if step == nil || step.Time.Hour() != 7 {
		t.Fatalf("Expected 07:00 step, got %v", step)
	}
	if Current(nil, time.Now()) != nil {
		t.Error("Expected nil for nil forecast")
	}
}

func TestSymbolCondition(t *testing.T) {
	tests := []struct {
		symbol Symbol
		want   string
	}{
		{"clearsky_day", "sunny"},
		{"fair_night", "sunny"},
		{"partlycloudy_polartwilight", "partly-cloudy"},
		{"cloudy", "cloudy"},
		{"fog", "foggy"},
		{"heavyrainandthunder", "rainy"},
		{"lightrainshowers_day", "rainy"},
		{"lightsleet", "snowy"},
		{"heavysnowshowers_day", "snowy"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.symbol), func(t *testing.T) {
			if got := tt.symbol.Condition(); got != tt.want {
				t.Errorf("Condition(%s) = %s, want %s", tt.symbol, got, tt.want)
			}
		})
	}
}
