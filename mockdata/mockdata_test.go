package mockdata

import "testing"

func TestProductionSelectsSeries(t *testing.T) {
	tests := []struct {
		energyType string
		wantFirst  float64
	}{
		{"solar", 0},
		{"wind", 35},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.energyType, func(t *testing.T) {
			points := Production(tt.energyType)
			if len(points) != 8 {
				t.Fatalf("Expected 8 points, got %d", len(points))
			}
			if points[0].Production != tt.wantFirst {
				t.Errorf("Expected first production %v, got %v", tt.wantFirst, points[0].Production)
			}
			if points[0].Time != "06:00" || points[7].Time != "20:00" {
				t.Errorf("Unexpected time range %s..%s", points[0].Time, points[7].Time)
			}
		})
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	a := SolarProduction()
	a[3].Production = -1

	if SolarProduction()[3].Production != 78 {
		t.Error("Mutating a returned series changed the shared table")
	}

	m := Monthly()
	m[0].Solar = 0
	if Monthly()[0].Solar != 1200 {
		t.Error("Mutating monthly data changed the shared table")
	}
}

func TestSeriesShapes(t *testing.T) {
	if got := len(Weather()); got != 6 {
		t.Errorf("Expected 6 weather rows, got %d", got)
	}
	if got := len(DailyForecasts()); got != 7 {
		t.Errorf("Expected 7 daily forecasts, got %d", got)
	}
	if got := len(HourlyForecasts()); got != 6 {
		t.Errorf("Expected 6 hourly forecasts, got %d", got)
	}
	if got := len(Monthly()); got != 12 {
		t.Errorf("Expected 12 months, got %d", got)
	}
	if got := len(EfficiencyBreakdown()); got != 4 {
		t.Errorf("Expected 4 efficiency entries, got %d", got)
	}
	if got := len(PerformanceMetrics()); got != 4 {
		t.Errorf("Expected 4 performance metrics, got %d", got)
	}
	if got := len(Features()); got != 6 {
		t.Errorf("Expected 6 features, got %d", got)
	}
}

func TestPeak(t *testing.T) {
	p, ok := Peak(SolarProduction())
	if !ok {
		t.Fatal("Expected a peak")
	}
	if p.Time != "14:00" || p.Production != 85 {
		t.Errorf("Expected 14:00 with 85, got %s with %v", p.Time, p.Production)
	}

	p, _ = Peak(WindProduction())
	if p.Time != "14:00" || p.Production != 88 {
		t.Errorf("Expected wind peak 14:00 with 88, got %s with %v", p.Time, p.Production)
	}

	if _, ok := Peak(nil); ok {
		t.Error("Expected no peak for empty series")
	}
}
