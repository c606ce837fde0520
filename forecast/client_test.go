package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devskill-org/energy-dashboard/utils"
)

var fixedNow = time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)

func newTestClient(baseURL string) *Client {
	client := NewClient()
	client.SetBaseURL(baseURL)
	client.SetClock(func() time.Time { return fixedNow })
	client.SetConfidenceSource(func() float64 { return 0.5 })
	return client
}

func modelServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestNewClient(t *testing.T) {
	client := NewClient()

	if client.baseURL != DefaultBaseURL {
		t.Errorf("Expected default base URL, got %q", client.baseURL)
	}
	if client.model != DefaultModel {
		t.Errorf("Expected default model, got %q", client.model)
	}
	if client.httpClient == nil {
		t.Fatal("HTTP client is nil")
	}
	if client.httpClient.Timeout != 0 {
		t.Errorf("Expected no client timeout, got %v", client.httpClient.Timeout)
	}
}

func TestFetchRejectsBlankLocation(t *testing.T) {
	var calls int32
	srv := modelServer(t, http.StatusOK, `{"data":[1,2,3]}`, &calls)
	defer srv.Close()

	client := newTestClient(srv.URL)

	for _, location := range []string{"", "   ", "\t\n"} {
		resp := client.Fetch(context.Background(), Request{Location: location, Days: 3, EnergyType: EnergySolar})
		if resp.Success {
			t.Errorf("Expected failure for location %q", location)
		}
		if resp.Error == "" {
			t.Errorf("Expected an error message for location %q", location)
		}
		if resp.Data != nil {
			t.Errorf("Expected no data for location %q", location)
		}
	}

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("Expected no network calls, got %d", got)
	}
}

func TestFetchRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/predict/" {
			t.Errorf("Expected path /predict/, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		expected := map[string]string{
			"model":       "lstm",
			"location":    "Assam, India",
			"today":       "false",
			"future_days": "3",
		}
		for key, want := range expected {
			if got := q.Get(key); got != want {
				t.Errorf("Expected %s=%q, got %q", key, want, got)
			}
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}

		var body Request
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if body.Location != "Assam, India" || body.Days != 3 || body.EnergyType != EnergySolar {
			t.Errorf("Body does not echo request: %+v", body)
		}

		w.Write([]byte(`{"data":[1,2,3]}`))
	}))
	defer srv.Close()

	resp := newTestClient(srv.URL).Fetch(context.Background(), Request{Location: "Assam, India", Days: 3, EnergyType: EnergySolar})
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}
}

func TestFetchExample(t *testing.T) {
	srv := modelServer(t, http.StatusOK, `{"data":[1.234,5.678,9.0]}`, nil)
	defer srv.Close()

	resp := newTestClient(srv.URL).Fetch(context.Background(), Request{Location: "Assam, India", Days: 3, EnergyType: EnergySolar})
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}
	if resp.Data.Location != "Assam, India" {
		t.Errorf("Expected location echo, got %q", resp.Data.Location)
	}
	if resp.Data.ForecastPeriod != 3 {
		t.Errorf("Expected forecast period 3, got %d", resp.Data.ForecastPeriod)
	}

	expectedSolar := []float64{1.23, 5.68, 9.00}
	if len(resp.Data.Predictions) != len(expectedSolar) {
		t.Fatalf("Expected %d predictions, got %d", len(expectedSolar), len(resp.Data.Predictions))
	}

	for i, p := range resp.Data.Predictions {
		if p.Solar != expectedSolar[i] {
			t.Errorf("prediction %d: expected solar %.2f, got %v", i, expectedSolar[i], p.Solar)
		}
		if p.Wind != 0 {
			t.Errorf("prediction %d: expected wind 0, got %v", i, p.Wind)
		}
		if want := utils.DateLabel(fixedNow.AddDate(0, 0, i)); p.Date != want {
			t.Errorf("prediction %d: expected date %q, got %q", i, want, p.Date)
		}
		if p.Confidence != 90 {
			t.Errorf("prediction %d: expected confidence 90, got %v", i, p.Confidence)
		}
	}

	if resp.Data.Predictions[0].Date != "Oct 18" || resp.Data.Predictions[2].Date != "Oct 20" {
		t.Errorf("Unexpected date labels: %q..%q", resp.Data.Predictions[0].Date, resp.Data.Predictions[2].Date)
	}
}

func TestFetchTruncatesToDays(t *testing.T) {
	srv := modelServer(t, http.StatusOK, `{"data":[0.111,0.222,0.333,0.444,0.555]}`, nil)
	defer srv.Close()

	resp := newTestClient(srv.URL).Fetch(context.Background(), Request{Location: "Denver, CO", Days: 2, EnergyType: EnergyBoth})
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}
	if len(resp.Data.Predictions) != 2 {
		t.Fatalf("Expected 2 predictions, got %d", len(resp.Data.Predictions))
	}
	if resp.Data.Predictions[1].Solar != 0.22 {
		t.Errorf("Expected 0.22, got %v", resp.Data.Predictions[1].Solar)
	}
}

func TestFetchWeatherCycle(t *testing.T) {
	values := make([]string, 14)
	for i := range values {
		values[i] = "1"
	}
	srv := modelServer(t, http.StatusOK, `{"data":[`+strings.Join(values, ",")+`]}`, nil)
	defer srv.Close()

	resp := newTestClient(srv.URL).Fetch(context.Background(), Request{Location: "Portland, OR", Days: 14, EnergyType: EnergyBoth})
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	preds := resp.Data.Predictions
	if len(preds) != 14 {
		t.Fatalf("Expected 14 predictions, got %d", len(preds))
	}
	if preds[3].Weather != "rainy" || preds[3].Temperature != 18 {
		t.Errorf("Unexpected day 3: %+v", preds[3])
	}
	for i := 7; i < 14; i++ {
		if preds[i].Weather != preds[i-7].Weather || preds[i].Temperature != preds[i-7].Temperature {
			t.Errorf("Day %d does not repeat day %d", i, i-7)
		}
	}
}

func TestFetchDatesConsecutive(t *testing.T) {
	srv := modelServer(t, http.StatusOK, `{"data":[1,1,1,1,1,1,1]}`, nil)
	defer srv.Close()

	client := newTestClient(srv.URL)
	// month boundary
	start := time.Date(2026, time.January, 29, 23, 0, 0, 0, time.UTC)
	client.SetClock(func() time.Time { return start })

	resp := client.Fetch(context.Background(), Request{Location: "Austin, TX", Days: 7, EnergyType: EnergySolar})
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	expected := []string{"Jan 29", "Jan 30", "Jan 31", "Feb 1", "Feb 2", "Feb 3", "Feb 4"}
	for i, p := range resp.Data.Predictions {
		if p.Date != expected[i] {
			t.Errorf("Day %d: expected %q, got %q", i, expected[i], p.Date)
		}
	}
}

func TestFetchHTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"bad request", http.StatusBadRequest},
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"bad gateway", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := modelServer(t, tt.status, `{"detail":"nope"}`, nil)
			defer srv.Close()

			resp := newTestClient(srv.URL).Fetch(context.Background(), Request{Location: "Assam, India", Days: 3, EnergyType: EnergySolar})
			if resp.Success {
				t.Fatal("Expected failure")
			}
			if resp.Data != nil {
				t.Error("Expected no data on failure")
			}
			if !strings.Contains(resp.Error, strconv.Itoa(tt.status)) {
				t.Errorf("Expected error to contain status %d, got %q", tt.status, resp.Error)
			}
		})
	}
}

func TestFetchMalformedJSON(t *testing.T) {
	srv := modelServer(t, http.StatusOK, `{"data": [1, 2,`, nil)
	defer srv.Close()

	resp := newTestClient(srv.URL).Fetch(context.Background(), Request{Location: "Assam, India", Days: 2, EnergyType: EnergySolar})
	if resp.Success {
		t.Fatal("Expected failure for malformed JSON")
	}
	if !strings.Contains(resp.Error, "decode") {
		t.Errorf("Expected decode error, got %q", resp.Error)
	}
}

func TestFetchShortSeries(t *testing.T) {
	srv := modelServer(t, http.StatusOK, `{"data":[1.0]}`, nil)
	defer srv.Close()

	resp := newTestClient(srv.URL).Fetch(context.Background(), Request{Location: "Assam, India", Days: 3, EnergyType: EnergySolar})
	if resp.Success {
		t.Fatal("Expected failure when model returns fewer values than days")
	}
	if !strings.Contains(resp.Error, ErrShortSeries.Error()) {
		t.Errorf("Expected short series error, got %q", resp.Error)
	}
}

func TestFetchNetworkError(t *testing.T) {
	srv := modelServer(t, http.StatusOK, `{"data":[1]}`, nil)
	url := srv.URL
	srv.Close()

	resp := newTestClient(url).Fetch(context.Background(), Request{Location: "Assam, India", Days: 1, EnergyType: EnergySolar})
	if resp.Success {
		t.Fatal("Expected failure when server is unreachable")
	}
	if !strings.Contains(resp.Error, "network error") {
		t.Errorf("Expected network error, got %q", resp.Error)
	}
}

func TestFailure(t *testing.T) {
	if got := Failure(nil).Error; got != UnknownError {
		t.Errorf("Expected %q, got %q", UnknownError, got)
	}
	if got := Failure(errors.New("")).Error; got != UnknownError {
		t.Errorf("Expected %q, got %q", UnknownError, got)
	}
	if got := Failure(&APIError{StatusCode: 503}).Error; got != "API Error: 503" {
		t.Errorf("Unexpected message %q", got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, expected float64
	}{
		{1.234, 1.23},
		{5.678, 5.68},
		{9.0, 9.0},
		{-2.346, -2.35},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.expected {
			t.Errorf("Round2(%v): expected %v, got %v", tt.in, tt.expected, got)
		}
	}
}
