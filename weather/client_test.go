package weather

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testAPIKey = "test-key"

func newTestClient(baseURL string) *Client {
	client := NewClient(testAPIKey)
	client.SetBaseURL(baseURL)
	return client
}

func TestCurrentSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("q"); got != "Guwahati" {
			t.Errorf("expected q=Guwahati, got %s", got)
		}
		if got := q.Get("appid"); got != testAPIKey {
			t.Errorf("expected appid=%s, got %s", testAPIKey, got)
		}
		if got := q.Get("units"); got != "metric" {
			t.Errorf("expected units=metric, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Guwahati","weather":[{"main":"Clouds","description":"broken clouds"}],"main":{"temp":27.4,"humidity":80}}`))
	}))
	defer srv.Close()

	snap, err := newTestClient(srv.URL).Current(context.Background(), "Guwahati")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Description != "broken clouds" {
		t.Errorf("expected broken clouds, got %q", snap.Description)
	}
	if snap.Temperature != 27.4 {
		t.Errorf("expected 27.4, got %v", snap.Temperature)
	}
}

func TestCurrentErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		checkFn func(error) bool
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"cod":401,"message":"Invalid API key"}`,
			checkFn: func(err error) bool {
				var apiErr *APIError
				return errors.As(err, &apiErr) && apiErr.StatusCode == 401 && apiErr.Message == "Invalid API key"
			},
		},
		{
			name:   "city not found",
			status: http.StatusNotFound,
			body:   `{"cod":"404","message":"city not found"}`,
			checkFn: func(err error) bool {
				var apiErr *APIError
				return errors.As(err, &apiErr) && apiErr.StatusCode == 404
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"weather": [`,
			checkFn: func(err error) bool {
				return strings.Contains(err.Error(), "decode response")
			},
		},
		{
			name:   "missing fields",
			status: http.StatusOK,
			body:   `{"weather": []}`,
			checkFn: func(err error) bool {
				var m *MalformedError
				return errors.As(err, &m)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Current(context.Background(), "Nowhere")
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.checkFn(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

type stubProvider struct {
	snap  Snapshot
	err   error
	calls int
}

func (s *stubProvider) Current(ctx context.Context, city string) (Snapshot, error) {
	s.calls++
	return s.snap, s.err
}

func TestTrackerKeepsDefaultOnFailure(t *testing.T) {
	var buf bytes.Buffer
	provider := &stubProvider{err: &APIError{StatusCode: 500, Message: "boom"}}
	tracker := NewTracker(provider, log.New(&buf, "", 0))

	if _, ok := tracker.Lookup(context.Background(), "Austin"); ok {
		t.Error("Expected lookup to report no change")
	}
	if got := tracker.Snapshot(); got != DefaultSnapshot {
		t.Errorf("Expected default snapshot, got %+v", got)
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("Expected failure to be logged, got %q", buf.String())
	}
}

func TestTrackerReplacesAndKeepsPrevious(t *testing.T) {
	provider := &stubProvider{snap: Snapshot{Description: "light rain", Temperature: 12.5}}
	tracker := NewTracker(provider, log.New(&bytes.Buffer{}, "", 0))

	var notified []string
	tracker.OnChange(func(city string, snap Snapshot) {
		notified = append(notified, city)
	})

	snap, ok := tracker.Lookup(context.Background(), " Denver ")
	if !ok {
		t.Fatal("Expected lookup to succeed")
	}
	if snap.Description != "light rain" {
		t.Errorf("Expected fetched snapshot to be returned, got %+v", snap)
	}
	if got := tracker.Snapshot(); got.Description != "light rain" || got.Temperature != 12.5 {
		t.Errorf("Unexpected snapshot %+v", got)
	}
	if tracker.City() != "Denver" {
		t.Errorf("Expected city Denver, got %q", tracker.City())
	}

	provider.err = errors.New("network down")
	tracker.Lookup(context.Background(), "Portland")
	if got := tracker.Snapshot(); got.Description != "light rain" {
		t.Errorf("Expected previous snapshot to remain, got %+v", got)
	}
	if len(notified) != 1 || notified[0] != "Denver" {
		t.Errorf("Unexpected notifications %v", notified)
	}
}

func TestTrackerSkipsBlankCity(t *testing.T) {
	provider := &stubProvider{}
	tracker := NewTracker(provider, log.New(&bytes.Buffer{}, "", 0))

	tracker.Lookup(context.Background(), "   ")
	if provider.calls != 0 {
		t.Errorf("Expected no provider calls, got %d", provider.calls)
	}
}
