package weather

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultSnapshot is shown until the first successful lookup
var DefaultSnapshot = Snapshot{Description: "clear sky", Temperature: 28}

// Tracker holds the snapshot displayed on the dashboard weather card.
// Failed lookups are logged and leave the displayed snapshot untouched.
type Tracker struct {
	provider Provider
	logger   *log.Logger
	onChange func(city string, snap Snapshot)

	mu       sync.RWMutex
	snapshot Snapshot
	city     string
	updated  time.Time
}

// NewTracker creates a tracker starting from DefaultSnapshot
func NewTracker(provider Provider, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		provider: provider,
		logger:   logger,
		snapshot: DefaultSnapshot,
	}
}

// OnChange registers a callback invoked after each successful lookup
func (t *Tracker) OnChange(fn func(city string, snap Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Lookup fetches weather for city and replaces the snapshot on success.
// It returns the fetched snapshot and whether the lookup succeeded; errors
// are logged, never surfaced.
func (t *Tracker) Lookup(ctx context.Context, city string) (Snapshot, bool) {
	city = strings.TrimSpace(city)
	if city == "" {
		t.logger.Printf("Weather lookup skipped: empty city")
		return Snapshot{}, false
	}

	snap, err := t.provider.Current(ctx, city)
	if err != nil {
		t.logger.Printf("Error fetching weather data for %s: %v", city, err)
		return Snapshot{}, false
	}

	t.mu.Lock()
	t.snapshot = snap
	t.city = city
	t.updated = time.Now()
	onChange := t.onChange
	t.mu.Unlock()

	if onChange != nil {
		onChange(city, snap)
	}
	return snap, true
}

// Snapshot returns the currently displayed weather
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot
}

// City returns the city of the last successful lookup, if any
func (t *Tracker) City() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.city
}

// Updated returns when the snapshot was last replaced
func (t *Tracker) Updated() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updated
}

// RateLimitedProvider wraps a Provider with rate limiting
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider creates a new rate limited weather provider.
// OpenWeatherMap's free tier allows 60 calls/minute.
func NewRateLimitedProvider(provider Provider, rps float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Current waits for limiter permission, then forwards
func (r *RateLimitedProvider) Current(ctx context.Context, city string) (Snapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Snapshot{}, &NetworkError{Operation: "rate limit wait", Err: err}
	}
	return r.provider.Current(ctx, city)
}

var _ Provider = (*RateLimitedProvider)(nil)
