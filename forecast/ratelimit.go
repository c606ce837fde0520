package forecast

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Source so that calls to the hosted model stay under
// the service's request budget
type RateLimited struct {
	source  Source
	limiter *rate.Limiter
}

// NewRateLimited creates a rate limited forecast source
// rps is the maximum requests per second allowed (can be fractional)
// burst is the maximum burst size allowed
func NewRateLimited(source Source, rps float64, burst int) *RateLimited {
	return &RateLimited{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Fetch waits for the limiter and forwards to the wrapped source
func (r *RateLimited) Fetch(ctx context.Context, req Request) Response {
	if err := r.limiter.Wait(ctx); err != nil {
		return Failure(fmt.Errorf("rate limit wait canceled: %w", err))
	}
	return r.source.Fetch(ctx, req)
}

var _ Source = (*RateLimited)(nil)
