package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitProvider is a decorator that spaces outgoing requests to
// stay inside provider quotas.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps a Provider with a client-side budget of rpm
// requests per minute. A small burst is allowed so a question/answer
// round trip is not throttled mid-quiz. Non-positive rpm disables the
// limiter.
func WithRateLimit(p Provider, rpm int) Provider {
	if rpm <= 0 {
		return p
	}
	burst := 3
	if rpm < burst {
		burst = rpm
	}
	return &RateLimitProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst),
	}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}
