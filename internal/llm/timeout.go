package llm

import (
	"context"
	"time"
)

// TimeoutProvider bounds each Generate call with a deadline. It sits
// outermost in the middleware chain so the bound covers all retry
// attempts of a request.
type TimeoutProvider struct {
	next Provider
	d    time.Duration
}

// WithTimeout wraps a provider so every Generate call finishes within
// d. A non-positive d disables the bound.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{next: p, d: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.next.ModelID()
}
