package http

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitTransport is a custom http.RoundTripper that waits for a token
// from a shared limiter before forwarding each request.
type RateLimitTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// limiter paces outgoing requests; nil disables pacing.
	limiter *rate.Limiter
}

// NewRateLimitTransport creates and returns a new instance of RateLimitTransport.
// A nil limiter makes the transport a pass-through.
func NewRateLimitTransport(next http.RoundTripper, limiter *rate.Limiter) http.RoundTripper {
	return &RateLimitTransport{
		next:    next,
		limiter: limiter,
	}
}

// NewLimiter builds a limiter for the given requests-per-second budget.
// A non-positive budget returns nil, which means unlimited.
func NewLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}

	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// RoundTrip blocks until the limiter allows the request or its context is done.
// It implements the http.RoundTripper interface.
func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	return t.next.RoundTrip(req)
}
