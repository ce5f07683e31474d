package httpx

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusError is implemented by errors that carry an upstream HTTP status.
type StatusError interface {
	HTTPStatusCode() int
}

type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}

// Do calls attempt until it succeeds, fails with a non-retryable error, or the
// policy runs out. The delay doubles per attempt, honors Retry-After and is jittered.
func Do(
	ctx context.Context,
	p RetryPolicy,
	attempt func(ctx context.Context) (*http.Response, error),
	onRetry func(n int, wait time.Duration, err error),
) (*http.Response, error) {
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultRetryPolicy.MaxDelay
	}
	delay := p.BaseDelay
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := attempt(ctx)
		if err == nil {
			return resp, nil
		}
		if n >= p.MaxRetries || !Retryable(err) {
			return resp, err
		}
		wait := jitter(retryAfter(resp, delay, p.MaxDelay))
		if onRetry != nil {
			onRetry(n+1, wait, err)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// Retryable reports timeouts, 408, 429 and 5xx as worth another attempt.
func Retryable(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var se StatusError
	if errors.As(err, &se) {
		code := se.HTTPStatusCode()
		return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
	}
	return false
}

func retryAfter(resp *http.Response, fallback, max time.Duration) time.Duration {
	d := fallback
	if resp != nil {
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
			d = time.Duration(secs) * time.Second
		}
	}
	return min(d, max)
}

// jitter spreads d by +/-20%.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
}
