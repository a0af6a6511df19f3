package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// statusError carries the HTTP status of a failed provider call so the
// resilience layer can tell throttling and outages from hard failures.
type statusError struct {
	code   int
	detail string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.detail)
}

func (e *statusError) StatusCode() int { return e.code }

// adaptiveLimiter paces provider calls: the rate creeps up while calls
// succeed and halves when the provider pushes back, within [minRate, maxRate].
type adaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minRate   rate.Limit
	maxRate   rate.Limit
	stepUp    rate.Limit
	lastError time.Time
}

func newAdaptiveLimiter(initial, min, max rate.Limit) *adaptiveLimiter {
	if initial < min {
		initial = min
	}
	burst := int(initial)
	if burst < 1 {
		burst = 1
	}
	return &adaptiveLimiter{
		limiter: rate.NewLimiter(initial, burst),
		minRate: min,
		maxRate: max,
		stepUp:  min,
	}
}

func (a *adaptiveLimiter) wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// success raises the rate, but only once the last pushback is well behind us.
func (a *adaptiveLimiter) success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.setRate(a.limiter.Limit() + a.stepUp)
	}
}

// throttled halves the rate after a 429 or server-side failure.
func (a *adaptiveLimiter) throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.setRate(a.limiter.Limit() / 2)
}

func (a *adaptiveLimiter) setRate(r rate.Limit) {
	if r > a.maxRate {
		r = a.maxRate
	}
	if r < a.minRate {
		r = a.minRate
	}
	if r != a.limiter.Limit() {
		a.limiter.SetLimit(r)
		burst := int(r)
		if burst < 1 {
			burst = 1
		}
		a.limiter.SetBurst(burst)
	}
}

func (a *adaptiveLimiter) currentRate() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.limiter.Limit()
}

// retryProvider retries transient provider failures with exponential backoff
// and paces all calls through one adaptive limiter. Client errors other than
// 429 fail immediately: a bad API key does not get better on attempt three.
type retryProvider struct {
	p   Provider
	lim *adaptiveLimiter

	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	overall      time.Duration
}

// WithRetry wraps p so Generate survives transient HTTP failures. A learner
// is waiting on every call, so attempts and the overall deadline stay short.
func WithRetry(p Provider) Provider {
	return &retryProvider{
		p:            p,
		lim:          newAdaptiveLimiter(4, 1, 10),
		maxAttempts:  3,
		initialDelay: 500 * time.Millisecond,
		maxDelay:     4 * time.Second,
		overall:      90 * time.Second,
	}
}

func (r *retryProvider) Generate(messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.overall)
	defer cancel()

	delay := r.initialDelay
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := r.lim.wait(ctx); err != nil {
			return "", err
		}

		reply, err := r.p.Generate(messages)
		if err == nil {
			r.lim.success()
			if attempt > 1 {
				log.Printf("[AI] Recovered after %d attempts, limiter at %.1f rps",
					attempt, float64(r.lim.currentRate()))
			}
			return reply, nil
		}
		lastErr = err

		if !retryable(err) {
			return "", err
		}
		r.lim.throttled()

		if attempt == r.maxAttempts {
			break
		}
		log.Printf("[AI] Attempt %d failed: %v. Retrying in %v", attempt, err, delay)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(jitter(delay)):
		}
		delay *= 2
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}

	return "", fmt.Errorf("ai: %d attempts failed: %w", r.maxAttempts, lastErr)
}

// retryable reports whether err is worth another attempt: network failures,
// 429 and 5xx are; any other client error is final.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		code := se.StatusCode()
		return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
	}
	return true
}

// jitter spreads retries by up to 25% so parallel dialogs don't retry in
// lockstep.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d/4)))
}
