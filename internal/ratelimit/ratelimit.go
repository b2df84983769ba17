package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter implements a token bucket sized as calls per rolling 60-second
// window. One Limiter is shared across every endpoint of a client so the
// budget is global, not per-resource.
type Limiter struct {
	rate       float64 // tokens per second
	tokens     float64
	maxTokens  float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// New creates a rate limiter allowing perMinute calls per rolling minute
func New(perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &Limiter{
		rate:       float64(perMinute) / 60.0,
		tokens:     float64(perMinute),
		maxTokens:  float64(perMinute),
		lastUpdate: time.Now(),
	}
}

// Wait blocks until a token is available or context is cancelled
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if l.tryTake() {
			return nil
		}

		// Sleep roughly one token's worth, capped so cancellation stays responsive
		waitTime := time.Duration(float64(time.Second) / l.rate)
		if waitTime > time.Second {
			waitTime = time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

func (l *Limiter) tryTake() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastUpdate).Seconds()

	l.tokens += elapsed * l.rate
	if l.tokens > l.maxTokens {
		l.tokens = l.maxTokens
	}

	l.lastUpdate = now

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true
	}

	return false
}
