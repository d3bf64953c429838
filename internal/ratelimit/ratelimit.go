package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/pljobs/internal/model"
)

// HostLimiter enforces a minimum delay between requests to the same host.
// Concurrent callers are queued: each reserves the next free slot.
type HostLimiter struct {
	mu       sync.Mutex
	next     map[string]time.Time // earliest start of the next request per host
	minDelay time.Duration
}

func NewHostLimiter(minDelay time.Duration) *HostLimiter {
	return &HostLimiter{
		next:     make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until the caller's slot for host arrives.
func (r *HostLimiter) Wait(ctx context.Context, host string) error {
	r.mu.Lock()
	now := time.Now()
	slot := now
	if n, ok := r.next[host]; ok && n.After(now) {
		slot = n
	}
	r.next[host] = slot.Add(r.minDelay)
	r.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", host, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// Ensure Translator implements model.Translator.
var _ model.Translator = (*Translator)(nil)

// Translator waits on a shared HostLimiter before delegating.
type Translator struct {
	inner   model.Translator
	limiter *HostLimiter
	host    string
}

// NewTranslator wraps a Translator. Translators talking to the same host
// should share one limiter.
func NewTranslator(inner model.Translator, limiter *HostLimiter, host string) *Translator {
	return &Translator{inner: inner, limiter: limiter, host: host}
}

func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	if err := t.limiter.Wait(ctx, t.host); err != nil {
		return "", err
	}
	return t.inner.Translate(ctx, text)
}
