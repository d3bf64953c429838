package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/amishk599/pljobs/internal/model"
)

// Ensure Translator implements model.Translator.
var _ model.Translator = (*Translator)(nil)

// Translator retries transient translation failures with exponential backoff
// and jitter before giving up.
type Translator struct {
	inner      model.Translator
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewTranslator wraps a Translator with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is doubled on each subsequent retry.
func NewTranslator(inner model.Translator, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Translator {
	return &Translator{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	out, err := t.inner.Translate(ctx, text)
	if err == nil {
		return out, nil
	}
	if !isRetryable(err) {
		return "", err
	}

	lastErr := err
	for attempt := 1; attempt <= t.maxRetries; attempt++ {
		delay := t.backoffDelay(attempt, lastErr)

		t.logger.Warn("retrying translation after transient error",
			"attempt", attempt,
			"max_retries", t.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		out, err = t.inner.Translate(ctx, text)
		if err == nil {
			return out, nil
		}
		if !isRetryable(err) {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("translation failed after %d retries: %w", t.maxRetries, lastErr)
}

// backoffDelay is baseDelay * 2^(attempt-1) with ±30% jitter. A Retry-After
// from the server wins.
func (t *Translator) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := t.baseDelay << (attempt - 1)
	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}

	// network, DNS
	return true
}
