package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/pljobs/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockTranslator calls fn on each invocation, tracking call count.
type mockTranslator struct {
	calls int
	fn    func(attempt int) (string, error)
}

func (m *mockTranslator) Translate(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := &mockTranslator{fn: func(_ int) (string, error) {
		return "hello", nil
	}}

	tr := NewTranslator(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := tr.Translate(context.Background(), "cześć")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Fatalf("got %q", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockTranslator{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return "ok", nil
	}}

	tr := NewTranslator(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := tr.Translate(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q", got)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_HonoursRetryAfter(t *testing.T) {
	mock := &mockTranslator{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &model.HTTPError{StatusCode: 429, RetryAfter: 50 * time.Millisecond, Err: errors.New("slow down")}
		}
		return "ok", nil
	}}

	tr := NewTranslator(mock, 1, time.Hour, discardLogger())
	start := time.Now()
	if _, err := tr.Translate(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Retry-After ignored, waited %v", elapsed)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockTranslator{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 400, Err: errors.New("bad request")}
	}}

	tr := NewTranslator(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := tr.Translate(context.Background(), "x")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 400 {
		t.Fatalf("expected HTTPError with status 400, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockTranslator{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	tr := NewTranslator(mock, 2, 10*time.Millisecond, discardLogger())
	if _, err := tr.Translate(context.Background(), "x"); err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockTranslator{fn: func(_ int) (string, error) {
		return "", errors.New("connection reset")
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewTranslator(mock, 2, time.Second, discardLogger())
	_, err := tr.Translate(ctx, "x")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}
