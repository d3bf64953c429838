package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/pljobs/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSummary() *model.RunSummary {
	start := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	return &model.RunSummary{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Staged:     120,
		BadDate:    3,
		BatchDupes: 7,
		Stored:     60,
		Inserted:   50,
		Salary:     model.SalaryStats{Count: 30, MinStart: 6000, MaxEnd: 32000, MeanMid: 17250},
		TopRoles:   []model.NameCount{{Name: "Java Developer", Count: 9}, {Name: "Tester", Count: 4}},
		TopCities:  []model.NameCount{{Name: "Warszawa", Count: 22}},
	}
}

func TestLogNotifier_NeverFails(t *testing.T) {
	n := NewLogNotifier(discardLogger())
	if err := n.Notify(context.Background(), sampleSummary()); err != nil {
		t.Errorf("Notify = %v, want nil", err)
	}
	if err := n.Notify(context.Background(), &model.RunSummary{}); err != nil {
		t.Errorf("Notify(empty) = %v, want nil", err)
	}
}

func TestSlackNotifier_PayloadFormat(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if got := payload.Blocks[0].Text.Text; got != "📊 pljobs run: 50 new postings" {
		t.Errorf("header = %q", got)
	}
	if got := payload.Blocks[1].Fields[2].Text; got != "*Dropped:*\n3 bad date, 7 duplicate, 60 stored" {
		t.Errorf("dropped field = %q", got)
	}
	if got := payload.Blocks[1].Fields[3].Text; got != "*Took:*\n1m30s" {
		t.Errorf("took field = %q", got)
	}
	// header, counts, salary, roles, cities, divider
	if len(payload.Blocks) != 6 {
		t.Fatalf("blocks = %d, want 6", len(payload.Blocks))
	}
	if !strings.Contains(payload.Blocks[3].Text.Text, "• Java Developer (9)") {
		t.Errorf("roles block = %q", payload.Blocks[3].Text.Text)
	}
	if payload.Blocks[5].Type != "divider" {
		t.Errorf("last block = %q, want divider", payload.Blocks[5].Type)
	}
}

func TestSlackNotifier_DryRunAndEmptySections(t *testing.T) {
	p := buildPayload(&model.RunSummary{DryRun: true})
	if !strings.HasSuffix(p.Blocks[0].Text.Text, "(dry run)") {
		t.Errorf("header = %q", p.Blocks[0].Text.Text)
	}
	if len(p.Blocks) != 3 {
		t.Errorf("blocks = %d, want header, counts, divider", len(p.Blocks))
	}
}

func TestSlackNotifier_SlackReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleSummary()); err == nil {
		t.Error("expected error on 500, got nil")
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestSendTestMessage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := SendTestMessage(context.Background(), NewSlackNotifier(srv.URL, srv.Client(), discardLogger())); err != nil {
		t.Fatalf("SendTestMessage: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

// fakePublisher records published messages.
type fakePublisher struct {
	subject string
	data    []byte
	err     error
	flushed bool
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subject, f.data = subject, data
	return nil
}

func (f *fakePublisher) FlushTimeout(time.Duration) error {
	f.flushed = true
	return nil
}

func TestNATSNotifier_PublishesSummary(t *testing.T) {
	pub := &fakePublisher{}
	n := &NATSNotifier{pub: pub, subject: DefaultSubject, logger: discardLogger()}

	if err := n.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if pub.subject != "pljobs.runs.completed" || !pub.flushed {
		t.Errorf("subject %q, flushed %v", pub.subject, pub.flushed)
	}

	var got model.RunSummary
	if err := json.Unmarshal(pub.data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "run-1" || got.Inserted != 50 || got.TopRoles[0].Name != "Java Developer" {
		t.Errorf("published summary = %+v", got)
	}
}

func TestNATSNotifier_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection closed")}
	n := &NATSNotifier{pub: pub, subject: DefaultSubject, logger: discardLogger()}

	if err := n.Notify(context.Background(), sampleSummary()); err == nil {
		t.Fatal("expected error")
	}
	if pub.flushed {
		t.Error("flushed after failed publish")
	}
}
