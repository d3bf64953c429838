package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/telemetry"
)

// DefaultSubject is where run summaries are published.
const DefaultSubject = "pljobs.runs.completed"

const connectTimeout = 10 * time.Second

// Ensure NATSNotifier implements model.Notifier.
var _ model.Notifier = (*NATSNotifier)(nil)

var tracer = telemetry.Tracer("pljobs/notifier")

// publisher is the subset of *nats.Conn the notifier uses.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
}

// NATSNotifier publishes the JSON run summary for downstream consumers.
type NATSNotifier struct {
	pub     publisher
	subject string
	close   func()
	logger  *slog.Logger
}

// NewNATSNotifier connects to url. The connection retries in the background
// until the first publish.
func NewNATSNotifier(url, subject string, logger *slog.Logger) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("pljobs"),
		nats.Timeout(connectTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{pub: nc, subject: subject, close: nc.Close, logger: logger}, nil
}

func (n *NATSNotifier) Notify(ctx context.Context, s *model.RunSummary) error {
	_, span := tracer.Start(ctx, "notifier.nats.publish")
	defer span.End()

	data, err := json.Marshal(s)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshaling run summary: %w", err)
	}
	span.SetAttributes(
		telemetry.String("nats.subject", n.subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := n.pub.Publish(n.subject, data); err != nil {
		span.RecordError(err)
		return fmt.Errorf("publishing run summary: %w", err)
	}
	if err := n.pub.FlushTimeout(connectTimeout); err != nil {
		span.RecordError(err)
		return fmt.Errorf("flushing NATS connection: %w", err)
	}

	n.logger.Debug("published run summary", "subject", n.subject, "run_id", s.RunID)
	return nil
}

func (n *NATSNotifier) Close() error {
	if n.close != nil {
		n.close()
	}
	return nil
}
