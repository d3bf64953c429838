package telemetry

import (
	"context"
	"testing"
)

func TestInitTracer_EmptyEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "test", "")
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}

	_, span := Tracer("test").Start(context.Background(), "noop")
	span.SetAttributes(String("k", "v"), Int("n", 1))
	span.End()
}
