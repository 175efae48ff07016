package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/yungbote/chalkboard/internal/platform/logger"
)

func TestDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), logger.Nop(), TracingConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), logger.Nop(), TracingConfig{Enabled: true, ServiceName: "test", Stdout: &buf})
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "generation.generate")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "generation.generate") {
		t.Fatalf("span not exported: %q", buf.String())
	}
}
