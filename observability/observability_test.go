package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

func TestNewMetrics(t *testing.T) {
	meter := otel.Meter("test")
	m, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	// Recording against the no-op global provider must not panic.
	ctx := context.Background()
	m.RecordActivation(ctx, "whisper", "ok", 120*time.Millisecond)
	m.RecordActivation(ctx, "vosk", "error", 5*time.Millisecond)
	m.RecordFallback(ctx, "ok", 2)
	m.RecordDataClear(ctx, "ok")
	m.RecordError(ctx, "activation", "vosk")
}

func TestStartSpanNoop(t *testing.T) {
	ctx, span := StartSpan(context.Background(), SpanActivate)
	SetSpanAttribute(ctx, AttrPlugin, "whisper")
	SetSpanAttribute(ctx, AttrStatus, "ok")
	span.End()
}

func TestDefaultConfigs(t *testing.T) {
	mc := DefaultMeterConfig("voicekit")
	if mc.ServiceName != "voicekit" || mc.Endpoint == "" {
		t.Errorf("unexpected meter config: %+v", mc)
	}
	tc := DefaultTracerConfig("voicekit")
	if tc.SampleRate != 1.0 {
		t.Errorf("expected full sampling by default, got %v", tc.SampleRate)
	}
}
