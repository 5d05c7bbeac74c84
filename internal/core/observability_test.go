package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatalf("generated name must not be empty")
	}

	ctx := context.Background()
	rec.Observe(ctx, "set_value", true, 5*time.Millisecond)
	rec.Observe(ctx, "set_value", false, 3*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	snap := rec.Snapshot()
	if snap.Results["set_value"]["success"] != 1 || snap.Results["set_value"]["error"] != 1 {
		t.Fatalf("unexpected result counters %+v", snap.Results)
	}
	if snap.DurationsMS["set_value"] <= 0 {
		t.Fatalf("duration total not accumulated: %+v", snap.DurationsMS)
	}
	if _, ok := snap.Results[""]; ok {
		t.Fatalf("empty operation must be ignored")
	}
}

func TestJSONTraceTracer(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.StartSpan(context.Background(), "load")
	span.End(nil)
	_, span = tracer.StartSpan(context.Background(), "save")
	span.End(errors.New("disk full"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Operation != "load" || entries[0].Status != "success" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "disk full" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
	if !strings.Contains(buf.String(), `"operation":"save"`) {
		t.Fatalf("encoded output missing span: %s", buf.String())
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("construct recorder: %v", err)
	}

	ctx := context.Background()
	rec.Observe(ctx, "get_value", true, 2*time.Millisecond)
	rec.Observe(ctx, "get_value", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	if got := testutil.CollectAndCount(rec.results); got != 2 {
		t.Fatalf("expected 2 result series, got %d", got)
	}
	if got := testutil.ToFloat64(rec.results.WithLabelValues("get_value", "success")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}

	// Double registration against the same registry must fail.
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("duplicate registration accepted")
	}
}

func TestServiceObservabilityWiring(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	tracer := NewJSONTracer(nil)
	var log bytes.Buffer
	svc := newTestService(t,
		WithMetricsRecorder(rec),
		WithTracer(tracer),
		WithLogger(testLogger{&log}),
	)
	ctx := context.Background()

	if _, err := svc.GetValue(ctx, ".//general/flowType"); err != nil {
		t.Fatalf("get value: %v", err)
	}
	if _, err := svc.GetValue(ctx, ".//general/nope"); err == nil {
		t.Fatalf("bad path accepted")
	}

	snap := rec.Snapshot()
	if snap.Results["get_value"]["success"] != 1 || snap.Results["get_value"]["error"] != 1 {
		t.Fatalf("unexpected counters %+v", snap.Results)
	}
	entries := tracer.Entries()
	if len(entries) != 2 || entries[1].Status != "error" {
		t.Fatalf("unexpected trace entries %+v", entries)
	}
	if !strings.Contains(log.String(), "operation failed") {
		t.Fatalf("failure not logged: %s", log.String())
	}
}

// testLogger records messages for assertions.
type testLogger struct{ buf *bytes.Buffer }

func (l testLogger) Debug(msg string, args ...any) { l.write("DEBUG", msg) }
func (l testLogger) Info(msg string, args ...any)  { l.write("INFO", msg) }
func (l testLogger) Warn(msg string, args ...any)  { l.write("WARN", msg) }
func (l testLogger) Error(msg string, args ...any) { l.write("ERROR", msg) }

func (l testLogger) write(level, msg string) {
	l.buf.WriteString(level + " " + msg + "\n")
}
