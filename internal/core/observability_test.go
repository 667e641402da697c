package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatalf("empty generated name")
	}
	ctx := context.Background()
	rec.Observe(ctx, "search", true, 20*time.Millisecond)
	rec.Observe(ctx, "search", true, 30*time.Millisecond)
	rec.Observe(ctx, "search", false, 5*time.Millisecond)
	rec.StaleDrop("search")
	rec.Observe(ctx, "", true, time.Millisecond)
	rec.StaleDrop("")

	snap := rec.Snapshot()
	if got := snap.DurationsMS["search"]; got != 55 {
		t.Fatalf("durations: %v", got)
	}
	if got := snap.Results["search"]["success"]; got != 2 {
		t.Fatalf("successes: %d", got)
	}
	if got := snap.Results["search"]["error"]; got != 1 {
		t.Fatalf("errors: %d", got)
	}
	if got := snap.StaleDrops["search"]; got != 1 {
		t.Fatalf("stale drops: %d", got)
	}
	if _, ok := snap.Results[""]; ok {
		t.Fatalf("empty operation recorded")
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("NewPrometheusMetricsRecorder: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, "move", true, 10*time.Millisecond)
	rec.Observe(ctx, "move", false, 10*time.Millisecond)
	rec.StaleDrop("search")

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("move", "success")); got != 1 {
		t.Fatalf("success counter: %v", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("move", "error")); got != 1 {
		t.Fatalf("error counter: %v", got)
	}
	if got := testutil.ToFloat64(rec.staleDrops.WithLabelValues("search")); got != 1 {
		t.Fatalf("stale counter: %v", got)
	}
	if n := testutil.CollectAndCount(rec.latency); n != 1 {
		t.Fatalf("latency series: %d", n)
	}

	// Double registration against the same registry must surface.
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
