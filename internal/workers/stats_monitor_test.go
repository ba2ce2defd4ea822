package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/metrics"

	dto "github.com/prometheus/client_model/go"
)

type mockCounter struct {
	calls atomic.Int32
}

func (m *mockCounter) CountByStatus(ctx context.Context) (map[constants.VerificationStatus]int64, error) {
	m.calls.Add(1)
	return map[constants.VerificationStatus]int64{
		constants.StatusPending:  3,
		constants.StatusApproved: 1,
	}, nil
}

func TestStatsMonitor(t *testing.T) {
	reg := metrics.NewMetricsRegistry()
	counter := &mockCounter{}
	monitor := NewStatsMonitor(counter, reg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Start(ctx, 10*time.Millisecond) }()

	deadline := time.Now().Add(2 * time.Second)
	for counter.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Expected clean shutdown, got %v", err)
	}
	if counter.calls.Load() < 2 {
		t.Errorf("Expected periodic refreshes, got %d", counter.calls.Load())
	}
	var m dto.Metric
	if err := reg.Records.WithLabelValues("pending").Write(&m); err != nil {
		t.Fatalf("Failed to read gauge: %v", err)
	}
	if got := m.GetGauge().GetValue(); got != 3 {
		t.Errorf("Expected pending gauge 3, got %v", got)
	}
}
