package workers

import (
	"context"
	"time"

	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/logging"
	"infinite-experiment/bouncer/internal/metrics"
)

type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[constants.VerificationStatus]int64, error)
}

// StatsMonitor publishes the number of verification records per status as a
// gauge.
type StatsMonitor struct {
	stats   StatusCounter
	metrics *metrics.MetricsRegistry
}

func NewStatsMonitor(stats StatusCounter, m *metrics.MetricsRegistry) *StatsMonitor {
	return &StatsMonitor{
		stats:   stats,
		metrics: m,
	}
}

// Start refreshes the gauge every interval until ctx is done.
func (m *StatsMonitor) Start(ctx context.Context, interval time.Duration) error {
	logging.Info("Starting stats monitor", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	m.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info("Stats monitor shutting down")
			return nil
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

func (m *StatsMonitor) refresh(ctx context.Context) {
	counts, err := m.stats.CountByStatus(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logging.Warn("Failed to refresh record stats", "error", err.Error())
		}
		return
	}
	for status, count := range counts {
		m.metrics.SetRecords(status.String(), count)
	}
}
