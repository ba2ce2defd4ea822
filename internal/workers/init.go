package workers

import (
	"context"
	"time"

	"infinite-experiment/bouncer/internal/metrics"

	"golang.org/x/sync/errgroup"
)

const statsInterval = time.Minute

type WorkersContainer struct {
	Stats *StatsMonitor
}

// InitWorkers starts the background workers in g. They stop when ctx is done.
func InitWorkers(ctx context.Context, g *errgroup.Group, stats StatusCounter, m *metrics.MetricsRegistry) *WorkersContainer {
	monitor := NewStatsMonitor(stats, m)

	g.Go(func() error {
		return monitor.Start(ctx, statsInterval)
	})

	return &WorkersContainer{
		Stats: monitor,
	}
}
