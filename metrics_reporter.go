package wq

import (
	"context"
	"time"

	"github.com/eijebong/wq/metrics"
)

// defaultMetricsInterval is how often a queue with a metrics.Collector
// attached re-observes its stats (SPEC_FULL §4.13: "call periodically or
// after each GetStats").
const defaultMetricsInterval = 10 * time.Second

func (q *WorkQueue[T, R]) reportMetricsLoop(ctx context.Context, collector *metrics.Collector) {
	ticker := time.NewTicker(defaultMetricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.reportMetricsOnce(ctx, collector)
		}
	}
}

func (q *WorkQueue[T, R]) reportMetricsOnce(ctx context.Context, collector *metrics.Collector) {
	stats, err := q.GetStats(ctx)
	if err != nil {
		q.log.Error(err, "failed to observe stats for metrics export")
		return
	}
	collector.Observe(q.name, metrics.Stats{
		Scheduled: stats.Scheduled,
		Claimed:   stats.Claimed,
		Succeeded: stats.Succeeded,
		Failed:    stats.Failed,
		Errored:   stats.Errored,
	})
}
