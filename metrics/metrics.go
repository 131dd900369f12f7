// Package metrics exports a queue's QueueStats as Prometheus gauges
// (SPEC_FULL §4.13). It is entirely optional: a WorkQueue built without a
// Collector behaves identically, just unobserved.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds the five Prometheus series that mirror wq.QueueStats,
// labeled by queue name so one registry can observe many queues.
//
// succeeded/failed/errored are modeled as gauges rather than
// prometheus.Counter, even though QueueStats.{Succeeded,Failed,Errored} are
// themselves monotonic: Redis is the source of truth for the cumulative
// total, and Observe is called with that total directly, which is what
// prometheus.Gauge.Set is for. A client-side Counter would need to track
// its own previous value to compute a delta for no benefit.
type Collector struct {
	scheduled *prometheus.GaugeVec
	claimed   *prometheus.GaugeVec
	succeeded *prometheus.GaugeVec
	failed    *prometheus.GaugeVec
	errored   *prometheus.GaugeVec
}

// NewCollector builds a Collector and registers its series on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		scheduled: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wq_jobs_scheduled",
			Help: "Number of jobs currently queued but not yet claimed.",
		}, []string{"queue"}),
		claimed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wq_jobs_claimed",
			Help: "Number of jobs currently claimed by a worker.",
		}, []string{"queue"}),
		succeeded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wq_jobs_succeeded",
			Help: "Total jobs resolved with status Success.",
		}, []string{"queue"}),
		failed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wq_jobs_failed",
			Help: "Total jobs resolved with status Failure.",
		}, []string{"queue"}),
		errored: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wq_jobs_errored",
			Help: "Total jobs resolved with status InternalError.",
		}, []string{"queue"}),
	}
	reg.MustRegister(c.scheduled, c.claimed, c.succeeded, c.failed, c.errored)
	return c
}

// Stats is the subset of wq.QueueStats this package depends on, so that
// wq/metrics does not need to import the root module.
type Stats struct {
	Scheduled uint64
	Claimed   uint64
	Succeeded uint64
	Failed    uint64
	Errored   uint64
}

// Observe sets every series for queueName to the corresponding field of
// stats. Call it periodically, or right after GetStats.
func (c *Collector) Observe(queueName string, stats Stats) {
	c.scheduled.WithLabelValues(queueName).Set(float64(stats.Scheduled))
	c.claimed.WithLabelValues(queueName).Set(float64(stats.Claimed))
	c.succeeded.WithLabelValues(queueName).Set(float64(stats.Succeeded))
	c.failed.WithLabelValues(queueName).Set(float64(stats.Failed))
	c.errored.WithLabelValues(queueName).Set(float64(stats.Errored))
}
