package metrics_test

import (
	"testing"

	"github.com/eijebong/wq/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestCollectorObserveSetsAllSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.Observe("build", metrics.Stats{
		Scheduled: 3,
		Claimed:   2,
		Succeeded: 10,
		Failed:    1,
		Errored:   0,
	})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	wantNames := map[string]float64{
		"wq_jobs_scheduled": 3,
		"wq_jobs_claimed":   2,
		"wq_jobs_succeeded": 10,
		"wq_jobs_failed":    1,
		"wq_jobs_errored":   0,
	}
	seen := map[string]bool{}
	for _, mf := range families {
		want, ok := wantNames[mf.GetName()]
		if !ok {
			continue
		}
		seen[mf.GetName()] = true
		if len(mf.Metric) != 1 {
			t.Fatalf("%s: expected 1 series, got %d", mf.GetName(), len(mf.Metric))
		}
		got := mf.Metric[0].GetGauge().GetValue()
		if got != want {
			t.Fatalf("%s: got %v, want %v", mf.GetName(), got, want)
		}
	}
	for name := range wantNames {
		if !seen[name] {
			t.Fatalf("missing series %s in registry output", name)
		}
	}
}
