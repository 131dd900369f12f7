package wq

import (
	"context"
	"time"

	"github.com/eijebong/wq/internal"
	"github.com/go-logr/logr"
)

// ReclaimChecker is the background loop described in spec §4.7: it
// snapshots a queue's claims and returns abandoned ones to the head of
// their priority list. Only one instance per queue is meant to run at a
// time (workers never run this, only supervisors do); running more than
// one is safe but wasteful, since reclaimSweepScript re-validates
// staleness and ownership on the server before acting.
type ReclaimChecker[T any, R any] struct {
	lcBase
	q    *WorkQueue[T, R]
	task internal.TimerTask
	log  logr.Logger
}

func newReclaimChecker[T any, R any](q *WorkQueue[T, R]) *ReclaimChecker[T, R] {
	return &ReclaimChecker[T, R]{q: q, log: q.log.WithName("reclaim-checker")}
}

func (rc *ReclaimChecker[T, R]) scan(ctx context.Context) {
	claims, err := rc.q.client.HGetAll(ctx, rc.q.keys.claims).Result()
	if err != nil {
		rc.log.Error(err, "failed to snapshot claims")
		return
	}
	now := time.Now().UTC()
	for idStr, claimJSON := range claims {
		claim, err := decodeClaim([]byte(claimJSON))
		if err != nil {
			rc.log.Error(err, "failed to decode claim during sweep", "job_id", idStr)
			continue
		}
		if now.Sub(claim.Time) <= rc.q.reclaimTimeout {
			continue
		}
		keysArg := []string{
			rc.q.keys.claims, rc.q.keys.cancelled, rc.q.keys.stats, rc.q.keys.wake,
			rc.q.keys.queueKey(claim.Priority),
		}
		requeued, err := reclaimSweepScript.Run(ctx, rc.q.client, keysArg,
			idStr, rc.q.reclaimTimeout.Nanoseconds(), now.UnixNano(),
		).Int()
		if err != nil {
			rc.log.Error(err, "reclaim sweep script failed", "job_id", idStr)
			continue
		}
		if requeued == 1 {
			rc.log.Info("reclaimed stale claim", "job_id", idStr, "priority", claim.Priority.String())
		}
	}
}

// Start begins the periodic scan, running every reclaim_timeout/2 (spec
// §4.7).
func (rc *ReclaimChecker[T, R]) Start(ctx context.Context) error {
	if err := rc.tryStart(); err != nil {
		return err
	}
	rc.task.Start(ctx, rc.scan, rc.q.reclaimTimeout/2)
	return nil
}

// Stop terminates the scan loop, waiting up to timeout for an in-flight
// scan to finish.
func (rc *ReclaimChecker[T, R]) Stop(timeout time.Duration) error {
	return rc.tryStop(timeout, rc.task.Stop)
}
