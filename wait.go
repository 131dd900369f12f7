package wq

import (
	"context"
	"time"
)

// WaitForJob implements spec §4.8: it establishes a subscription to the
// resolved channel before checking the stored result, closing the race
// window in which a resolve could publish between the lookup and a late
// subscription. A nil timeout blocks until resolution or ctx cancellation.
func (q *WorkQueue[T, R]) WaitForJob(ctx context.Context, jobID JobId, timeout *time.Duration) (*JobStatus, error) {
	statusCh, cancel := q.dispatcher.subscribeResolved(jobID)
	defer cancel()

	result, err := q.GetJobResult(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if result != nil {
		status := result.Status
		return &status, nil
	}

	var timerC <-chan time.Time
	if timeout != nil {
		timer := time.NewTimer(*timeout)
		defer timer.Stop()
		timerC = timer.C
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case raw := <-statusCh:
		status, err := ParseJobStatus(raw)
		if err != nil {
			return nil, err
		}
		return &status, nil
	case <-timerC:
		return nil, nil
	}
}
