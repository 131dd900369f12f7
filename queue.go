package wq

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/eijebong/wq/internal"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// WorkQueue is a single named priority queue of jobs with typed params T
// and typed result R, backed by one Redis/Valkey connection (spec §1-§3).
// Every mutating operation below except PurgeResultsBefore is a single
// atomic server-side script; see scripts.go. A WorkQueue is safe for concurrent use by many goroutines.
type WorkQueue[T any, R any] struct {
	name   string
	keys   keys
	client *redis.Client
	log    logr.Logger

	claimTimeout   time.Duration
	reclaimTimeout time.Duration

	dispatcher    *dispatcher
	cleanupWorker *ResultCleanupWorker
	metricsCancel context.CancelFunc
}

func (q *WorkQueue[T, R]) priorityQueueKeys() [len(priorities)]string {
	var out [len(priorities)]string
	for i, p := range priorities {
		out[i] = q.keys.queueKey(p)
	}
	return out
}

// EnqueueJob writes a new job with the given params, priority and relative
// deadline, and returns its id (spec §4.2).
func (q *WorkQueue[T, R]) EnqueueJob(ctx context.Context, params T, priority Priority, deadlineRelative time.Duration) (JobId, error) {
	id := NewJobId()
	now := time.Now().UTC()
	job := &Job[T]{
		JobId:      id,
		Params:     params,
		Priority:   priority,
		EnqueuedAt: now,
		Deadline:   now.Add(deadlineRelative),
	}
	data, err := encodeJob(job)
	if err != nil {
		return JobId{}, err
	}
	keysArg := []string{q.keys.jobs, q.keys.queueKey(priority), q.keys.stats, q.keys.wake}
	if err := enqueueScript.Run(ctx, q.client, keysArg, id.String(), data).Err(); err != nil {
		return JobId{}, transportErr(err)
	}
	return id, nil
}

// ClaimJob attempts to claim the highest-priority ready job for workerID.
// If none is ready, it subscribes to wake events before re-checking (spec
// §4.3's subscribe-before-check rule) and blocks up to the configured claim
// timeout, returning (nil, nil) if it times out.
func (q *WorkQueue[T, R]) ClaimJob(ctx context.Context, workerID string) (*Job[T], error) {
	deadline := time.Now().Add(q.claimTimeout)
	for {
		job, err := q.tryClaim(ctx, workerID)
		if err != nil || job != nil {
			return job, err
		}

		woken := q.dispatcher.subscribeWake()

		job, err = q.tryClaim(ctx, workerID)
		if err != nil || job != nil {
			return job, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-woken:
			timer.Stop()
		case <-timer.C:
			return nil, nil
		}
	}
}

func (q *WorkQueue[T, R]) tryClaim(ctx context.Context, workerID string) (*Job[T], error) {
	nowRFC3339, nowUnixNano := internal.Now()
	pq := q.priorityQueueKeys()
	keysArg := []string{pq[0], pq[1], pq[2], q.keys.jobs, q.keys.claims, q.keys.cancelled, q.keys.stats}
	res, err := claimScript.Run(ctx, q.client, keysArg,
		workerID, High.String(), Normal.String(), Low.String(),
		nowRFC3339, nowUnixNano,
	).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, transportErr(err)
	}
	fields, ok := res.([]interface{})
	if !ok || len(fields) != 2 {
		return nil, transportErr(fmt.Errorf("unexpected claim script reply: %v", res))
	}
	jobJSON, ok := fields[1].(string)
	if !ok {
		return nil, transportErr(fmt.Errorf("unexpected claim script job payload: %v", fields[1]))
	}
	return decodeJob[T]([]byte(jobJSON))
}

// ReclaimJob refreshes workerID's claim on jobID, failing if the job was
// cancelled, is unknown, or is held by another worker (spec §4.4).
func (q *WorkQueue[T, R]) ReclaimJob(ctx context.Context, jobID JobId, workerID string) error {
	nowRFC3339, nowUnixNano := internal.Now()
	keysArg := []string{q.keys.claims, q.keys.cancelled}
	err := reclaimScript.Run(ctx, q.client, keysArg,
		jobID.String(), workerID, nowRFC3339, nowUnixNano,
	).Err()
	return mapScriptError(err)
}

// ResolveJob writes the terminal result for jobID, removes its claim and
// updates stats (spec §4.5). A second resolve after the claim is gone fails
// with WorkerMismatch rather than silently overwriting the result.
func (q *WorkQueue[T, R]) ResolveJob(ctx context.Context, workerID string, jobID JobId, status JobStatus, result R) error {
	field, err := statFieldForStatus(status)
	if err != nil {
		return err
	}
	jobResult := &JobResult[R]{Status: status, Result: result, ResolvedAt: time.Now().UTC()}
	data, err := encodeResult(jobResult)
	if err != nil {
		return err
	}
	keysArg := []string{q.keys.claims, q.keys.results, q.keys.stats, q.keys.resolved}
	scriptErr := resolveScript.Run(ctx, q.client, keysArg,
		jobID.String(), workerID, field, data, status.String(),
	).Err()
	return mapScriptError(scriptErr)
}

// CancelJob marks jobID cancelled (spec §4.6). It does not scan the
// priority lists; a still-queued job is discarded the next time ClaimJob
// pops it, and an already-claimed job is rejected by the next ReclaimJob.
// Idempotent.
func (q *WorkQueue[T, R]) CancelJob(ctx context.Context, jobID JobId) error {
	if err := cancelScript.Run(ctx, q.client, []string{q.keys.cancelled}, jobID.String()).Err(); err != nil {
		return transportErr(err)
	}
	return nil
}

// DeleteJobResult removes jobID's stored result, if any (spec §4.6).
// Idempotent; no error on a missing result.
func (q *WorkQueue[T, R]) DeleteJobResult(ctx context.Context, jobID JobId) error {
	if err := deleteResultScript.Run(ctx, q.client, []string{q.keys.results}, jobID.String()).Err(); err != nil {
		return transportErr(err)
	}
	return nil
}

// GetJobResult returns jobID's stored result, or (nil, nil) if it has not
// resolved (or was deleted).
func (q *WorkQueue[T, R]) GetJobResult(ctx context.Context, jobID JobId) (*JobResult[R], error) {
	data, err := q.client.HGet(ctx, q.keys.results, jobID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, transportErr(err)
	}
	return decodeResult[R](data)
}

// GetStats reads the five queue counters (spec §4.9).
func (q *WorkQueue[T, R]) GetStats(ctx context.Context) (QueueStats, error) {
	vals, err := q.client.HGetAll(ctx, q.keys.stats).Result()
	if err != nil {
		return QueueStats{}, transportErr(err)
	}
	field := func(name string) uint64 {
		v, _ := strconv.ParseUint(vals[name], 10, 64)
		return v
	}
	return QueueStats{
		Scheduled: field(statFieldScheduled),
		Claimed:   field(statFieldClaimed),
		Succeeded: field(statFieldSucceeded),
		Failed:    field(statFieldFailed),
		Errored:   field(statFieldErrored),
	}, nil
}

// GetJob implements Inspector: it returns the stored job record for id, or
// (nil, nil) if none exists.
func (q *WorkQueue[T, R]) GetJob(ctx context.Context, id JobId) (*Job[T], error) {
	data, err := q.client.HGet(ctx, q.keys.jobs, id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, transportErr(err)
	}
	return decodeJob[T](data)
}

// GetClaim implements Inspector: it returns the current claim on id, or
// (nil, nil) if the job is not presently claimed.
func (q *WorkQueue[T, R]) GetClaim(ctx context.Context, id JobId) (*Claim, error) {
	data, err := q.client.HGet(ctx, q.keys.claims, id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, transportErr(err)
	}
	return decodeClaim(data)
}

// ListCancelled implements Inspector.
func (q *WorkQueue[T, R]) ListCancelled(ctx context.Context, limit int) ([]JobId, error) {
	ids, err := q.client.SMembers(ctx, q.keys.cancelled).Result()
	if err != nil {
		return nil, transportErr(err)
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]JobId, 0, len(ids))
	for _, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, codecErr("malformed cancelled job id", err)
		}
		out = append(out, id)
	}
	return out, nil
}

// PurgeResultsBefore implements ResultCleaner: it deletes every result
// resolved at or before before and returns how many were removed
// (SPEC_FULL §4.15).
func (q *WorkQueue[T, R]) PurgeResultsBefore(ctx context.Context, before time.Time) (int64, error) {
	var cursor uint64
	var deleted int64
	for {
		entries, next, err := q.client.HScan(ctx, q.keys.results, cursor, "", 100).Result()
		if err != nil {
			return deleted, transportErr(err)
		}
		for i := 0; i+1 < len(entries); i += 2 {
			id, data := entries[i], entries[i+1]
			result, err := decodeResult[R]([]byte(data))
			if err != nil {
				q.log.Error(err, "skipping undecodable result during cleanup sweep", "job_id", id)
				continue
			}
			if !result.ResolvedAt.After(before) {
				if err := q.client.HDel(ctx, q.keys.results, id).Err(); err != nil {
					return deleted, transportErr(err)
				}
				deleted++
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return deleted, nil
}

var _ Inspector[any] = (*WorkQueue[any, any])(nil)
var _ ResultCleaner = (*WorkQueue[any, any])(nil)

// Inspect returns the read-only inspection surface for this queue
// (SPEC_FULL §4.16). WorkQueue implements Inspector directly; this accessor
// exists so callers can depend on the narrower interface type.
func (q *WorkQueue[T, R]) Inspect() Inspector[T] {
	return q
}

// Close stops the queue's background dispatcher and, if configured, its
// result-cleanup worker. It does not stop a ReclaimChecker obtained from
// StartReclaimChecker; stop that handle separately.
func (q *WorkQueue[T, R]) Close() error {
	if q.metricsCancel != nil {
		q.metricsCancel()
	}
	var err error
	if q.cleanupWorker != nil {
		if stopErr := q.cleanupWorker.Stop(5 * time.Second); stopErr != nil {
			err = stopErr
		}
	}
	if stopErr := q.dispatcher.Stop(5 * time.Second); stopErr != nil {
		err = stopErr
	}
	return err
}
