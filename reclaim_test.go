package wq_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eijebong/wq"
)

func TestReclaimJobRefreshesOwnership(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	id, err := q.EnqueueJob(ctx, "work", wq.Normal, time.Minute)
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}
	if _, err := q.ClaimJob(ctx, "worker-1"); err != nil {
		t.Fatalf("ClaimJob: %v", err)
	}

	before, err := q.Inspect().GetClaim(ctx, id)
	if err != nil {
		t.Fatalf("GetClaim: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if err := q.ReclaimJob(ctx, id, "worker-1"); err != nil {
		t.Fatalf("ReclaimJob: %v", err)
	}

	after, err := q.Inspect().GetClaim(ctx, id)
	if err != nil {
		t.Fatalf("GetClaim: %v", err)
	}
	if !after.Time.After(before.Time) {
		t.Fatalf("expected claim.Time to advance: before=%v after=%v", before.Time, after.Time)
	}
}

func TestReclaimJobWrongWorker(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	id, err := q.EnqueueJob(ctx, "work", wq.Normal, time.Minute)
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}
	if _, err := q.ClaimJob(ctx, "worker-1"); err != nil {
		t.Fatalf("ClaimJob: %v", err)
	}

	err = q.ReclaimJob(ctx, id, "worker-2")
	if !errors.Is(err, wq.ErrWorkerMismatch) {
		t.Fatalf("expected WorkerMismatch, got %v", err)
	}
}

func TestReclaimJobUnknownID(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	err := q.ReclaimJob(ctx, wq.NewJobId(), "worker-1")
	if !errors.Is(err, wq.ErrJobNotFound) {
		t.Fatalf("expected JobNotFound, got %v", err)
	}
}

func TestReclaimJobCancelled(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	id, err := q.EnqueueJob(ctx, "work", wq.Normal, time.Minute)
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}
	if _, err := q.ClaimJob(ctx, "worker-1"); err != nil {
		t.Fatalf("ClaimJob: %v", err)
	}
	if err := q.CancelJob(ctx, id); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}

	err = q.ReclaimJob(ctx, id, "worker-1")
	if !errors.Is(err, wq.ErrJobCancelled) {
		t.Fatalf("expected JobCancelled, got %v", err)
	}
}

func TestReclaimCheckerRequeuesStaleClaim(t *testing.T) {
	q, _ := newTestQueue(t, withReclaimTimeout(50*time.Millisecond))
	ctx := context.Background()

	id, err := q.EnqueueJob(ctx, "work", wq.Normal, time.Minute)
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}
	if _, err := q.ClaimJob(ctx, "worker-1"); err != nil {
		t.Fatalf("ClaimJob: %v", err)
	}

	checker, err := q.StartReclaimChecker(ctx)
	if err != nil {
		t.Fatalf("StartReclaimChecker: %v", err)
	}
	defer checker.Stop(time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		claim, err := q.Inspect().GetClaim(ctx, id)
		if err != nil {
			t.Fatalf("GetClaim: %v", err)
		}
		if claim == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	claim, err := q.Inspect().GetClaim(ctx, id)
	if err != nil {
		t.Fatalf("GetClaim: %v", err)
	}
	if claim != nil {
		t.Fatal("expected stale claim to be released back to the queue")
	}

	job, err := q.ClaimJob(ctx, "worker-2")
	if err != nil {
		t.Fatalf("ClaimJob: %v", err)
	}
	if job == nil || job.JobId != id {
		t.Fatalf("expected requeued job to be claimable again, got %+v", job)
	}
}
