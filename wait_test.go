package wq_test

import (
	"context"
	"testing"
	"time"

	"github.com/eijebong/wq"
)

func TestWaitForJobReturnsAfterResolve(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	id, err := q.EnqueueJob(ctx, "work", wq.Normal, time.Minute)
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}
	if _, err := q.ClaimJob(ctx, "worker-1"); err != nil {
		t.Fatalf("ClaimJob: %v", err)
	}

	statusCh := make(chan *wq.JobStatus, 1)
	errCh := make(chan error, 1)
	go func() {
		timeout := 2 * time.Second
		status, err := q.WaitForJob(ctx, id, &timeout)
		statusCh <- status
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	if err := q.ResolveJob(ctx, "worker-1", id, wq.Success, "done"); err != nil {
		t.Fatalf("ResolveJob: %v", err)
	}

	select {
	case status := <-statusCh:
		if err := <-errCh; err != nil {
			t.Fatalf("WaitForJob: %v", err)
		}
		if status == nil || *status != wq.Success {
			t.Fatalf("expected Success, got %v", status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForJob never observed the resolve")
	}
}

func TestWaitForJobTimesOut(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	id, err := q.EnqueueJob(ctx, "work", wq.Normal, time.Minute)
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}

	timeout := 50 * time.Millisecond
	status, err := q.WaitForJob(ctx, id, &timeout)
	if err != nil {
		t.Fatalf("WaitForJob: %v", err)
	}
	if status != nil {
		t.Fatalf("expected nil status on timeout, got %v", status)
	}
}
