package wq_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eijebong/wq"
	"github.com/redis/go-redis/v9"
)

// newTestQueue builds a WorkQueue[string, string] against a fresh miniredis
// instance and registers cleanup for both.
func newTestQueue(t *testing.T, opts ...func(*wq.WorkQueueBuilder[string, string]) *wq.WorkQueueBuilder[string, string]) (*wq.WorkQueue[string, string], *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	builder := wq.NewWorkQueueBuilder[string, string]("test")
	for _, opt := range opts {
		builder = opt(builder)
	}

	ctx := context.Background()
	q, err := builder.Build(ctx, &redis.Options{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("failed to build queue: %v", err)
	}
	t.Cleanup(func() {
		_ = q.Close()
	})
	return q, mr
}

func withClaimTimeout(d time.Duration) func(*wq.WorkQueueBuilder[string, string]) *wq.WorkQueueBuilder[string, string] {
	return func(b *wq.WorkQueueBuilder[string, string]) *wq.WorkQueueBuilder[string, string] {
		return b.WithClaimTimeout(d)
	}
}

func withReclaimTimeout(d time.Duration) func(*wq.WorkQueueBuilder[string, string]) *wq.WorkQueueBuilder[string, string] {
	return func(b *wq.WorkQueueBuilder[string, string]) *wq.WorkQueueBuilder[string, string] {
		return b.WithReclaimTimeout(d)
	}
}
