package wq

import "context"

// Inspector provides read-only access to a queue's jobs, claims and
// cancellations, for diagnostic, monitoring and administrative use (SPEC_FULL
// §4.16). It does not participate in the claim/reclaim/resolve lifecycle and
// never mutates state.
//
// Returned values are snapshots as of the call; mutating them has no effect
// on the underlying queue.
type Inspector[T any] interface {
	// GetJob returns the job record for id, or (nil, nil) if no such job
	// was ever enqueued (or its record predates a queue reset).
	GetJob(ctx context.Context, id JobId) (*Job[T], error)

	// GetClaim returns the current claim on id, or (nil, nil) if the job
	// is not presently claimed.
	GetClaim(ctx context.Context, id JobId) (*Claim, error)

	// ListCancelled returns up to limit cancelled job ids. A limit of zero
	// or less returns every cancelled id.
	ListCancelled(ctx context.Context, limit int) ([]JobId, error)
}
