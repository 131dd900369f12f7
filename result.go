package wq

import (
	"encoding/json"
	"time"
)

// JobResult is the terminal record written by Resolve (spec §3). It is
// written exactly once per job; a second resolve from the same owning
// worker after the claim is gone fails with WorkerMismatch rather than
// silently overwriting it (spec §4.5).
//
// ResolvedAt is not part of spec.md's Result entity; it is added to support
// the optional result-retention sweep (SPEC_FULL §4.15) and has no bearing
// on any invariant in spec §3.
type JobResult[R any] struct {
	Status     JobStatus `json:"status"`
	Result     R         `json:"result"`
	ResolvedAt time.Time `json:"resolved_at"`
}

func encodeResult[R any](r *JobResult[R]) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, codecErr("failed to encode job result", err)
	}
	return data, nil
}

func decodeResult[R any](data []byte) (*JobResult[R], error) {
	var r JobResult[R]
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, codecErr("failed to decode job result", err)
	}
	return &r, nil
}
