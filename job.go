package wq

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobId uniquely identifies a Job. The wire form is a v4 UUID, lowercased
// and hyphenated (spec §4.1).
type JobId = uuid.UUID

// NewJobId generates a fresh v4 job id.
func NewJobId() JobId {
	return uuid.New()
}

// Job is a unit of work: an id, caller-supplied params, a priority, and a
// deadline past which it is no longer eligible to be claimed (spec §3).
//
// Job instances returned from Claim are snapshots; mutating them does not
// affect stored state. Transitions happen only through Reclaim, Resolve and
// Cancel.
type Job[T any] struct {
	JobId      JobId     `json:"id"`
	Params     T         `json:"params"`
	Priority   Priority  `json:"priority"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Deadline   time.Time `json:"deadline"`
}

// jobRecord is the on-wire envelope stored under the jobs hash. It carries
// everything in Job plus a DeadlineUnixNano mirror of Deadline: the claim
// script compares deadlines against the current time with plain integer
// arithmetic rather than parsing RFC3339 inside Lua. Readers that only know
// about Job ignore the extra field.
type jobRecord[T any] struct {
	Job[T]
	DeadlineUnixNano int64 `json:"deadline_unix_nano"`
}

func encodeJob[T any](j *Job[T]) ([]byte, error) {
	rec := jobRecord[T]{Job: *j, DeadlineUnixNano: j.Deadline.UnixNano()}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, codecErr("failed to encode job", err)
	}
	return data, nil
}

func decodeJob[T any](data []byte) (*Job[T], error) {
	var j Job[T]
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, codecErr("failed to decode job", err)
	}
	return &j, nil
}
