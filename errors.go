package wq

import (
	"fmt"
	"strings"
)

// ErrorKind identifies the category of a *Error, matching the taxonomy of
// spec §7.
type ErrorKind uint8

const (
	// JobCancelled is returned by Reclaim on a job that has been cancelled.
	JobCancelled ErrorKind = iota
	// JobNotFound is returned by Reclaim or Resolve referencing an unknown
	// job id.
	JobNotFound
	// WorkerMismatch is returned by Reclaim or Resolve when the caller does
	// not own the current claim.
	WorkerMismatch
	// InvalidJobStatus is returned by Resolve when given a malformed status.
	InvalidJobStatus
	// Codec is returned when a stored record fails to decode.
	Codec
	// Transport is returned when the underlying datastore I/O fails.
	Transport
)

func (k ErrorKind) String() string {
	switch k {
	case JobCancelled:
		return "JobCancelled"
	case JobNotFound:
		return "JobNotFound"
	case WorkerMismatch:
		return "WorkerMismatch"
	case InvalidJobStatus:
		return "InvalidJobStatus"
	case Codec:
		return "Codec"
	case Transport:
		return "Transport"
	default:
		return "Unknown"
	}
}

// Error is the single sum type through which every wq error surfaces
// (spec §7). The core recovers nothing locally; every error reaches the
// caller, who may inspect Kind or use errors.Is against the sentinels
// below.
type Error struct {
	Kind ErrorKind
	// Msg is a human-readable detail (e.g. the malformed status string for
	// InvalidJobStatus).
	Msg string
	// Err is the underlying cause, if any (e.g. the *redis.Client error for
	// Transport, or the json error for Codec).
	Err error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err == nil {
		return e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is supports errors.Is(err, wq.ErrJobCancelled) and friends by comparing
// Kind rather than identity, since each operation constructs a fresh *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel errors for use with errors.Is. Each carries only a Kind; the
// Msg/Err on the error actually returned by an operation may differ.
var (
	ErrJobCancelled     = &Error{Kind: JobCancelled}
	ErrJobNotFound      = &Error{Kind: JobNotFound}
	ErrWorkerMismatch   = &Error{Kind: WorkerMismatch}
	ErrInvalidJobStatus = &Error{Kind: InvalidJobStatus}
	ErrCodec            = &Error{Kind: Codec}
	ErrTransport        = &Error{Kind: Transport}
)

func newError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func transportErr(err error) *Error {
	return newError(Transport, "datastore operation failed", err)
}

func codecErr(what string, err error) *Error {
	return newError(Codec, what, err)
}

// mapScriptError recognizes the sentinel strings returned via
// redis.error_reply from reclaimScript/resolveScript (scripts.go) and turns
// them back into the matching *Error. Anything else is a genuine transport
// failure (network error, script compile error, and so on).
func mapScriptError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "JobCancelled"):
		return newError(JobCancelled, "job was cancelled", err)
	case strings.Contains(msg, "JobNotFound"):
		return newError(JobNotFound, "job not found", err)
	case strings.Contains(msg, "WorkerMismatch"):
		return newError(WorkerMismatch, "worker does not own this claim", err)
	default:
		return transportErr(err)
	}
}
