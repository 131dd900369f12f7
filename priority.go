package wq

import "fmt"

// Priority represents the relative urgency of a Job.
//
// Priorities are totally ordered: High preempts Normal preempts Low. Claim
// scans queues in that order on every attempt, so a continuous stream of
// High jobs can starve Low jobs indefinitely. This is intentional; wq does
// not implement fair scheduling across priorities (see Non-goals).
type Priority uint8

const (
	// High is claimed before Normal and Low.
	High Priority = iota
	// Normal is claimed before Low, after High.
	Normal
	// Low is claimed last.
	Low
)

// priorities lists every priority in claim-scan order.
var priorities = [...]Priority{High, Normal, Low}

func priorityToString(p Priority) string {
	switch p {
	case High:
		return "High"
	case Normal:
		return "Normal"
	case Low:
		return "Low"
	default:
		return "Unknown"
	}
}

func priorityFromString(s string) (Priority, error) {
	switch s {
	case "High":
		return High, nil
	case "Normal":
		return Normal, nil
	case "Low":
		return Low, nil
	default:
		return 0, newError(Codec, fmt.Sprintf("unknown priority: %s", s), nil)
	}
}

// String returns the canonical name of the priority.
func (p Priority) String() string {
	return priorityToString(p)
}

// MarshalText implements encoding.TextMarshaler, used by the JSON codec for
// Job and Claim records (spec §4.1: priority serializes as "High"|"Normal"|"Low").
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(priorityToString(p)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := priorityFromString(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
