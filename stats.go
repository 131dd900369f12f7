package wq

// QueueStats is the set of monotonic/gauge counters kept coherent with
// every state-changing operation (spec §4.9). Scheduled and Claimed are
// gauges; Succeeded, Failed and Errored only ever increase.
type QueueStats struct {
	Scheduled uint64
	Claimed   uint64
	Succeeded uint64
	Failed    uint64
	Errored   uint64
}

const (
	statFieldScheduled = "scheduled"
	statFieldClaimed   = "claimed"
	statFieldSucceeded = "succeeded"
	statFieldFailed    = "failed"
	statFieldErrored   = "errored"
)

func statFieldForStatus(s JobStatus) (string, error) {
	switch s {
	case Success:
		return statFieldSucceeded, nil
	case Failure:
		return statFieldFailed, nil
	case InternalError:
		return statFieldErrored, nil
	default:
		return "", newError(InvalidJobStatus, s.String(), nil)
	}
}
