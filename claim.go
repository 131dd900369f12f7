package wq

import (
	"encoding/json"
	"time"
)

// Claim binds a single worker to a single job for a bounded window (spec
// §3). A claim exists iff the job is in the claimed state; Time is updated
// only by the owning WorkerId (I2).
type Claim struct {
	JobId    JobId     `json:"job_id"`
	Priority Priority  `json:"priority"`
	WorkerId string    `json:"worker_id"`
	Time     time.Time `json:"time"`
}

// decodeClaim is used to read back claim records built by claimScript and
// reclaimScript (scripts.go), which construct the JSON themselves via
// cjson.encode since the priority and timestamp are only known once the
// script has popped a job. A companion "time_unix_nano" field rides along
// in that JSON so the reclaim checker's sweep script can compute
// "now - claim.time > reclaim_timeout" with plain integer arithmetic
// instead of parsing the RFC3339 Time field; decodeClaim ignores it.
func decodeClaim(data []byte) (*Claim, error) {
	var c Claim
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, codecErr("failed to decode claim", err)
	}
	return &c, nil
}
