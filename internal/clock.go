// Package internal holds small lifecycle and scheduling helpers shared by
// wq's background loops (the reclaim checker, the pub/sub dispatcher, the
// optional result-retention sweeper).
package internal

import "time"

// Now is a thin wrapper so callers needing both the RFC3339 wire form and
// the epoch-nanosecond form used by Lua scripts compute them from a single
// observation.
func Now() (rfc3339 string, unixNano int64) {
	now := time.Now().UTC()
	return now.Format(time.RFC3339Nano), now.UnixNano()
}
