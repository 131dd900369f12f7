package wq

import "fmt"

// keys holds the well-known Redis key names for one queue instance, all
// living under the "wq:<name>:" prefix (spec §3).
type keys struct {
	name      string
	jobs      string
	claims    string
	results   string
	cancelled string
	stats     string
	wake      string
	resolved  string
}

func newKeys(name string) keys {
	prefix := fmt.Sprintf("wq:%s:", name)
	return keys{
		name:      name,
		jobs:      prefix + "jobs",
		claims:    prefix + "claims",
		results:   prefix + "results",
		cancelled: prefix + "cancelled",
		stats:     prefix + "stats",
		wake:      prefix + "wake",
		resolved:  prefix + "resolved",
	}
}

// queueKey returns the list key for a given priority, e.g. "wq:Q:queue:High".
func (k keys) queueKey(p Priority) string {
	return fmt.Sprintf("wq:%s:queue:%s", k.name, p)
}
