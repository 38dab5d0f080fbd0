package shared

import "time"

// Now returns the current time as an RFC 3339 string, the `time` shared
// tool's entire contract.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
