package gosearchgate

import "time"

func durationMin(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
