package domain

import "time"

// loc is the package-level working time zone for timestamp decomposition.
// Production code uses the process-local zone, matching how the warehouse has
// historically interpreted epoch timestamps; tests pin a fixed zone via
// SetLocation for deterministic calendar fields.
var loc = time.Local

// SetLocation swaps the working time zone. Pass nil to reset to the
// process-local zone.
func SetLocation(l *time.Location) {
	if l == nil {
		loc = time.Local
		return
	}
	loc = l
}

// StartTime converts an activity timestamp (epoch milliseconds) into a
// calendar timestamp in the working zone.
func StartTime(ts int64) time.Time {
	return time.UnixMilli(ts).In(loc)
}
