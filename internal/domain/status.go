package domain

import "fmt"

// Status enumerates the lifecycle of a pipeline stage or item.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Terminal reports whether s is Success or Failed.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Advance validates a status transition. Statuses only move forward
// Idle -> Pending -> {Success, Failed}; a terminal status may re-enter Pending
// only when retry is set.
func Advance(from, to Status, retry bool) (Status, error) {
	switch {
	case from == StatusIdle && to == StatusPending:
		return to, nil
	case from == StatusPending && to.Terminal():
		return to, nil
	case from.Terminal() && to == StatusPending && retry:
		return to, nil
	}
	return from, fmt.Errorf("illegal status transition %s -> %s (retry=%t)", from, to, retry)
}
