package history

import (
	"errors"
	"fmt"
)

// ErrCorruptHistory indicates a stored status value outside the known set.
// The store validates every row on read rather than trusting stored strings.
var ErrCorruptHistory = errors.New("corrupt history: unknown migration status")

// Status is the lifecycle state of a migration version.
//
// The only permitted transitions are:
//
//	pending|down -> dirty_up -> up -> dirty_down -> down
//
// StatusPending is virtual: it is never persisted and is inferred for
// versions with no history record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDirtyUp   Status = "dirty_up"
	StatusUp        Status = "up"
	StatusDirtyDown Status = "dirty_down"
	StatusDown      Status = "down"
)

// ParseStatus validates a stored status value. StatusPending is rejected
// because it must never appear in the history table.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDirtyUp, StatusUp, StatusDirtyDown, StatusDown:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrCorruptHistory, s)
}

// Dirty reports whether the status marks an unconfirmed migration attempt.
func (s Status) Dirty() bool {
	return s == StatusDirtyUp || s == StatusDirtyDown
}

func (s Status) String() string {
	return string(s)
}
