package migrator

import (
	"errors"
	"fmt"

	"github.com/chmigrate/chmigrate/migration/history"
)

// Sentinel errors raised by the sequencer and recovery operations. All of
// them propagate to the caller unchanged; the CLI decides what to do with
// them.
var (
	// ErrDirty blocks up/down while a prior attempt is unresolved.
	ErrDirty = errors.New("dirty migration state")
	// ErrNotDirty is returned by Force when there is nothing to recover.
	ErrNotDirty = errors.New("current migration not dirty")
	// ErrNoHistory is returned by Force on an empty history.
	ErrNoHistory = errors.New("migration history is empty")
	// ErrNoPrevious is returned by Force(reset) when no prior record exists
	// to reset to.
	ErrNoPrevious = errors.New("no previous migration to reset to")
	// ErrOutOfOrder is returned by Create when the next file version would
	// not immediately follow the applied position.
	ErrOutOfOrder = errors.New("migration version out of order")
	// ErrNotFound is returned when a requested version has no catalog entry.
	ErrNotFound = errors.New("migration not found")
)

// DirtyError carries the version and status of the unresolved attempt that
// blocked an operation. It matches ErrDirty under errors.Is.
type DirtyError struct {
	Version int
	Status  history.Status
}

func (e *DirtyError) Error() string {
	return fmt.Sprintf("migration %d is %s: resolve with force or reset before migrating", e.Version, e.Status)
}

func (e *DirtyError) Unwrap() error {
	return ErrDirty
}
