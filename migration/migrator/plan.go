package migrator

import (
	"sort"
	"strings"

	"github.com/chmigrate/chmigrate/migration/catalog"
	"github.com/chmigrate/chmigrate/migration/history"
)

// RejectIfDirty fails with ErrDirty when the newest history record marks an
// unresolved migration attempt. New forward or backward work must not start
// until an operator resolves it with force or reset.
func RejectIfDirty(records []history.Record) error {
	if len(records) > 0 && records[0].Status.Dirty() {
		return &DirtyError{Version: records[0].Version, Status: records[0].Status}
	}
	return nil
}

// PlanUp returns the versions to apply, ascending: every catalog version v
// with pos < v <= pos+step. A step of zero or less means all remaining.
// Fails with ErrDirty before any planning if the history is dirty.
func PlanUp(files map[int]catalog.MigrationFile, records []history.Record, step int) ([]int, error) {
	if err := RejectIfDirty(records); err != nil {
		return nil, err
	}
	if step <= 0 {
		step = len(files)
	}
	pos := history.Position(records)

	var plan []int
	for v := range files {
		if pos < v && v <= pos+step {
			plan = append(plan, v)
		}
	}
	sort.Ints(plan)
	return plan, nil
}

// PlanDown returns the versions to revert, descending: every catalog version
// v with pos-step < v <= pos. Reverting must undo most-recent-first. A step
// of zero or less means all applied. Fails with ErrDirty before any planning
// if the history is dirty.
func PlanDown(files map[int]catalog.MigrationFile, records []history.Record, step int) ([]int, error) {
	if err := RejectIfDirty(records); err != nil {
		return nil, err
	}
	if step <= 0 {
		step = len(files)
	}
	pos := history.Position(records)

	var plan []int
	for v := range files {
		if pos-step < v && v <= pos {
			plan = append(plan, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(plan)))
	return plan, nil
}

// SplitStatements splits a rendered script into individual statements on the
// ';' separator, trimming whitespace and discarding empty fragments. The
// target database executes one statement per round trip, so multi-statement
// scripts are run piecewise, strictly in textual order.
func SplitStatements(script string) []string {
	parts := strings.Split(script, ";")
	statements := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			statements = append(statements, p)
		}
	}
	return statements
}
