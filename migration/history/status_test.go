package history_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/chmigrate/chmigrate/migration/history"
)

func TestParseStatus(t *testing.T) {
	c := qt.New(t)

	for _, s := range []string{"dirty_up", "up", "dirty_down", "down"} {
		parsed, err := history.ParseStatus(s)
		c.Assert(err, qt.IsNil)
		c.Assert(parsed.String(), qt.Equals, s)
	}
}

func TestParseStatus_Unknown(t *testing.T) {
	c := qt.New(t)

	_, err := history.ParseStatus("exploded")
	c.Assert(err, qt.ErrorIs, history.ErrCorruptHistory)

	// pending is virtual and must never come back from storage.
	_, err = history.ParseStatus("pending")
	c.Assert(err, qt.ErrorIs, history.ErrCorruptHistory)
}

func TestStatus_Dirty(t *testing.T) {
	c := qt.New(t)

	c.Assert(history.StatusDirtyUp.Dirty(), qt.IsTrue)
	c.Assert(history.StatusDirtyDown.Dirty(), qt.IsTrue)
	c.Assert(history.StatusUp.Dirty(), qt.IsFalse)
	c.Assert(history.StatusDown.Dirty(), qt.IsFalse)
	c.Assert(history.StatusPending.Dirty(), qt.IsFalse)
}
