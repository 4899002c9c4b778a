package migrator_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/chmigrate/chmigrate/migration/history"
)

func TestStatus_Report(t *testing.T) {
	c := qt.New(t)
	m, _, dir := newTestMigrator(t, nil)
	writeFixtures(c, dir, 3)
	ctx := context.Background()

	c.Assert(m.Up(ctx, 2), qt.IsNil)

	report, err := m.Status(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Rows, qt.HasLen, 3)

	c.Assert(report.Rows[0].Version, qt.Equals, 1)
	c.Assert(report.Rows[0].Status, qt.Equals, history.StatusUp)
	c.Assert(report.Rows[0].UpValid, qt.Equals, "valid")
	c.Assert(report.Rows[0].DownValid, qt.Equals, "valid")

	c.Assert(report.Rows[2].Version, qt.Equals, 3)
	c.Assert(report.Rows[2].Status, qt.Equals, history.StatusPending)
	c.Assert(report.Rows[2].UpValid, qt.Equals, "-")
	c.Assert(report.Rows[2].DownValid, qt.Equals, "-")
	c.Assert(report.Rows[2].CreatedAt, qt.Equals, "-")

	c.Assert(report.Position, qt.Equals, 2)
	c.Assert(report.PositionName, qt.Equals, "new_test_migration")
	c.Assert(report.PositionStatus, qt.Equals, history.StatusUp)
}

func TestStatus_FingerprintDrift(t *testing.T) {
	c := qt.New(t)
	m, _, dir := newTestMigrator(t, nil)
	writeFixtures(c, dir, 2)
	ctx := context.Background()

	c.Assert(m.Up(ctx, 0), qt.IsNil)

	// Edit an applied script; the drift is reported but the status stays up.
	writePair(c, dir, 2, "new_test_migration",
		"CREATE TABLE Table2 (id UInt64) Engine=Memory", "DROP TABLE Table2;")

	report, err := m.Status(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Rows[1].Status, qt.Equals, history.StatusUp)
	c.Assert(report.Rows[1].UpValid, qt.Equals, "invalid")
	c.Assert(report.Rows[1].DownValid, qt.Equals, "valid")
	c.Assert(report.Rows[0].UpValid, qt.Equals, "valid")
}

func TestReport_String(t *testing.T) {
	c := qt.New(t)
	m, _, dir := newTestMigrator(t, nil)
	writeFixtures(c, dir, 1)
	ctx := context.Background()

	c.Assert(m.Up(ctx, 0), qt.IsNil)

	report, err := m.Status(ctx)
	c.Assert(err, qt.IsNil)

	out := report.String()
	c.Assert(out, qt.Contains, "version")
	c.Assert(out, qt.Contains, "new_test_migration")
	c.Assert(out, qt.Contains, "Current apply position: 1 - new_test_migration: up")
}
