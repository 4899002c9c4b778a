package migrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chmigrate/chmigrate/migration/catalog"
	"github.com/chmigrate/chmigrate/migration/history"
)

// ReportRow is the reconciled state of one catalog version.
type ReportRow struct {
	Version   int
	Name      string
	Status    history.Status
	UpValid   string
	DownValid string
	CreatedAt string
}

// Report is a read-only reconciliation of the file catalog against the
// history table, for display.
type Report struct {
	Rows []ReportRow

	// Position block, present when at least one version has been applied.
	Position       int
	PositionName   string
	PositionStatus history.Status
}

// Status builds the reconciliation report. For every catalog version the
// most recent history record is compared against the current file
// fingerprints: "valid" when they match, "invalid" when the script was
// edited after being applied. The comparison is informational only and never
// blocks execution. Untouched versions show "-" and the implicit pending
// status.
func (m *Migrator) Status(ctx context.Context) (*Report, error) {
	files, err := catalog.Read(m.dir)
	if err != nil {
		return nil, err
	}
	records, err := m.store.History(ctx)
	if err != nil {
		return nil, err
	}

	// First match scanning newest-first wins: one version accumulates a row
	// per lifecycle step and only the latest matters for display.
	newest := make(map[int]history.Record)
	for _, r := range records {
		if _, ok := newest[r.Version]; !ok {
			newest[r.Version] = r
		}
	}

	versions := make([]int, 0, len(files))
	for v := range files {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	report := &Report{}
	for _, v := range versions {
		f := files[v]
		row := ReportRow{
			Version:   v,
			Name:      f.Name,
			Status:    history.StatusPending,
			UpValid:   "-",
			DownValid: "-",
			CreatedAt: "-",
		}
		if r, ok := newest[v]; ok {
			row.Status = r.Status
			row.UpValid = validity(f.UpFingerprint, r.UpFingerprint)
			row.DownValid = validity(f.DownFingerprint, r.DownFingerprint)
			row.CreatedAt = r.CreatedAt.Format(time.RFC3339Nano)
		}
		report.Rows = append(report.Rows, row)
	}

	if pos := history.Position(records); pos > 0 {
		report.Position = pos
		if f, ok := files[pos]; ok {
			report.PositionName = f.Name
		}
		report.PositionStatus = records[0].Status
	}
	return report, nil
}

func validity(fileFingerprint, recordFingerprint string) string {
	if fileFingerprint == recordFingerprint {
		return "valid"
	}
	return "invalid"
}

// String renders the report as a fixed-width table.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-7s | %-30s | %-10s | %-8s | %-8s | %s\n",
		"version", "name", "status", "up", "down", "created_at")
	sb.WriteString(strings.Repeat("-", 102) + "\n")
	for _, row := range r.Rows {
		fmt.Fprintf(&sb, "%-7d | %-30s | %-10s | %-8s | %-8s | %s\n",
			row.Version, row.Name, row.Status, row.UpValid, row.DownValid, row.CreatedAt)
	}
	sb.WriteString(strings.Repeat("-", 102) + "\n")
	if r.Position > 0 {
		fmt.Fprintf(&sb, "Current apply position: %d - %s: %s\n", r.Position, r.PositionName, r.PositionStatus)
	}
	return sb.String()
}
