// Package migrator drives migrations through their lifecycle states.
//
// The migrator is a pure orchestrator: migration files are owned by the
// filesystem, history rows by the history store. Each applied version goes
// through pending|down -> dirty_up -> up (or up -> dirty_down -> down), with
// the dirty row written before any statement runs so that a crash leaves a
// durable, detectable checkpoint instead of silent corruption.
//
// Limitations, by design of the target database: there is no transactional
// rollback of partially executed scripts, and no multi-runner mutual
// exclusion. Concurrent runners against the same history table can race the
// dirty-detection check; a single logical writer is assumed.
package migrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/chmigrate/chmigrate/migration/catalog"
	"github.com/chmigrate/chmigrate/migration/history"
	"github.com/chmigrate/chmigrate/migration/render"
)

// Action selects the direction a migration is applied in.
type Action string

const (
	ActionUp   Action = "up"
	ActionDown Action = "down"
)

// Migrator reconciles on-disk migration files with the durable history table
// and applies or reverts versions in order.
type Migrator struct {
	dir      string
	store    *history.Store
	exec     history.Executor
	renderer *render.Renderer
	logger   *slog.Logger
}

// New creates a migrator over the migrations directory dir. Statements are
// run through exec; lifecycle transitions are recorded in store. vars are
// made available to script templates.
func New(dir string, store *history.Store, exec history.Executor, vars map[string]string) *Migrator {
	return &Migrator{
		dir:      dir,
		store:    store,
		exec:     exec,
		renderer: render.New(os.DirFS(dir), vars),
		logger:   slog.Default(),
	}
}

// WithLogger returns a copy of the migrator using the given logger.
func (m *Migrator) WithLogger(l *slog.Logger) *Migrator {
	tmp := *m
	tmp.logger = l
	return &tmp
}

// Up applies the next step pending versions in ascending order, stopping at
// the first failure. A step of zero or less applies all remaining versions.
func (m *Migrator) Up(ctx context.Context, step int) error {
	return m.run(ctx, step, ActionUp)
}

// Down reverts the last step applied versions in descending order, stopping
// at the first failure. A step of zero or less reverts everything applied.
func (m *Migrator) Down(ctx context.Context, step int) error {
	return m.run(ctx, step, ActionDown)
}

func (m *Migrator) run(ctx context.Context, step int, action Action) error {
	files, err := catalog.Read(m.dir)
	if err != nil {
		return err
	}
	records, err := m.store.History(ctx)
	if err != nil {
		return err
	}

	var plan []int
	if action == ActionUp {
		plan, err = PlanUp(files, records, step)
	} else {
		plan, err = PlanDown(files, records, step)
	}
	if err != nil {
		return err
	}

	for _, version := range plan {
		if err := m.applyOne(ctx, files[version], action); err != nil {
			return err
		}
	}
	return nil
}

// applyOne executes the full lifecycle for one version: dirty row, rendered
// statements one at a time in order, then the clean row. If a statement
// fails no clean row is written and the dirty row remains as the recovery
// anchor. Statements already executed are not rolled back.
func (m *Migrator) applyOne(ctx context.Context, f catalog.MigrationFile, action Action) error {
	dirty, clean := history.StatusDirtyUp, history.StatusUp
	scriptFile := f.UpFile
	if action == ActionDown {
		dirty, clean = history.StatusDirtyDown, history.StatusDown
		scriptFile = f.DownFile
	}

	m.logger.Info("applying migration", "action", string(action), "version", f.Version, "name", f.Name)

	if err := m.store.Append(ctx, f.Version, f.Name, dirty, f.UpFingerprint, f.DownFingerprint); err != nil {
		return err
	}

	script, err := m.renderer.Render(scriptFile)
	if err != nil {
		return err
	}

	for _, stmt := range SplitStatements(script) {
		if err := m.exec.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d (%s): execute statement: %w", f.Version, f.Name, err)
		}
	}

	if err := m.store.Append(ctx, f.Version, f.Name, clean, f.UpFingerprint, f.DownFingerprint); err != nil {
		return err
	}

	m.logger.Info("applied migration", "action", string(action), "version", f.Version, "name", f.Name)
	return nil
}

// Force resolves the newest dirty history record by appending a new row; no
// row is ever mutated or deleted.
//
// With reset false the dirty record is promoted to its clean counterpart
// (dirty_up becomes up, dirty_down becomes down) on the assumption that its
// statements actually completed. With reset true the second-newest record is
// duplicated verbatim, treating the dirty attempt as if it had reverted to
// the prior known-good state.
func (m *Migrator) Force(ctx context.Context, reset bool) error {
	records, err := m.store.History(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrNoHistory
	}
	newest := records[0]
	if !newest.Status.Dirty() {
		return ErrNotDirty
	}

	if reset {
		if len(records) < 2 {
			return ErrNoPrevious
		}
		prev := records[1]
		m.logger.Info("resetting dirty migration", "version", newest.Version, "to_version", prev.Version, "to_status", prev.Status.String())
		return m.store.Append(ctx, prev.Version, prev.Name, prev.Status, prev.UpFingerprint, prev.DownFingerprint)
	}

	status := history.StatusUp
	if newest.Status == history.StatusDirtyDown {
		status = history.StatusDown
	}
	m.logger.Info("forcing dirty migration", "version", newest.Version, "status", status.String())
	return m.store.Append(ctx, newest.Version, newest.Name, status, newest.UpFingerprint, newest.DownFingerprint)
}

// Create writes an empty up/down file pair at the next version number and
// returns the two file names. Unless force is set it fails with
// ErrOutOfOrder when the new version would not immediately follow the
// applied position, which usually means pending migrations have not been
// applied yet.
func (m *Migrator) Create(ctx context.Context, name string, force bool) (upFile, downFile string, err error) {
	files, err := catalog.Read(m.dir)
	if err != nil {
		return "", "", err
	}
	next := catalog.NextVersion(files)

	if !force {
		records, err := m.store.History(ctx)
		if err != nil {
			return "", "", err
		}
		if pos := history.Position(records); pos+1 != next {
			return "", "", fmt.Errorf("version %d not applied: %w", pos+1, ErrOutOfOrder)
		}
	}

	upFile, downFile, err = catalog.Create(m.dir, next, name)
	if err != nil {
		return "", "", err
	}
	m.logger.Info("created migration", "version", next, "up", upFile, "down", downFile)
	return upFile, downFile, nil
}

// RenderScript returns the rendered SQL text for one version and action
// without executing anything.
func (m *Migrator) RenderScript(version int, action Action) (string, error) {
	files, err := catalog.Read(m.dir)
	if err != nil {
		return "", err
	}
	f, ok := files[version]
	if !ok {
		return "", fmt.Errorf("version %d: %w", version, ErrNotFound)
	}
	scriptFile := f.UpFile
	if action == ActionDown {
		scriptFile = f.DownFile
	}
	return m.renderer.Render(scriptFile)
}
