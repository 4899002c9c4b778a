// Package history persists the append-only migration attempt log.
//
// Every lifecycle transition inserts a new row; rows are never updated or
// deleted, recovery included. Crash recovery is therefore a pure query over
// existing data: the newest row is the durable checkpoint.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrDecode indicates a history row that could not be decoded into a Record.
var ErrDecode = errors.New("decode history row")

// Executor runs statements against the target database. Implementations are
// expected to support parameterized inserts and arbitrary DDL/DML text.
// Timeouts and transport concerns live behind this interface, not here.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) error
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Rows is the minimal result-set contract the store needs from an Executor.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Record is one row of the migration history table.
type Record struct {
	Version         int
	Name            string
	Status          Status
	UpFingerprint   string
	DownFingerprint string
	CreatedAt       time.Time
}

// Store owns the history table and lazily creates both the target database
// and the table itself. It keeps no cache: History always round-trips to
// the database so planning never acts on stale state.
type Store struct {
	exec     Executor
	database string
	table    string
	ensured  bool
	seq      atomic.Uint64
}

// NewStore creates a history store over the given executor. The table lives
// in database under the given name and is created on first use.
func NewStore(exec Executor, database, table string) *Store {
	s := &Store{
		exec:     exec,
		database: database,
		table:    table,
	}
	// Seed the tie-break counter so rows from successive runs stay ordered
	// even when created_at collides at the clock resolution.
	s.seq.Store(uint64(time.Now().UnixNano()))
	return s
}

func (s *Store) qualifiedTable() string {
	return fmt.Sprintf("`%s`.`%s`", s.database, s.table)
}

// EnsureSchema idempotently creates the target database and the history
// table. Safe to call any number of times.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.ensured {
		return nil
	}

	query := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", s.database)
	if err := s.exec.Exec(ctx, query); err != nil {
		return fmt.Errorf("create database %s: %w", s.database, err)
	}

	exists, err := s.tableExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				version UInt32,
				name String,
				status String,
				up_fingerprint String,
				down_fingerprint String,
				seq UInt64,
				created_at DateTime64(9) DEFAULT now64(9)
			) Engine=MergeTree ORDER BY (created_at, seq)`, s.qualifiedTable())
		if err := s.exec.Exec(ctx, query); err != nil {
			return fmt.Errorf("create history table %s: %w", s.qualifiedTable(), err)
		}
	}

	s.ensured = true
	return nil
}

func (s *Store) tableExists(ctx context.Context) (bool, error) {
	rows, err := s.exec.Query(ctx,
		"SELECT count() FROM system.tables WHERE database = ? AND name = ?",
		s.database, s.table)
	if err != nil {
		return false, fmt.Errorf("check history table: %w", err)
	}
	defer rows.Close()

	var count uint64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return false, fmt.Errorf("check history table: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("check history table: %w", err)
	}
	return count > 0, nil
}

// Append inserts one history row with a fresh timestamp.
func (s *Store) Append(ctx context.Context, version int, name string, status Status, upFingerprint, downFingerprint string) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (version, name, status, up_fingerprint, down_fingerprint, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, s.qualifiedTable())
	err := s.exec.Exec(ctx, query,
		uint32(version), name, status.String(), upFingerprint, downFingerprint,
		s.seq.Add(1), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append history row: %w", err)
	}
	return nil
}

// History returns all rows newest first, creating the schema on first use.
// Every row is decoded field by field and validated; unknown status values
// fail with ErrCorruptHistory rather than being passed through.
func (s *Store) History(ctx context.Context) ([]Record, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT version, name, status, up_fingerprint, down_fingerprint, created_at
		FROM %s ORDER BY created_at DESC, seq DESC`, s.qualifiedTable())
	rows, err := s.exec.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			version   uint32
			name      string
			status    string
			upFp      string
			downFp    string
			createdAt time.Time
		)
		if err := rows.Scan(&version, &name, &status, &upFp, &downFp, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		parsed, err := ParseStatus(status)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{
			Version:         int(version),
			Name:            name,
			Status:          parsed,
			UpFingerprint:   upFp,
			DownFingerprint: downFp,
			CreatedAt:       createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return records, nil
}
