// Package historytest provides an in-memory executor for exercising the
// history store and the migrator without a ClickHouse server.
package historytest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chmigrate/chmigrate/migration/history"
)

// Row mirrors one inserted history row, in insertion order.
type Row struct {
	Version         uint32
	Name            string
	Status          string
	UpFingerprint   string
	DownFingerprint string
	Seq             uint64
	CreatedAt       time.Time
}

// Executor understands exactly the statements the history store issues (the
// system.tables probe, the table DDL, inserts and the newest-first select)
// and records every other statement verbatim so tests can assert on the
// migration DDL that was executed.
type Executor struct {
	mu sync.Mutex

	database string
	table    string

	DatabaseCreated bool
	TableCreated    bool

	// Rows holds history inserts in insertion order. Tests may append rows
	// directly to fabricate histories.
	Rows []Row

	// Statements collects every non-history statement in execution order.
	Statements []string

	// FailOn makes Exec fail for any statement containing the substring.
	FailOn string
}

// New creates an executor for the given history database and table names.
func New(database, table string) *Executor {
	return &Executor{database: database, table: table}
}

func (e *Executor) qualifiedTable() string {
	return fmt.Sprintf("`%s`.`%s`", e.database, e.table)
}

func (e *Executor) Exec(_ context.Context, query string, args ...any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.FailOn != "" && strings.Contains(query, e.FailOn) {
		return fmt.Errorf("statement failed: %s", e.FailOn)
	}

	switch {
	case strings.HasPrefix(strings.TrimSpace(query), "CREATE DATABASE"):
		e.DatabaseCreated = true
	case strings.Contains(query, "CREATE TABLE IF NOT EXISTS "+e.qualifiedTable()):
		e.TableCreated = true
	case strings.Contains(query, "INSERT INTO "+e.qualifiedTable()):
		if len(args) != 7 {
			return fmt.Errorf("history insert expects 7 args, got %d", len(args))
		}
		e.Rows = append(e.Rows, Row{
			Version:         args[0].(uint32),
			Name:            args[1].(string),
			Status:          args[2].(string),
			UpFingerprint:   args[3].(string),
			DownFingerprint: args[4].(string),
			Seq:             args[5].(uint64),
			CreatedAt:       args[6].(time.Time),
		})
	default:
		e.Statements = append(e.Statements, query)
	}
	return nil
}

func (e *Executor) Query(_ context.Context, query string, _ ...any) (history.Rows, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case strings.Contains(query, "system.tables"):
		count := uint64(0)
		if e.TableCreated {
			count = 1
		}
		return &rows{data: [][]any{{count}}}, nil
	case strings.Contains(query, "FROM "+e.qualifiedTable()):
		// Newest first: inserts arrive in insertion order.
		data := make([][]any, 0, len(e.Rows))
		for i := len(e.Rows) - 1; i >= 0; i-- {
			r := e.Rows[i]
			data = append(data, []any{r.Version, r.Name, r.Status, r.UpFingerprint, r.DownFingerprint, r.CreatedAt})
		}
		return &rows{data: data}, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", query)
}

// AppendRow fabricates a history row, bypassing the store.
func (e *Executor) AppendRow(version int, name string, status history.Status, upFingerprint, downFingerprint string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Rows = append(e.Rows, Row{
		Version:         uint32(version),
		Name:            name,
		Status:          string(status),
		UpFingerprint:   upFingerprint,
		DownFingerprint: downFingerprint,
		CreatedAt:       time.Now().UTC(),
	})
}

type rows struct {
	data [][]any
	pos  int
}

func (r *rows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *rows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan expects %d destinations, got %d", len(row), len(dest))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *uint32:
			val, ok := v.(uint32)
			if !ok {
				return fmt.Errorf("cannot scan %T into *uint32", v)
			}
			*d = val
		case *uint64:
			val, ok := v.(uint64)
			if !ok {
				return fmt.Errorf("cannot scan %T into *uint64", v)
			}
			*d = val
		case *string:
			val, ok := v.(string)
			if !ok {
				return fmt.Errorf("cannot scan %T into *string", v)
			}
			*d = val
		case *time.Time:
			val, ok := v.(time.Time)
			if !ok {
				return fmt.Errorf("cannot scan %T into *time.Time", v)
			}
			*d = val
		default:
			return fmt.Errorf("unsupported scan destination %T", dest[i])
		}
	}
	return nil
}

func (r *rows) Err() error   { return nil }
func (r *rows) Close() error { return nil }
