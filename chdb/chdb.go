// Package chdb connects to ClickHouse over the native protocol and exposes
// the executor contract the migration packages consume. Everything above
// this package treats the database as an opaque statement executor.
package chdb

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/cenkalti/backoff/v4"

	"github.com/chmigrate/chmigrate/migration/history"
)

// Options describes a ClickHouse endpoint.
type Options struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// DialTimeout bounds a single connection attempt. Zero means the driver
	// default.
	DialTimeout time.Duration

	// ConnectWait bounds how long Connect keeps retrying the initial ping
	// before giving up. Zero means a single attempt. This is the only retry
	// in the program; once connected, failures propagate immediately.
	ConnectWait time.Duration
}

func (o Options) addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Conn is a live ClickHouse connection satisfying history.Executor.
type Conn struct {
	conn driver.Conn
}

func open(opts Options) (driver.Conn, error) {
	return clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.addr()},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		DialTimeout: opts.DialTimeout,
	})
}

// EnsureDatabase creates the target database on a separate, database-less
// connection. ClickHouse refuses a handshake against a missing database, so
// this has to happen before Connect can succeed.
func EnsureDatabase(ctx context.Context, opts Options) error {
	bare := opts
	bare.Database = ""
	conn, err := open(bare)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", opts.addr(), err)
	}
	defer conn.Close()

	query := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", opts.Database)
	if err := conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create database %s: %w", opts.Database, err)
	}
	return nil
}

// Connect ensures the target database exists and opens a connection scoped
// to it, pinging until the server answers or ConnectWait elapses.
func Connect(ctx context.Context, opts Options) (*Conn, error) {
	if err := EnsureDatabase(ctx, opts); err != nil {
		return nil, err
	}

	conn, err := open(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", opts.addr(), err)
	}

	ping := func() error { return conn.Ping(ctx) }
	if opts.ConnectWait > 0 {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = opts.ConnectWait
		err = backoff.Retry(ping, backoff.WithContext(b, ctx))
	} else {
		err = ping()
	}
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.addr(), err)
	}

	return &Conn{conn: conn}, nil
}

// Exec runs one statement.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) error {
	return c.conn.Exec(ctx, query, args...)
}

// Query runs one statement and returns its result rows.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (history.Rows, error) {
	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Close releases the connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
