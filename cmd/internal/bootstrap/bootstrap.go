// Package bootstrap wires configuration, the database connection and the
// migrator together for the CLI subcommands.
package bootstrap

import (
	"context"
	"errors"

	"github.com/chmigrate/chmigrate/chdb"
	"github.com/chmigrate/chmigrate/config"
	"github.com/chmigrate/chmigrate/migration/history"
	"github.com/chmigrate/chmigrate/migration/migrator"
)

// NewMigrator loads the configuration, connects to ClickHouse and returns a
// ready migrator plus a close function for the connection.
func NewMigrator(ctx context.Context) (*migrator.Migrator, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database == "" {
		return nil, nil, errors.New("database not configured: set CHMIGRATE_DATABASE or a DSN")
	}

	conn, err := chdb.Connect(ctx, chdb.Options{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Database:    cfg.Database,
		Username:    cfg.Username,
		Password:    cfg.Password,
		ConnectWait: cfg.ConnectWait,
	})
	if err != nil {
		return nil, nil, err
	}

	store := history.NewStore(conn, cfg.Database, cfg.MigrationsTable)
	m := migrator.New(cfg.MigrationsPath, store, conn, cfg.Vars)
	return m, conn.Close, nil
}

// NewOfflineMigrator builds a migrator without a database connection, for
// operations that only touch the filesystem such as rendering a script.
func NewOfflineMigrator() (*migrator.Migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return migrator.New(cfg.MigrationsPath, nil, nil, cfg.Vars), nil
}
