package database

import (
	"context"
	"fmt"
	"time"

	"smartfarm-backend/internal/common/config"
	errs "smartfarm-backend/internal/common/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQLClient wraps the relational store connection. Queries elsewhere are
// written with ? bindvars and rebound per driver via DB.Rebind.
type SQLClient struct {
	DB *sqlx.DB
}

// Open connects to the backend selected by cfg.Driver.
func Open(cfg config.DatabaseConfig) (*SQLClient, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(cfg.Postgres)
	case "sqlite":
		return NewSQLite(cfg.SQLite)
	default:
		return nil, errs.New(errs.ErrCodeDatabaseConnectionFailed,
			fmt.Sprintf("unsupported database driver: %q", cfg.Driver))
	}
}

func NewPostgres(cfg config.PostgresConfig) (*SQLClient, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDatabaseConnectionFailed, "failed to open postgres", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &SQLClient{DB: db}, nil
}

func NewSQLite(cfg config.SQLiteConfig) (*SQLClient, error) {
	db, err := sqlx.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDatabaseConnectionFailed,
			fmt.Sprintf("failed to open sqlite at %s", cfg.Path), err)
	}

	// sqlite tolerates a single writer
	db.SetMaxOpenConns(1)

	return &SQLClient{DB: db}, nil
}

func (c *SQLClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *SQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
