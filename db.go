// Package edgesim holds the shared Postgres connection used to persist
// simulation runs.
package edgesim

import (
	"database/sql"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

var (
	dbOnce sync.Once
	dbConn *sql.DB
	dbErr  error
)

// GetDB returns the process-wide connection for DATABASE_URL. It returns
// (nil, nil) when DATABASE_URL is unset so callers can fall back to file storage.
func GetDB() (*sql.DB, error) {
	dbOnce.Do(func() {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return
		}
		dbConn, dbErr = OpenDB(dsn)
	})
	if dbErr != nil {
		return nil, dbErr
	}
	return dbConn, nil
}

// OpenDB opens and pings a pool for dsn.
func OpenDB(dsn string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	// Simple protocol keeps PgBouncer-style poolers happy (no server-side prepared statements).
	config.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	db := stdlib.OpenDB(*config)
	db.SetConnMaxIdleTime(4 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
