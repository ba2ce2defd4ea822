package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// OpenReporting returns a sqlx handle for reporting queries. Postgres gets its
// own lib/pq pool (retried while the server comes up); SQLite shares the GORM
// connection since it only allows one.
func OpenReporting(dsn string, gormDB *gorm.DB) (*sqlx.DB, error) {
	if IsPostgres(dsn) {
		var (
			db  *sqlx.DB
			err error
		)
		for i := 0; i < 10; i++ {
			db, err = sqlx.Connect("postgres", dsn)
			if err == nil {
				return db, nil
			}
			time.Sleep(500 * time.Millisecond)
		}
		return nil, fmt.Errorf("failed to connect to postgres (sqlx): %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}
