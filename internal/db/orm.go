package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"infinite-experiment/bouncer/internal/logging"
	models "infinite-experiment/bouncer/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// zapWriter routes GORM's log lines through the application logger.
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logging.GetLogger().Warnf(format, args...)
}

// newGormLogger logs slow queries and failures only. A missing row is an
// expected answer from the record store, not an error.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// IsPostgres reports whether dsn points at a Postgres server rather than a
// SQLite file.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.HasPrefix(dsn, "host=")
}

// Open connects GORM to Postgres or SQLite depending on dsn and migrates the
// record tables.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: newGormLogger(zapWriter{})}

	var (
		db  *gorm.DB
		err error
	)
	if IsPostgres(dsn) {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	} else {
		if err := ensureFolder(dsn); err != nil {
			return nil, err
		}
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}

		// SQLite allows a single writer; one connection keeps writers from
		// failing with SQLITE_BUSY and makes :memory: databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logging.Info("Connected to database via GORM", "dialect", db.Dialector.Name())
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.VerificationRecord{}, &models.InterviewRecord{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func ensureFolder(path string) error {
	if path == "" || strings.HasPrefix(path, ":memory:") || strings.HasPrefix(path, "file:") {
		return nil
	}

	folder := filepath.Dir(path)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create database folder %s: %w", folder, err)
	}
	return nil
}
