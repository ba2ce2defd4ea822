package db

import (
	"errors"
	"sync"
	"testing"

	models "infinite-experiment/bouncer/internal/models/gorm"

	"gorm.io/gorm"
)

type recordingWriter struct {
	mu    sync.Mutex
	lines []string
}

func (w *recordingWriter) Printf(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, format)
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.lines)
}

func TestGormLogger_IgnoresRecordNotFound(t *testing.T) {
	gdb, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	w := &recordingWriter{}
	session := gdb.Session(&gorm.Session{Logger: newGormLogger(w)})

	var rec models.VerificationRecord
	err = session.Where("user_id = ?", "nobody").First(&rec).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound, got %v", err)
	}
	if w.count() != 0 {
		t.Errorf("Expected no log lines for a missing record, got %d", w.count())
	}

	var n int
	if err := session.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error; err == nil {
		t.Fatal("Expected query against a missing table to fail")
	}
	if w.count() != 1 {
		t.Errorf("Expected the failed query to be logged once, got %d", w.count())
	}
}
