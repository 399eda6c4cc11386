package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/kotobalabs/kotoba-backend/internal/domain"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
)

var dbSeq atomic.Int64

// DB opens a fresh in-memory sqlite database with the full schema
// migrated. Each call gets its own database so tests stay isolated; the
// shared cache keeps it alive across the pool's connections.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(types.AllModels()...); err != nil {
		tb.Fatalf("automigrate: %v", err)
	}
	return gdb
}

// Tx wraps the test in a transaction rolled back at cleanup so cases
// sharing the cached in-memory DB stay isolated.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.NewNop()
}
