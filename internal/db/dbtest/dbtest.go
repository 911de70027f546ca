// Package dbtest opens a migrated in-memory database for tests.
package dbtest

import (
	"testing"

	"reviewservice/internal/db"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const memoryDSN = "file::memory:?_pragma=foreign_keys(1)"

// Open returns a fresh schema per call. The pool is pinned to one
// connection because every in-memory connection is its own database, so
// concurrent callers are serialized at the pool and never race inside SQLite.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(memoryDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		_ = db.Close(gdb)
	})
	return gdb
}
