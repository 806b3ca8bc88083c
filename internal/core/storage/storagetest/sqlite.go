// Package storagetest builds throwaway in-memory databases for tests.
package storagetest

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-tracker/internal/core/storage"
)

// NewSQLite returns a migrated in-memory database. The pool is pinned to one
// connection because every sqlite :memory: connection is a separate database.
func NewSQLite() (*storage.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(storage.Models()...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &storage.DB{Gorm: gdb, SQL: sqlx.NewDb(sqlDB, "sqlite3")}, nil
}
