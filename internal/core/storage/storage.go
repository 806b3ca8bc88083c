// Package storage owns the single connection pool shared by the gorm repositories
// and the sqlx aggregate queries.
package storage

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-tracker/internal"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	userDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/user"
)

const DriverName = "pgx"

type DB struct {
	Gorm *gorm.DB
	SQL  *sqlx.DB
}

// Models lists the tables owned by this service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&userDatamodel.User{},
		&expenseDatamodel.Expense{},
	}
}

// Open connects through the pgx stdlib driver and layers gorm over the same *sql.DB.
func Open(cfg internal.DatabaseConfig, level gormlogger.LogLevel) (*DB, error) {
	sqlDB, err := sqlx.Connect(DriverName, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &DB{Gorm: gdb, SQL: sqlDB}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.SQL.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.SQL.Close()
}
