package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported values for DATABASE_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect opens a database handle for the given driver. The handle is returned
// to the caller and passed to services explicitly.
func Connect(driver, dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer; one shared connection also keeps
		// ":memory:" databases visible to every query.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)

		// Foreign keys are off per connection by default
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	}

	zap.L().Info("database connection established", zap.String("driver", driverName(driver)))
	return db, nil
}

// AutoMigrate creates or updates every table
func AutoMigrate(db *gorm.DB) error {
	zap.L().Info("running database migrations")

	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	zap.L().Info("database migrations completed")
	return nil
}

// Ping checks that the database answers and reports the round-trip latency
func Ping(ctx context.Context, db *gorm.DB) (time.Duration, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, err
	}
	start := time.Now()
	if err := sqlDB.PingContext(ctx); err != nil {
		return time.Since(start), err
	}
	return time.Since(start), nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func driverName(driver string) string {
	if driver == "" {
		return DriverPostgres
	}
	return driver
}
