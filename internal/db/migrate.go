package db

import (
	"fmt"                        // Error formatting
	"landestate/internal/config" // Application configuration
	"landestate/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging

	"gorm.io/driver/mysql"    // MySQL driver for GORM
	"gorm.io/driver/postgres" // PostgreSQL driver for GORM
	"gorm.io/driver/sqlite"   // SQLite driver for GORM
	"gorm.io/gorm"            // GORM ORM library
	"gorm.io/gorm/logger"     // GORM query logger
)

// Models lists every table in migration order (parents first)
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Employee{},
		&domain.Property{},
		&domain.Room{},
		&domain.MaintenanceRecord{},
		&domain.Conversation{},
		&domain.Message{},
	}
}

// Dialector picks the GORM dialector for the configured driver
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql", "":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

// Open connects to the configured database
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	level := logger.Warn
	if cfg.IsProd {
		level = logger.Error
	}
	return gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

// Drop removes every table (children first)
func Drop(db *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop failed: %w", err)
		}
	}
	logrus.Warn("All tables dropped.")
	return nil
}
