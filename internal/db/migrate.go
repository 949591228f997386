package db

import (
	"campus_wallet/internal/config" // Application configuration
	"campus_wallet/internal/domain" // Importing domain models
	"time"                          // Connection lifetimes

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"  // GORM query logger
)

// Models lists every table owned by the service, in creation order
var Models = []any{
	&domain.Profile{},
	&domain.Wallet{},
	&domain.Transaction{},
	&domain.Notification{},
	&domain.Budget{},
	&domain.Product{},
	&domain.StockOut{},
}

// Open connects to MySQL with duplicate-key translation enabled
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default // Verbose in development
	if cfg.IsProd {
		gormLogger = gormLogger.LogMode(logger.Silent) // Quiet in production
	}
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true, // Map driver errors to gorm.ErrDuplicatedKey and friends
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Connection pool
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	return db.AutoMigrate(Models...)
}
