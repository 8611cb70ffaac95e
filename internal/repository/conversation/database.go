// File: internal/repository/conversation/database.go
package conversation

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase opens the SQL database behind the gorm backend.
func OpenDatabase(storeType StoreType, dsn string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var dialector gorm.Dialector
	switch storeType {
	case StoreTypeSQLite:
		dialector = sqlite.Open(dsn)
	case StoreTypePostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("store %q is not backed by SQL", storeType)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", storeType, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if storeType == StoreTypeSQLite {
		// SQLite allows a single writer; one connection also keeps
		// in-memory databases shared across calls.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}
