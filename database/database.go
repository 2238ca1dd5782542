package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"netsoc/config"
)

// MySQL returns the dialector for the primary store.
func MySQL(cfg config.Database) gorm.Dialector {
	return mysql.Open(cfg.DSN())
}

// SQLite is used by tests; pass ":memory:" for a throwaway database.
func SQLite(path string) gorm.Dialector {
	return sqlite.Open(path)
}

// Open connects and creates any missing tables. The returned handle owns a
// connection pool and is safe for concurrent use.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &BlogPost{}, &BookAuthor{}, &Book{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error().Err(err).Msg("failed to get underlying sql.DB")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}
