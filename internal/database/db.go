package database

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"cafe-dashboard/internal/config"
	"cafe-dashboard/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Open connects to the café's point-of-sale database. The dashboard never
// writes, so every session is forced read-only and no migration runs.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(ReadOnlyDSN(cfg.DatabaseDSN)), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open warehouse database: %w", err)
	}

	checkTables(db)
	return db, nil
}

// checkTables only reports; a missing table leaves that section to the sample dataset.
func checkTables(db *gorm.DB) {
	tables := []schema.Tabler{
		&models.SalesRecord{},
		&models.InventoryItem{},
		&models.AttendanceRecord{},
		&models.FeedbackRecord{},
	}
	for _, t := range tables {
		if !db.Migrator().HasTable(t.TableName()) {
			slog.Warn("warehouse table not found or database unreachable", "table", t.TableName())
		}
	}
}

// ReadOnlyDSN adds default_transaction_read_only=on to a keyword/value or URL
// style PostgreSQL DSN. pgx forwards unknown keys as runtime parameters.
func ReadOnlyDSN(dsn string) string {
	const key = "default_transaction_read_only"
	if strings.Contains(dsn, key) {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set(key, "on")
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(dsn) + " " + key + "=on"
}
