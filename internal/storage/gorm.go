package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry is a single key/value row.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// GormStore keeps entries in an SQL table through gorm.
type GormStore struct {
	db *gorm.DB
}

// PostgresDialector returns the gorm dialector for a postgres DSN.
func PostgresDialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

// SQLiteDialector returns the gorm dialector for an SQLite path or file: URI.
func SQLiteDialector(path string) gorm.Dialector {
	return sqlite.Open(path)
}

// NewGormStore opens the database and migrates the entries table.
func NewGormStore(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", ErrUnavailable, err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating entries table: %w", err)
	}

	return &GormStore{db: db}, nil
}

// Write upserts the entry for key.
func (gs *GormStore) Write(ctx context.Context, key string, value []byte) error {
	entry := Entry{Key: key, Value: string(value)}
	if err := gs.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// Read returns the entry for key.
func (gs *GormStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var entry Entry
	err := gs.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %q: %w", key, err)
	}
	return []byte(entry.Value), true, nil
}

// Clear deletes the entry for key, if any.
func (gs *GormStore) Clear(ctx context.Context, key string) error {
	if err := gs.db.WithContext(ctx).Where("key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("clearing %q: %w", key, err)
	}
	return nil
}

func (gs *GormStore) Close() error {
	sqlDB, err := gs.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
