package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one row of the kv_entries table.
type Entry struct {
	Key       string    `gorm:"primaryKey;size:255"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (e *Entry) TableName() string {
	return "kv_entries"
}

// PostgresKV keeps entries in a single table managed through gorm.
type PostgresKV struct {
	db *gorm.DB
}

// NewPostgresKV opens dsn with the lib/pq driver and migrates the entry table.
func NewPostgresKV(dsn string) (*PostgresKV, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresKVFromDB(db)
}

// NewPostgresKVFromDB wraps an open gorm handle and migrates the entry table.
func NewPostgresKVFromDB(db *gorm.DB) (*PostgresKV, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &PostgresKV{db: db}, nil
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	if err := p.db.WithContext(ctx).
		Where("key = ?", key).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrKeyNotFound
		}
		return "", err // Other DB error
	}
	return entry.Value, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	return p.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&Entry{}).Error
}

func (p *PostgresKV) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	if err := p.db.WithContext(ctx).
		Model(&Entry{}).
		Where(`key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Order("key").
		Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (p *PostgresKV) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
