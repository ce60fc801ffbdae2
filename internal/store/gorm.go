package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entry struct {
	Namespace string    `gorm:"column:namespace;primaryKey;size:64"`
	Key       string    `gorm:"column:key;primaryKey;size:128"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (entry) TableName() string { return "kv_entries" }

// GormKV keeps entries in a single table, usually a local sqlite file.
type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, err
	}
	return &GormKV{db: db}, nil
}

func (s *GormKV) Get(ctx context.Context, namespace, key string) (string, error) {
	var e entry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return e.Value, nil
}

func (s *GormKV) Set(ctx context.Context, namespace, key, value string) error {
	return s.SetMany(ctx, namespace, map[string]string{key: value})
}

// SetMany upserts all pairs in one statement.
func (s *GormKV) SetMany(ctx context.Context, namespace string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := time.Now()
	entries := make([]entry, 0, len(values))
	for k, v := range values {
		entries = append(entries, entry{Namespace: namespace, Key: k, Value: v, UpdatedAt: now})
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entries).Error
}

func (s *GormKV) Delete(ctx context.Context, namespace, key string) error {
	return s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		Delete(&entry{}).Error
}

func (s *GormKV) Clear(ctx context.Context, namespace string) error {
	return s.db.WithContext(ctx).
		Where("namespace = ?", namespace).
		Delete(&entry{}).Error
}

// Close is a no-op; the *gorm.DB belongs to the caller.
func (s *GormKV) Close() error { return nil }
