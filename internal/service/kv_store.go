package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/portfolio/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KeyValueStore is the persistent store the gallery writes its serialized
// sequence to. A read of an absent key reports found=false without error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KVStore 基于 gorm 的键值存储实现。
type KVStore struct {
	db *gorm.DB
}

// NewKVStore creates a KVStore instance.
func NewKVStore(gdb *gorm.DB) *KVStore {
	return &KVStore{db: gdb}
}

// Get 读取键对应的值，不存在时 found 为 false。
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry db.KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get key %s: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set 无条件覆盖键对应的值。
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	entry := db.KVEntry{Key: key, Value: value}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("set key %s: %w", key, err)
	}
	return nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Unscoped().Where("key = ?", key).Delete(&db.KVEntry{}).Error; err != nil {
		return fmt.Errorf("delete key %s: %w", key, err)
	}
	return nil
}
