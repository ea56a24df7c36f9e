package db

import "gorm.io/gorm"

// KVEntry 存储一个键对应的完整值，写入即整体覆盖。
type KVEntry struct {
	gorm.Model
	Key   string `gorm:"size:191;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (KVEntry) TableName() string {
	return "kv_entries"
}
