// internal/storage/factory.go
package storage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/laundrywatch/laundrywatch/internal/config"
	"github.com/laundrywatch/laundrywatch/internal/storage/gormstorage"
	"github.com/laundrywatch/laundrywatch/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration. The database
// backend handles both Postgres and SQLite; the db handle decides which.
func NewBackend(storageType string, db *gorm.DB, memCfg config.MemoryConfig) (Backend, error) {
	switch storageType {
	case "database":
		if db == nil {
			return nil, fmt.Errorf("database storage requested but no database connection")
		}
		return gormstorage.New(db), nil
	case "memory":
		return memory.New(memCfg), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}
