// Package gormstorage persists sampling passes through a GORM database
// handle, Postgres or SQLite alike.
package gormstorage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/laundrywatch/laundrywatch/internal/model"
)

// Backend writes passes to the database.
type Backend struct {
	db *gorm.DB
}

// New creates a database-backed storage backend.
func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// Init is a no-op; schema migration is the database manager's job.
func (b *Backend) Init() error {
	return nil
}

// RecordPass stores the pass and its readings in one create.
func (b *Backend) RecordPass(p *model.Pass) error {
	if err := b.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to record pass: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
