// internal/storage/storage.go
package storage

import "github.com/laundrywatch/laundrywatch/internal/model"

// Backend is the interface all reading-history storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// RecordPass stores one completed sampling pass with all its readings.
	RecordPass(p *model.Pass) error
}
