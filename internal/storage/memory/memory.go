// Package memory stores sampling passes in memory and exports them to JSON on
// close. It is the fallback backend when no database is configured.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/laundrywatch/laundrywatch/internal/config"
	"github.com/laundrywatch/laundrywatch/internal/model"
)

// Backend accumulates passes in memory.
type Backend struct {
	cfg config.MemoryConfig

	mu     sync.RWMutex
	passes []model.Pass

	idCounter uint
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// RecordPass stores one pass, assigning IDs the way a database would.
func (b *Backend) RecordPass(p *model.Pass) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	p.ID = b.idCounter
	for i := range p.Readings {
		p.Readings[i].PassID = p.ID
	}

	b.passes = append(b.passes, *p)
	return nil
}

// Passes returns a copy of everything recorded so far.
func (b *Backend) Passes() []model.Pass {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Pass, len(b.passes))
	copy(out, b.passes)
	return out
}

// Close exports the recorded passes to a timestamped JSON file in the output
// directory, if one is configured.
func (b *Backend) Close() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.cfg.OutputDir == "" || len(b.passes) == 0 {
		return nil
	}

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(
		b.cfg.OutputDir,
		fmt.Sprintf("passes.%s.json", time.Now().Format("20060102_150405")),
	)

	data, err := json.MarshalIndent(b.passes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal passes: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
