// Package watcher runs the periodic sample -> decode -> publish loop.
package watcher

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/laundrywatch/laundrywatch/internal/config"
	"github.com/laundrywatch/laundrywatch/internal/decode"
	"github.com/laundrywatch/laundrywatch/internal/influx"
	"github.com/laundrywatch/laundrywatch/internal/logging"
	"github.com/laundrywatch/laundrywatch/internal/model"
	"github.com/laundrywatch/laundrywatch/internal/publish"
	"github.com/laundrywatch/laundrywatch/internal/sample"
	"github.com/laundrywatch/laundrywatch/internal/storage"
)

// ImageSource supplies a decoded snapshot of the panel, or an error when the
// source is not ready.
type ImageSource interface {
	Fetch(ctx context.Context) (image.Image, error)
}

// Publisher ships one batch of messages per pass, fire and forget.
type Publisher interface {
	Publish(messages []publish.Message) error
}

// Dependencies holds all dependencies for the watcher service
type Dependencies struct {
	Source     ImageSource
	Publisher  Publisher
	Backend    storage.Backend // optional reading history
	Influx     *influx.Manager // optional metrics export
	LogManager *logging.SlogManager
}

// Service drives sampling passes on a fixed cadence plus manual triggers.
type Service struct {
	deps     Dependencies
	interval time.Duration
	trigger  chan struct{}

	mu       sync.RWMutex
	lastPass *model.Pass

	// OTEL metrics
	passes       metric.Int64Counter
	decodeFailed metric.Int64Counter
	published    metric.Int64Counter
}

// NewService creates a new watcher service.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewService(deps Dependencies, interval time.Duration) (*Service, error) {
	s := &Service{
		deps:     deps,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}

	m := meter()

	var err error

	s.passes, err = m.Int64Counter(
		"watcher.passes",
		metric.WithDescription("Total sampling passes completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating passes counter: %w", err)
	}

	s.decodeFailed, err = m.Int64Counter(
		"watcher.decode.failed",
		metric.WithDescription("Total markers that decoded to absent"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decode failed counter: %w", err)
	}

	s.published, err = m.Int64Counter(
		"watcher.messages.published",
		metric.WithDescription("Total messages handed to the publisher"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published counter: %w", err)
	}

	return s, nil
}

// Trigger requests an immediate pass without waiting for the next tick.
func (s *Service) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// LastPass returns the most recently completed pass, or nil.
func (s *Service) LastPass() *model.Pass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPass
}

// Run executes passes until the context is cancelled. The first pass runs
// immediately.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.trigger:
			s.runOnce(ctx)
		}
	}
}

// runOnce takes a fresh configuration snapshot and runs one pass. Failures
// are logged, never fatal; the next tick simply tries again.
func (s *Service) runOnce(ctx context.Context) {
	logger := s.deps.LogManager.Logger()

	snap, err := config.TakeSnapshot()
	if err != nil {
		logger.Error("Configuration snapshot failed, skipping pass", "error", err)
		return
	}

	if _, err := s.RunPass(ctx, snap); err != nil {
		logger.Warn("Sampling pass skipped", "error", err)
	}
}

// RunPass executes one full sampling pass against a configuration snapshot:
// fetch the snapshot image, sample and decode every marker, publish the
// mapped messages, and record the pass. Per-marker failures downgrade to
// absent values; the pass itself only fails when no image is available.
func (s *Service) RunPass(ctx context.Context, snap config.Snapshot) (*model.Pass, error) {
	logger := s.deps.LogManager.Logger()

	img, err := s.deps.Source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("image source not ready: %w", err)
	}

	bounds := img.Bounds()
	pass := &model.Pass{
		Time:        time.Now(),
		ImageWidth:  bounds.Dx(),
		ImageHeight: bounds.Dy(),
		Threshold:   snap.Threshold,
	}

	values := make(map[string]decode.Value, len(snap.Markers))

	for _, m := range snap.Markers {
		points := m.Shape.Points()

		samples, sampleErr := sample.Collect(img, points)

		value := decode.Absent
		if sampleErr != nil {
			logger.Warn("Sampling failed, marker treated as absent",
				"marker", m.Name, "error", sampleErr)
		} else {
			value = decode.Decode(m.Shape, samples, snap.Threshold)
		}

		if value.Kind == decode.KindAbsent {
			s.decodeFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("marker", m.Name)))
		}

		values[m.Name] = value
		pass.Readings = append(pass.Readings, model.NewReading(m.Name, samples, value, sampleErr))
	}

	messages := publish.BuildMessages(values)
	if err := s.deps.Publisher.Publish(messages); err != nil {
		logger.Error("Publish failed", "messages", len(messages), "error", err)
	} else {
		s.published.Add(ctx, int64(len(messages)))
	}

	if s.deps.Backend != nil {
		if err := s.deps.Backend.RecordPass(pass); err != nil {
			logger.Error("Failed to record pass", "error", err)
		}
	}
	if s.deps.Influx != nil {
		if err := s.deps.Influx.WritePass(pass); err != nil {
			logger.Error("Failed to export pass to InfluxDB", "error", err)
		}
	}

	s.passes.Add(ctx, 1)

	s.mu.Lock()
	s.lastPass = pass
	s.mu.Unlock()

	logger.Debug("Sampling pass complete", "markers", len(snap.Markers), "messages", len(messages))

	return pass, nil
}
