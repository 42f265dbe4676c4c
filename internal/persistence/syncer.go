package persistence

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Logger defines the logging interface used by the syncer.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Snapshotter writes its current state into the store.
type Snapshotter interface {
	Snapshot(w Writer)
}

// SourceFunc returns the devices whose state should be persisted.
type SourceFunc func() []Snapshotter

// Syncer periodically writes device state to the repository. A tick only
// does work when the store has been marked changed.
type Syncer struct {
	store    *Store
	interval time.Duration
	sources  SourceFunc
	logger   Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSyncer creates a syncer that checks the store every interval.
func NewSyncer(store *Store, interval time.Duration, sources SourceFunc) *Syncer {
	return &Syncer{
		store:    store,
		interval: interval,
		sources:  sources,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for sync diagnostics.
func (s *Syncer) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Sync snapshots every source and flushes, if the store has changed.
// A source marking the store changed after its snapshot was taken keeps
// the store changed for the next sync.
func (s *Syncer) Sync(ctx context.Context) error {
	if !s.store.Changed() {
		return nil
	}
	gen := s.store.generation()
	if s.sources != nil {
		for _, src := range s.sources() {
			src.Snapshot(s.store)
		}
	}
	if err := s.store.flush(ctx, gen); err != nil {
		if errors.Is(err, ErrNoRepository) {
			return nil
		}
		return err
	}
	s.logger.Debug("persistence flushed")
	return nil
}

// Start runs the sync loop until ctx is cancelled or Stop is called.
func (s *Syncer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Sync(ctx); err != nil {
					s.logger.Error("persistence sync failed", "error", err)
				}
			}
		}
	}(s.done)
}

// Stop ends the loop and performs a final sync bounded by ctx.
func (s *Syncer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return s.Sync(ctx)
}
