package effectsync

import (
	"errors"
	"sync"

	"github.com/nerrad567/lumen-core/internal/effect"
	"github.com/nerrad567/lumen-core/internal/event"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// Logger defines the logging interface used by the aggregator.
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

// Member is a device taking part in effect sync. *device.Device
// satisfies it.
type Member interface {
	Serial() string
	EffectSync() bool
	SetParent(p event.Parent)
	ApplySyncedEffect(z zone.ID, name string, args ...int) error
}

// Follower replays effects from other devices onto one member.
type Follower struct {
	member Member
	logger Logger
}

// Notify implements event.Subscriber. Effects that came from the
// member itself, and every non-effect event, are ignored.
func (f *Follower) Notify(e event.Event) {
	if e.Kind != event.KindEffect || e.Source == f.member.Serial() {
		return
	}
	if !f.member.EffectSync() {
		return
	}

	err := f.member.ApplySyncedEffect(e.Zone, e.Effect, e.Args...)
	switch {
	case err == nil:
		f.logger.Debug("synced effect applied",
			"from", e.Source, "to", f.member.Serial(), "zone", e.Zone, "effect", e.Effect)
	case errors.Is(err, zone.ErrNotPresent), errors.Is(err, effect.ErrSetterNotFound),
		errors.Is(err, effect.ErrArgumentCount):
		f.logger.Debug("synced effect not supported by member",
			"to", f.member.Serial(), "zone", e.Zone, "effect", e.Effect, "error", err)
	default:
		f.logger.Warn("synced effect failed",
			"to", f.member.Serial(), "zone", e.Zone, "effect", e.Effect, "error", err)
	}
}

// Aggregator is the event parent of every synced device.
//
// Thread Safety:
//   - All methods are safe for concurrent use. NotifyParent replays on
//     members concurrently and returns when every replay has finished.
type Aggregator struct {
	mu        sync.RWMutex
	followers map[string]*Follower
	logger    Logger
}

// NewAggregator creates an aggregator with no members.
func NewAggregator() *Aggregator {
	return &Aggregator{
		followers: make(map[string]*Follower),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for sync diagnostics.
func (a *Aggregator) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logger = logger
	for _, f := range a.followers {
		f.logger = logger
	}
}

// Join adds m to the group and makes the aggregator its parent.
// Joining twice replaces the earlier registration.
func (a *Aggregator) Join(m Member) {
	a.mu.Lock()
	a.followers[m.Serial()] = &Follower{member: m, logger: a.logger}
	a.mu.Unlock()
	m.SetParent(a)
}

// Leave removes the member with the given serial.
func (a *Aggregator) Leave(serial string) {
	a.mu.Lock()
	f, ok := a.followers[serial]
	delete(a.followers, serial)
	a.mu.Unlock()
	if ok {
		f.member.SetParent(nil)
	}
}

// Len returns the number of members.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.followers)
}

// NotifyParent implements event.Parent.
func (a *Aggregator) NotifyParent(e event.Event) {
	if e.Kind != event.KindEffect {
		return
	}

	a.mu.RLock()
	targets := make([]*Follower, 0, len(a.followers))
	for serial, f := range a.followers {
		if serial != e.Source {
			targets = append(targets, f)
		}
	}
	a.mu.RUnlock()

	var wg sync.WaitGroup
	for _, f := range targets {
		wg.Add(1)
		go func(f *Follower) {
			defer wg.Done()
			f.Notify(e)
		}(f)
	}
	wg.Wait()
}
