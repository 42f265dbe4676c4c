package battery

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Defaults used when the settings leave a field at zero.
const (
	DefaultFrequency = 10 * time.Minute
	DefaultPercent   = 33
)

// Logger defines the logging interface used by the manager.
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

// Settings control the low-battery poller.
type Settings struct {
	// Active enables polling. When false Start does nothing.
	Active bool

	// Frequency is the poll interval.
	Frequency time.Duration

	// Percent is the threshold below which a discharging device is low.
	Percent int
}

// LevelFunc returns the charge level in percent.
type LevelFunc func() (float64, error)

// ChargingFunc reports whether the device is on charge.
type ChargingFunc func() (bool, error)

// Reading is the result of one poll.
type Reading struct {
	Level    float64
	Charging bool
	Low      bool
}

// Manager polls a wireless device's battery and reports when it is low.
type Manager struct {
	name     string
	level    LevelFunc
	charging ChargingFunc
	settings Settings
	logger   Logger
	onLow    func(Reading)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a manager for the named device. charging may be nil
// for hardware that cannot report it.
func NewManager(name string, level LevelFunc, charging ChargingFunc, settings Settings) *Manager {
	if settings.Frequency <= 0 {
		settings.Frequency = DefaultFrequency
	}
	if settings.Percent <= 0 {
		settings.Percent = DefaultPercent
	}
	return &Manager{
		name:     name,
		level:    level,
		charging: charging,
		settings: settings,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger.
func (m *Manager) SetLogger(logger Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// SetOnLow registers the callback invoked when a poll finds the battery low.
func (m *Manager) SetOnLow(fn func(Reading)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLow = fn
}

// Settings returns the effective settings.
func (m *Manager) Settings() Settings {
	return m.settings
}

// Check polls once. The battery is low when it is discharging and below
// the threshold.
func (m *Manager) Check() (Reading, error) {
	lvl, err := m.level()
	if err != nil {
		return Reading{}, fmt.Errorf("reading battery level of %s: %w", m.name, err)
	}
	r := Reading{Level: lvl}
	if m.charging != nil {
		if r.Charging, err = m.charging(); err != nil {
			m.logger.Debug("charging state unavailable", "device", m.name, "error", err)
		}
	}
	r.Low = !r.Charging && lvl < float64(m.settings.Percent)
	return r, nil
}

// Start begins polling. It is a no-op when the manager is inactive or
// already running.
func (m *Manager) Start(ctx context.Context) {
	if !m.settings.Active {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.run(ctx, m.done)
}

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.settings.Frequency)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r, err := m.Check()
			if err != nil {
				m.logger.Warn("battery poll failed", "device", m.name, "error", err)
				continue
			}
			if !r.Low {
				continue
			}
			m.logger.Warn("battery low", "device", m.name, "level", r.Level)
			m.mu.Lock()
			fn := m.onLow
			m.mu.Unlock()
			if fn != nil {
				fn(r)
			}
		}
	}
}

// Close stops polling and waits for the poller to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
