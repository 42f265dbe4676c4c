package daemon

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/persistence"
)

// Logger defines the logging interface used by the daemon components.
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

// Registry holds the live devices keyed by serial.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*device.Device
	logger  Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[string]*device.Device),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Add registers d under its serial.
// Returns ErrDeviceExists if the serial or the HID id is already live.
func (r *Registry) Add(d *device.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[d.Serial()]; ok {
		return fmt.Errorf("%w: %s", ErrDeviceExists, d.Serial())
	}
	for _, other := range r.devices {
		if d.HIDID() != "" && other.HIDID() == d.HIDID() {
			return fmt.Errorf("%w: %s", ErrDeviceExists, d.HIDID())
		}
	}
	r.devices[d.Serial()] = d
	r.logger.Debug("device registered", "serial", d.Serial(), "count", len(r.devices))
	return nil
}

// Get returns the device with the given serial.
// Returns ErrDeviceNotFound if it is not live.
func (r *Registry) Get(serial string) (*device.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[serial]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, serial)
	}
	return d, nil
}

// FindByHID returns the device discovered under hidID.
func (r *Registry) FindByHID(hidID string) (*device.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.devices {
		if d.HIDID() == hidID {
			return d, true
		}
	}
	return nil, false
}

// Remove unregisters and returns the device with the given serial.
func (r *Registry) Remove(serial string) (*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[serial]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, serial)
	}
	delete(r.devices, serial)
	r.logger.Debug("device unregistered", "serial", serial, "count", len(r.devices))
	return d, nil
}

// List returns the live devices ordered by device number.
func (r *Registry) List() []*device.Device {
	r.mu.RLock()
	out := make([]*device.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Number() < out[j].Number()
	})
	return out
}

// Len returns the number of live devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Snapshotters returns the live devices as persistence sources.
func (r *Registry) Snapshotters() []persistence.Snapshotter {
	devices := r.List()
	out := make([]persistence.Snapshotter, len(devices))
	for i, d := range devices {
		out[i] = d
	}
	return out
}
