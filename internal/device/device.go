package device

import (
	"fmt"
	"sync"

	"github.com/nerrad567/lumen-core/internal/battery"
	"github.com/nerrad567/lumen-core/internal/effect"
	"github.com/nerrad567/lumen-core/internal/event"
	"github.com/nerrad567/lumen-core/internal/persistence"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// Logger defines the logging interface used by devices.
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

// ControlFiles is the driver's per-device attribute directory.
// *sysfs.Dir satisfies it.
type ControlFiles interface {
	Read(name string) ([]byte, error)
	Write(name string, payload []byte) error
	Exists(name string) bool
}

// Store is the persistence store as seen by a device.
type Store interface {
	zone.Reader
	persistence.Writer
	MarkChanged()
}

// State is the lifecycle state of a device.
type State int

// Lifecycle states.
const (
	StateUninitialized State = iota
	StateActive
	StateSuspended
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateSuspended:
		return "suspended"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Startup controls what happens at construction.
type Startup struct {
	// RestorePersistence re-applies stored effects.
	RestorePersistence bool

	// DualBootQuirk repeats the effect restore once.
	DualBootQuirk bool

	// EffectSync enables upward propagation of effect events.
	EffectSync bool

	// Battery configures the low-battery poller.
	Battery battery.Settings
}

// Options are the inputs to New.
type Options struct {
	// Number is the daemon-wide ordinal of this device.
	Number int

	// HIDID is the bus identifier the device was discovered under.
	HIDID string

	Files         ControlFiles
	Profile       Profile
	Capabilities  Capabilities
	Store         Store
	Serials       *SerialCounter
	Startup       Startup
	DriverVersion string
	EventFiles    []string
	Logger        Logger
}

// queued is an event waiting for the device lock to be released.
type queued struct {
	event event.Event
	local bool
}

// Device is one attached peripheral.
//
// Thread Safety:
//   - All exported methods are safe for concurrent use. Commands are
//     serialized by the device lock; observers are notified after the
//     lock is released.
type Device struct {
	mu sync.Mutex

	number        int
	hidID         string
	files         ControlFiles
	profile       Profile
	caps          Capabilities
	store         Store
	logger        Logger
	driverVersion string
	eventFiles    []string

	serial      string
	storageName string
	zones       *zone.Model
	dispatcher  *effect.Dispatcher
	dpi         [2]int
	pollRate    int
	pollRates   []int
	bus         *event.Bus
	battery     *battery.Manager

	state           State
	persistDisabled bool
	pending         []queued
}

// defaultPollRates is used when the hardware can set its poll rate but
// the profile does not list the rates.
var defaultPollRates = []int{125, 500, 1000}

// New constructs a device and brings it to the active state.
//
// Construction resolves the serial, derives zone presence from the
// capabilities, loads persisted state and then, in order: enters driver
// mode (when the model needs it), restores DPI and poll rate, restores
// brightness and, when configured, restores effects (twice with the
// dual-boot quirk).
//
// Parameters:
//   - opts: Control files, capabilities, store and startup flags
//
// Returns:
//   - *Device: The active device
//   - error: ErrInvalidOptions when a required option is missing
func New(opts Options) (*Device, error) {
	if opts.Files == nil {
		return nil, fmt.Errorf("%w: control files are required", ErrInvalidOptions)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidOptions)
	}
	if opts.Serials == nil {
		return nil, fmt.Errorf("%w: serial counter is required", ErrInvalidOptions)
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	d := &Device{
		number:        opts.Number,
		hidID:         opts.HIDID,
		files:         opts.Files,
		profile:       opts.Profile,
		caps:          opts.Capabilities,
		store:         opts.Store,
		logger:        logger,
		driverVersion: opts.DriverVersion,
		eventFiles:    append([]string(nil), opts.EventFiles...),
		bus:           event.NewBus(),
		pollRate:      500,
		dpi:           [2]int{1800, 1800},
	}

	d.serial = resolveSerial(d.files, d.profile, opts.Serials, logger)
	d.storageName = StorageName(d.profile, d.serial)

	d.zones = zone.NewModel(d.caps.PresentZones())
	d.zones.SetLogger(logger)
	d.dispatcher = effect.NewDispatcher(d.caps.Effects)
	d.dispatcher.SetLogger(logger)

	if d.caps.Has(MethodAvailableDPI) {
		d.dpi = [2]int{1800, 0}
	}
	d.pollRates = append([]int(nil), d.profile.PollRates...)
	if d.caps.canSetPollRate() && len(d.pollRates) == 0 {
		d.pollRates = append([]int(nil), defaultPollRates...)
	}

	d.loadPersistence()
	d.bus.SetPropagate(opts.Startup.EffectSync)

	if d.caps.BatteryLevel != nil {
		d.battery = battery.NewManager(d.serial, d.caps.BatteryLevel, d.caps.Charging, opts.Startup.Battery)
		d.battery.SetLogger(logger)
		d.battery.SetOnLow(d.onBatteryLow)
	}

	err := d.do(func() error {
		d.startup(opts.Startup)
		d.state = StateActive
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("device ready",
		"serial", d.serial,
		"name", d.profile.Name,
		"zones", len(d.zones.Present()),
		"storage", d.storageName)
	return d, nil
}

func (d *Device) startup(s Startup) {
	if d.profile.DriverMode {
		if err := d.setDeviceMode(3, 0); err != nil {
			d.logger.Warn("cannot enter driver mode", "serial", d.serial, "error", err)
		}
	}
	d.restoreDPIPollRate()
	d.restoreBrightness()
	if s.RestorePersistence {
		d.restoreEffects()
		if s.DualBootQuirk {
			d.restoreEffects()
		}
	}
}

// do runs fn under the device lock and then delivers the events fn
// queued, outside the lock.
func (d *Device) do(fn func() error) error {
	d.mu.Lock()
	err := fn()
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	d.deliver(pending)
	return err
}

func (d *Device) deliver(pending []queued) {
	for _, q := range pending {
		if q.local {
			d.bus.Notify(q.event)
		} else {
			d.bus.Deliver(q.event)
		}
	}
}

// emit queues e for delivery unless notifications are suppressed.
func (d *Device) emit(e event.Event) {
	if d.bus.Disabled() {
		return
	}
	d.pending = append(d.pending, queued{event: e})
}

// emitLocal queues e for observers only, never for the parent.
func (d *Device) emitLocal(e event.Event) {
	if d.bus.Disabled() {
		return
	}
	d.pending = append(d.pending, queued{event: e, local: true})
}

// withSideEffectsDisabled runs fn with persistence writes and observer
// notifications suppressed.
func (d *Device) withSideEffectsDisabled(fn func()) {
	d.bus.SetDisabled(true)
	d.persistDisabled = true
	defer func() {
		d.bus.SetDisabled(false)
		d.persistDisabled = false
	}()
	fn()
}

// checkUsable rejects commands on closed or suspended devices.
func (d *Device) checkUsable() error {
	switch d.state {
	case StateClosed:
		return ErrClosed
	case StateSuspended:
		return ErrSuspended
	}
	return nil
}

func (d *Device) onBatteryLow(r battery.Reading) {
	_ = d.do(func() error { //nolint:errcheck // Always nil
		if d.state == StateClosed {
			return nil
		}
		d.emit(event.NewBattery(d.serial, r.Level, r.Charging))
		return nil
	})
}
