package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/lumen-core/internal/battery"
	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/driver"
	"github.com/nerrad567/lumen-core/internal/effectsync"
	"github.com/nerrad567/lumen-core/internal/event"
	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
	"github.com/nerrad567/lumen-core/internal/infrastructure/logging"
	"github.com/nerrad567/lumen-core/internal/persistence"
	"github.com/nerrad567/lumen-core/internal/sysfs"
)

// Options are the inputs to NewManager.
type Options struct {
	Devices   config.DevicesConfig
	Startup   config.StartupConfig
	Catalogue *driver.Catalogue
	Store     *persistence.Store
	Logger    *logging.Logger
}

// Manager owns every live device of the daemon.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Manager struct {
	devices   config.DevicesConfig
	startup   device.Startup
	catalogue *driver.Catalogue
	store     *persistence.Store
	serials   *device.SerialCounter
	registry  *Registry
	sync      *effectsync.Aggregator
	root      *logging.Logger
	logger    *logging.Logger

	// ctx bounds background work of live devices, such as battery polling.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	sinks  []event.Subscriber
	number int
}

// NewManager creates a manager with no devices.
//
// Returns:
//   - *Manager: The manager
//   - error: If the catalogue or the store is missing
func NewManager(opts Options) (*Manager, error) {
	if opts.Catalogue == nil {
		return nil, fmt.Errorf("daemon: catalogue is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("daemon: store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		devices:   opts.Devices,
		startup:   startupFromConfig(opts.Startup),
		catalogue: opts.Catalogue,
		store:     opts.Store,
		serials:   device.NewSerialCounter(),
		registry:  NewRegistry(),
		sync:      effectsync.NewAggregator(),
		root:      logger,
		logger:    logger.Component("daemon"),
		ctx:       ctx,
		cancel:    cancel,
	}
	m.registry.SetLogger(m.logger)
	m.sync.SetLogger(logger.Component("effectsync"))
	return m, nil
}

func startupFromConfig(cfg config.StartupConfig) device.Startup {
	return device.Startup{
		RestorePersistence: cfg.RestorePersistence,
		DualBootQuirk:      cfg.PersistenceDualBootQuirk,
		EffectSync:         cfg.EffectSync,
		Battery: battery.Settings{
			Active:    cfg.BatteryNotifier,
			Frequency: time.Duration(cfg.BatteryNotifierFreq) * time.Second,
			Percent:   cfg.BatteryNotifierPercent,
		},
	}
}

// Registry returns the live device registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// AddSink registers s with every live device and every device added later.
func (m *Manager) AddSink(s event.Subscriber) {
	m.mu.Lock()
	m.sinks = append(m.sinks, s)
	m.mu.Unlock()

	for _, d := range m.registry.List() {
		d.Register(s)
	}
}

func (m *Manager) currentSinks() []event.Subscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]event.Subscriber(nil), m.sinks...)
}

func (m *Manager) nextNumber() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.number++
	return m.number
}

// Discover scans the HID root and adds every supported device that is
// not live yet. Devices are constructed one at a time in sorted HID order,
// so placeholder serials of identical models keep their index across
// restarts.
//
// Returns:
//   - int: Number of devices added
//   - error: If the HID root cannot be listed; per-device failures are
//     joined into the error but do not stop discovery
func (m *Manager) Discover(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(m.devices.HIDRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("hid root does not exist", "path", m.devices.HIDRoot)
			return 0, nil
		}
		return 0, fmt.Errorf("listing hid root: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if _, live := m.registry.FindByHID(e.Name()); !live {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)

	var (
		added int
		errs  []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		files := sysfs.NewDir(filepath.Join(m.devices.HIDRoot, id))
		model, err := m.catalogue.Match(id, files)
		if err != nil {
			if !errors.Is(err, driver.ErrUnknownModel) {
				errs = append(errs, err)
			}
			continue
		}
		if _, err := m.add(id, model, files, m.nextNumber()); err != nil {
			errs = append(errs, fmt.Errorf("adding %s: %w", id, err))
			continue
		}
		added++
	}

	m.logger.Info("device discovery complete", "added", added, "live", m.registry.Len())
	return added, errors.Join(errs...)
}

// Add constructs the device bound under hidID.
//
// Returns:
//   - *device.Device: The live device
//   - error: driver.ErrUnknownModel, ErrDeviceExists or a construction error
func (m *Manager) Add(hidID string) (*device.Device, error) {
	if _, live := m.registry.FindByHID(hidID); live {
		return nil, fmt.Errorf("%w: %s", ErrDeviceExists, hidID)
	}
	files := sysfs.NewDir(filepath.Join(m.devices.HIDRoot, hidID))
	model, err := m.catalogue.Match(hidID, files)
	if err != nil {
		return nil, err
	}
	return m.add(hidID, model, files, m.nextNumber())
}

func (m *Manager) add(hidID string, model driver.Model, files *sysfs.Dir, number int) (*device.Device, error) {
	version := m.devices.DriverVersion
	if version == "" {
		version = driver.ReadDriverVersion(files)
	}

	var eventFiles []string
	if m.devices.InputRoot != "" {
		found, err := model.FindEventFiles(m.devices.InputRoot)
		if err != nil {
			m.logger.Warn("cannot list event files", "hid_id", hidID, "error", err)
		}
		eventFiles = found
	}

	d, err := device.New(device.Options{
		Number:        number,
		HIDID:         hidID,
		Files:         files,
		Profile:       model.Profile,
		Capabilities:  driver.Build(files),
		Store:         m.store,
		Serials:       m.serials,
		Startup:       m.startup,
		DriverVersion: version,
		EventFiles:    eventFiles,
		Logger:        m.root.Device(hidID),
	})
	if err != nil {
		return nil, err
	}

	if err := m.registry.Add(d); err != nil {
		if closeErr := d.Close(); closeErr != nil {
			m.logger.Warn("closing rejected device", "serial", d.Serial(), "error", closeErr)
		}
		return nil, err
	}

	m.sync.Join(d)
	sinks := m.currentSinks()
	for _, s := range sinks {
		d.Register(s)
	}
	if b := d.Battery(); b != nil {
		b.Start(m.ctx)
	}

	added := event.NewState(d.Serial(), "added")
	for _, s := range sinks {
		s.Notify(added)
	}

	m.logger.Info("device added",
		"serial", d.Serial(),
		"name", d.Name(),
		"number", number,
		"hid_id", hidID)
	return d, nil
}

// Remove closes the device with the given serial, writes its final
// state into the store and forgets it.
func (m *Manager) Remove(serial string) error {
	d, err := m.registry.Get(serial)
	if err != nil {
		return err
	}
	m.sync.Leave(serial)
	closeErr := d.Close()
	d.Snapshot(m.store)
	if _, err := m.registry.Remove(serial); err != nil {
		return err
	}
	m.logger.Info("device removed", "serial", serial)
	return closeErr
}

// Get returns the live device with the given serial.
func (m *Manager) Get(serial string) (*device.Device, error) {
	return m.registry.Get(serial)
}

// Devices returns the live devices ordered by device number.
func (m *Manager) Devices() []*device.Device {
	return m.registry.List()
}

// SuspendAll suspends every live device.
func (m *Manager) SuspendAll() error {
	var errs []error
	for _, d := range m.registry.List() {
		if err := d.Suspend(); err != nil {
			errs = append(errs, fmt.Errorf("suspending %s: %w", d.Serial(), err))
		}
	}
	return errors.Join(errs...)
}

// ResumeAll resumes every live device.
func (m *Manager) ResumeAll() error {
	var errs []error
	for _, d := range m.registry.List() {
		if err := d.Resume(); err != nil {
			errs = append(errs, fmt.Errorf("resuming %s: %w", d.Serial(), err))
		}
	}
	return errors.Join(errs...)
}

// Snapshotters returns the live devices as persistence sources.
func (m *Manager) Snapshotters() []persistence.Snapshotter {
	return m.registry.Snapshotters()
}

// Close removes every live device and stops background work.
func (m *Manager) Close() error {
	var errs []error
	for _, d := range m.registry.List() {
		if err := m.Remove(d.Serial()); err != nil {
			errs = append(errs, err)
		}
	}
	m.cancel()
	return errors.Join(errs...)
}
