package device

import (
	"fmt"
	"io/fs"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/lumen-core/internal/battery"
	"github.com/nerrad567/lumen-core/internal/effect"
	"github.com/nerrad567/lumen-core/internal/event"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// fakeFiles is an in-memory control directory. Reads pop queued values
// until the last one, which repeats.
type fakeFiles struct {
	mu      sync.Mutex
	reads   map[string][][]byte
	writes  map[string][][]byte
	exists  map[string]bool
	missing map[string]bool
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		reads:   map[string][][]byte{},
		writes:  map[string][][]byte{},
		exists:  map[string]bool{},
		missing: map[string]bool{},
	}
}

func (f *fakeFiles) queue(name string, values ...string) {
	for _, v := range values {
		f.reads[name] = append(f.reads[name], []byte(v))
	}
}

func (f *fakeFiles) Read(name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.reads[name]
	if len(q) == 0 {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	v := q[0]
	if len(q) > 1 {
		f.reads[name] = q[1:]
	}
	return v, nil
}

func (f *fakeFiles) Write(name string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[name] {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	f.writes[name] = append(f.writes[name], append([]byte(nil), payload...))
	return nil
}

func (f *fakeFiles) Exists(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists[name]
}

func (f *fakeFiles) written(name string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes[name]
}

// fakeStore is a section map that counts MarkChanged calls.
type fakeStore struct {
	sections map[string]map[string]string
	changed  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sections: map[string]map[string]string{}}
}

func (s *fakeStore) HasSection(section string) bool {
	_, ok := s.sections[section]
	return ok
}

func (s *fakeStore) Get(section, key string) (string, bool) {
	v, ok := s.sections[section][key]
	return v, ok
}

func (s *fakeStore) Set(section, key, value string) {
	if s.sections[section] == nil {
		s.sections[section] = map[string]string{}
	}
	s.sections[section][key] = value
}

func (s *fakeStore) MarkChanged() { s.changed++ }

// rig records every hardware call a test device makes.
type rig struct {
	mu         sync.Mutex
	files      *fakeFiles
	store      *fakeStore
	calls      []string
	brightness map[zone.ID][]float64
	dpi        [][2]int
	pollRates  []int
	liveDPI    [2]int
	closed     int
}

func newRig() *rig {
	r := &rig{
		files:      newFakeFiles(),
		store:      newFakeStore(),
		brightness: map[zone.ID][]float64{},
		liveDPI:    [2]int{800, 800},
	}
	r.files.queue(FileSerial, "PM1234\n")
	return r
}

func (r *rig) record(format string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	return nil
}

func (r *rig) callCount(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (r *rig) brightnessControl(z zone.ID) BrightnessControl {
	return BrightnessControl{
		Set: func(level float64) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.brightness[z] = append(r.brightness[z], level)
			return nil
		},
	}
}

func (r *rig) capabilities() Capabilities {
	table := effect.NewTable()
	table.Register(zone.Backlight, effect.Spectrum, effect.Setter0(func() error {
		return r.record("setSpectrum")
	}))
	table.Register(zone.Backlight, effect.Static, effect.Setter3(func(red, green, blue uint8) error {
		return r.record("setStatic %d %d %d", red, green, blue)
	}))
	table.Register(zone.Backlight, effect.Wave, effect.Setter1(func(dir int) error {
		return r.record("setWave %d", dir)
	}))
	table.Register(zone.Logo, effect.Static, effect.Setter3(func(red, green, blue uint8) error {
		return r.record("setLogoStatic %d %d %d", red, green, blue)
	}))
	table.Register(zone.Logo, effect.Spectrum, effect.Setter0(func() error {
		return r.record("setLogoSpectrum")
	}))

	return Capabilities{
		Methods: map[string]bool{
			MethodSetStaticEffect:           true,
			ZoneMethod(zone.Logo, "static"): true,
			MethodGetDPIXY:                  true,
		},
		Effects: table,
		Brightness: map[zone.ID]BrightnessControl{
			zone.Backlight: r.brightnessControl(zone.Backlight),
			zone.Logo:      r.brightnessControl(zone.Logo),
		},
		SetDPI: func(x, y int) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.dpi = append(r.dpi, [2]int{x, y})
			return nil
		},
		GetDPI: func() (int, int, error) {
			return r.liveDPI[0], r.liveDPI[1], nil
		},
		SetPollRate: func(rate int) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.pollRates = append(r.pollRates, rate)
			return nil
		},
		Close: func() error {
			r.closed++
			return nil
		},
	}
}

func (r *rig) options() Options {
	return Options{
		Number: 1,
		HIDID:  "0003:1532:0084.0001",
		Files:  r.files,
		Profile: Profile{
			Name:      "Test Mouse",
			Type:      "mouse",
			VendorID:  0x1532,
			ProductID: 0x0084,
			DPIMax:    1600,
			Image:     "https://example.invalid/mouse.png",
			Images: Images{
				Top:         "https://example.invalid/top.png",
				Side:        "https://example.invalid/side.png",
				Perspective: "https://example.invalid/perspective.png",
			},
		},
		Capabilities: r.capabilities(),
		Store:        r.store,
		Serials:      NewSerialCounter(),
	}
}

func (r *rig) persist(section string, kv map[string]string) {
	for k, v := range kv {
		r.store.Set(section, k, v)
	}
}

// stubSleep disables control-file backoff and counts the sleeps.
func stubSleep(t *testing.T) *int {
	t.Helper()
	n := 0
	orig := sleep
	sleep = func(time.Duration) { n++ }
	t.Cleanup(func() { sleep = orig })
	return &n
}

// collector is an observer that remembers every event it hears.
type collector struct {
	mu     sync.Mutex
	events []event.Event
}

func (c *collector) Notify(e event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) kinds() []event.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []event.Kind
	for _, e := range c.events {
		out = append(out, e.Kind)
	}
	return out
}

type parentCounter struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *parentCounter) NotifyParent(e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *parentCounter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestNew_RequiresOptions(t *testing.T) {
	r := newRig()
	opts := r.options()
	opts.Store = nil
	_, err := New(opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	opts = r.options()
	opts.Files = nil
	_, err = New(opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestNew_Basics(t *testing.T) {
	stubSleep(t)
	r := newRig()

	d, err := New(r.options())
	require.NoError(t, err)

	assert.Equal(t, "PM1234", d.Serial())
	assert.Equal(t, "PM1234", d.StorageName())
	assert.Equal(t, StateActive, d.State())
	assert.Equal(t, []zone.ID{zone.Backlight, zone.Logo}, d.Zones())
	assert.Equal(t, []int{0x1532, 0x0084}, d.VidPid())
	assert.Equal(t, []int{125, 500, 1000}, d.PollRates())
	assert.Equal(t, 500, d.PollRate())

	x, y := d.DPI()
	assert.Equal(t, [2]int{1600, 1600}, [2]int{x, y}, "default dpi is clamped to the model maximum")
	assert.Equal(t, [][2]int{{1600, 1600}}, r.dpi)

	name, err := d.Effect(zone.Backlight)
	require.NoError(t, err)
	assert.Equal(t, zone.DefaultEffect, name)

	_, err = d.Effect(zone.Scroll)
	assert.ErrorIs(t, err, zone.ErrNotPresent)
}

func TestNew_SerialFallback(t *testing.T) {
	sleeps := stubSleep(t)
	counter := NewSerialCounter()

	r1 := newRig()
	r1.files.reads[FileSerial] = nil
	r1.files.queue(FileSerial, "")
	opts := r1.options()
	opts.Serials = counter
	d1, err := New(opts)
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN_15320084_0000", d1.Serial())
	assert.Equal(t, serialAttempts-1, *sleeps, "no backoff after the last attempt")

	r2 := newRig()
	r2.files.reads[FileSerial] = nil
	r2.files.queue(FileSerial, "not-a-serial")
	opts = r2.options()
	opts.Serials = counter
	d2, err := New(opts)
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN_15320084_0001", d2.Serial())
}

func TestNew_SerialRetriesUntilPresent(t *testing.T) {
	sleeps := stubSleep(t)
	r := newRig()
	r.files.reads[FileSerial] = nil
	r.files.queue(FileSerial, "", "", "XY99\n")

	d, err := New(r.options())
	require.NoError(t, err)
	assert.Equal(t, "XY99", d.Serial())
	assert.Equal(t, 2, *sleeps)
}

func TestStorageName(t *testing.T) {
	assert.Equal(t, "DeathAdder35G", StorageName(Profile{ProductID: 0x0016}, "ABC"))
	assert.Equal(t, "Custom", StorageName(Profile{ProductID: 0x0016, StorageName: "Custom"}, "ABC"))
	assert.Equal(t, "ABC", StorageName(Profile{ProductID: 0x0084}, "ABC"))
}

func TestNew_RestoresDPIAndPollRate(t *testing.T) {
	tests := []struct {
		name     string
		stored   map[string]string
		wantDPI  [2]int
		wantRate int
	}{
		{
			name:     "x clamped, poll rate snapped",
			stored:   map[string]string{KeyDPIX: "5000", KeyDPIY: "800", KeyPollRate: "900"},
			wantDPI:  [2]int{1600, 800},
			wantRate: 1000,
		},
		{
			name:     "both axes clamped",
			stored:   map[string]string{KeyDPIX: "5000", KeyDPIY: "5000", KeyPollRate: "500"},
			wantDPI:  [2]int{1600, 1600},
			wantRate: 500,
		},
		{
			name:     "within range",
			stored:   map[string]string{KeyDPIX: "800", KeyDPIY: "400", KeyPollRate: "125"},
			wantDPI:  [2]int{800, 400},
			wantRate: 125,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubSleep(t)
			r := newRig()
			r.persist("PM1234", tt.stored)

			d, err := New(r.options())
			require.NoError(t, err)

			assert.Equal(t, [][2]int{tt.wantDPI}, r.dpi, "device setter sees clamped values")
			x, y := d.DPI()
			assert.Equal(t, tt.wantDPI, [2]int{x, y})
			assert.Equal(t, []int{tt.wantRate}, r.pollRates)
			assert.Equal(t, tt.wantRate, d.PollRate())
		})
	}
}

func TestNew_AvailableDPIDefault(t *testing.T) {
	stubSleep(t)
	r := newRig()
	opts := r.options()
	opts.Capabilities.Methods[MethodAvailableDPI] = true
	opts.Profile.DPIMax = 0

	d, err := New(opts)
	require.NoError(t, err)
	x, y := d.DPI()
	assert.Equal(t, [2]int{1800, 0}, [2]int{x, y})
}

func TestNew_RestoresEffectsTwiceWithDualBootQuirk(t *testing.T) {
	stubSleep(t)
	r := newRig()
	r.persist("PM1234", map[string]string{
		zone.Backlight.Key(zone.FieldEffect): "static",
		zone.Backlight.Key(zone.FieldColors): "10 20 30 0 0 0 0 0 0",
		zone.Logo.Key(zone.FieldEffect):      "static",
		zone.Logo.Key(zone.FieldColors):      "1 2 3 4 5 6 7 8 9",
	})

	opts := r.options()
	opts.Startup = Startup{RestorePersistence: true, DualBootQuirk: true}
	_, err := New(opts)
	require.NoError(t, err)

	assert.Equal(t, 2, r.callCount("setStatic 10 20 30"))
	assert.Equal(t, 2, r.callCount("setLogoStatic 1 2 3"))
	assert.Zero(t, r.store.changed, "restoring unchanged state does not dirty the store")
}

func TestNew_SkipsRestoreWhenDisabled(t *testing.T) {
	stubSleep(t)
	r := newRig()
	r.persist("PM1234", map[string]string{zone.Backlight.Key(zone.FieldEffect): "static"})

	_, err := New(r.options())
	require.NoError(t, err)
	assert.Empty(t, r.calls)
}

func TestNew_CorrectsUnsupportedEffectOnce(t *testing.T) {
	stubSleep(t)
	r := newRig()
	r.persist("PM1234", map[string]string{
		zone.Backlight.Key(zone.FieldEffect): "breathDual",
	})

	opts := r.options()
	opts.Startup = Startup{RestorePersistence: true, DualBootQuirk: true}
	d, err := New(opts)
	require.NoError(t, err)

	assert.Equal(t, 2, r.callCount("setSpectrum"))
	assert.Equal(t, 1, r.store.changed)

	got, err := d.Effect(zone.Backlight)
	require.NoError(t, err)
	assert.Equal(t, effect.Spectrum, got)

	snap := newFakeStore()
	d.Snapshot(snap)
	v, _ := snap.Get("PM1234", zone.Backlight.Key(zone.FieldEffect))
	assert.Equal(t, effect.Spectrum, v)
}

func TestNew_KeepsEffectWhenSpectrumMissing(t *testing.T) {
	stubSleep(t)
	r := newRig()
	r.persist("PM1234", map[string]string{
		zone.Logo.Key(zone.FieldEffect): "mystery",
	})

	opts := r.options()
	opts.Startup = Startup{RestorePersistence: true}
	table := effect.NewTable()
	table.Register(zone.Backlight, effect.Spectrum, effect.Setter0(func() error {
		return r.record("setSpectrum")
	}))
	table.Register(zone.Logo, effect.Static, effect.Setter3(func(red, green, blue uint8) error {
		return r.record("setLogoStatic %d %d %d", red, green, blue)
	}))
	opts.Capabilities.Effects = table

	d, err := New(opts)
	require.NoError(t, err)

	got, err := d.Effect(zone.Logo)
	require.NoError(t, err)
	assert.Equal(t, "mystery", got)
	assert.Zero(t, r.store.changed)
}

func TestNew_DriverMode(t *testing.T) {
	stubSleep(t)
	r := newRig()
	opts := r.options()
	opts.Profile.DriverMode = true

	_, err := New(opts)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{ModeDriver, 0}}, r.files.written(FileDeviceMode))
}

func TestApplyEffect(t *testing.T) {
	stubSleep(t)
	r := newRig()
	d, err := New(r.options())
	require.NoError(t, err)

	obs := &collector{}
	d.Register(obs)

	require.NoError(t, d.ApplyEffect(zone.Backlight, effect.Static, 10, 20, 30))
	assert.Equal(t, 1, r.callCount("setStatic 10 20 30"))
	assert.Equal(t, 2, r.store.changed, "effect and colors both changed")

	colors, err := d.Colors(zone.Backlight)
	require.NoError(t, err)
	assert.Equal(t, []uint8{10, 20, 30}, colors[:3])

	require.Len(t, obs.events, 1)
	e := obs.events[0]
	assert.Equal(t, event.KindEffect, e.Kind)
	assert.Equal(t, "PM1234", e.Source)
	assert.Equal(t, []int{10, 20, 30}, e.Args)

	require.NoError(t, d.ApplyEffect(zone.Backlight, effect.Wave, 2))
	dir, err := d.WaveDir(zone.Backlight)
	require.NoError(t, err)
	assert.Equal(t, 2, dir)
}

func TestApplyEffect_Errors(t *testing.T) {
	stubSleep(t)
	r := newRig()
	d, err := New(r.options())
	require.NoError(t, err)

	tests := []struct {
		name   string
		zone   zone.ID
		effect string
		args   []int
		want   error
	}{
		{"unknown zone", zone.ID("underglow"), effect.Static, []int{1, 2, 3}, zone.ErrUnknownZone},
		{"absent zone", zone.Scroll, effect.Static, []int{1, 2, 3}, zone.ErrNotPresent},
		{"no setter", zone.Logo, effect.Wave, []int{1}, effect.ErrSetterNotFound},
		{"wrong arity", zone.Backlight, effect.Static, []int{1, 2}, effect.ErrArgumentCount},
		{"channel range", zone.Backlight, effect.Static, []int{1, 2, 300}, effect.ErrArgumentRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.ApplyEffect(tt.zone, tt.effect, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, r.store.changed)
}

func TestDevice_ObservesAnotherDevice(t *testing.T) {
	stubSleep(t)
	src, err := New(newRig().options())
	require.NoError(t, err)
	relay, err := New(newRig().options())
	require.NoError(t, err)

	obs := &collector{}
	relay.Register(obs)
	src.Register(relay)

	require.NoError(t, src.ApplyEffect(zone.Logo, effect.Static, 1, 2, 3))

	require.Len(t, obs.events, 1)
	assert.Equal(t, event.KindEffect, obs.events[0].Kind)
	assert.Equal(t, effect.Static, obs.events[0].Effect)
	assert.Equal(t, src.Serial(), obs.events[0].Source)

	src.Remove(relay)
	require.NoError(t, src.ApplyEffect(zone.Logo, effect.Spectrum))
	assert.Len(t, obs.events, 1)
}

func TestObserverMayCallBack(t *testing.T) {
	stubSleep(t)
	r := newRig()
	d, err := New(r.options())
	require.NoError(t, err)

	var seen string
	d.Register(event.Func(func(e event.Event) {
		seen, _ = d.Effect(e.Zone)
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.ApplyEffect(zone.Logo, effect.Static, 1, 2, 3)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("observer deadlocked on the device lock")
	}
	assert.Equal(t, effect.Static, seen)
}

func TestEffectSync(t *testing.T) {
	stubSleep(t)
	r := newRig()
	d, err := New(r.options())
	require.NoError(t, err)

	parent := &parentCounter{}
	d.SetParent(parent)
	obs := &collector{}
	d.Register(obs)

	require.NoError(t, d.ApplyEffect(zone.Backlight, effect.Static, 1, 1, 1))
	assert.Zero(t, parent.count(), "sync is off by default")

	d.SetEffectSync(true)
	assert.True(t, d.EffectSync())
	require.NoError(t, d.ApplyEffect(zone.Backlight, effect.Static, 2, 2, 2))
	assert.Equal(t, 1, parent.count())

	require.NoError(t, d.ApplySyncedEffect(zone.Backlight, effect.Static, 3, 3, 3))
	assert.Equal(t, 1, parent.count(), "synced effects are not propagated again")
	assert.Len(t, obs.events, 3)
}

func TestSetBrightness(t *testing.T) {
	stubSleep(t)
	r := newRig()
	d, err := New(r.options())
	require.NoError(t, err)

	require.NoError(t, d.SetBrightness(zone.Logo, 40))
	got, err := d.Brightness(zone.Logo)
	require.NoError(t, err)
	assert.Equal(t, 40.0, got)
	assert.Equal(t, []float64{75, 40}, r.brightness[zone.Logo])

	assert.ErrorIs(t, d.SetBrightness(zone.Logo, 101), zone.ErrInvalidValue)
	assert.ErrorIs(t, d.SetActive(zone.Logo, false), ErrNotSupported)
}

func TestSuspendResume(t *testing.T) {
	stubSleep(t)
	r := newRig()
	r.persist("PM1234", map[string]string{zone.Backlight.Key(zone.FieldBrightness): "60"})
	d, err := New(r.options())
	require.NoError(t, err)

	obs := &collector{}
	d.Register(obs)
	changed := r.store.changed

	require.NoError(t, d.Suspend())
	assert.Equal(t, StateSuspended, d.State())
	assert.Equal(t, []float64{60, 0}, r.brightness[zone.Backlight])

	level, err := d.Brightness(zone.Backlight)
	require.NoError(t, err)
	assert.Equal(t, 60.0, level, "suspend does not touch remembered brightness")
	assert.ErrorIs(t, d.ApplyEffect(zone.Backlight, effect.Spectrum), ErrSuspended)

	require.NoError(t, d.Resume())
	assert.Equal(t, StateActive, d.State())
	assert.Equal(t, []float64{60, 0, 60}, r.brightness[zone.Backlight])

	assert.Equal(t, changed, r.store.changed)
	assert.Empty(t, obs.events, "suspend and resume notify no observers")
}

func TestResume_DriverMode(t *testing.T) {
	stubSleep(t)
	r := newRig()
	opts := r.options()
	opts.Profile.DriverMode = true
	d, err := New(opts)
	require.NoError(t, err)

	require.NoError(t, d.Suspend())
	require.NoError(t, d.Resume())
	assert.Len(t, r.files.written(FileDeviceMode), 2)
}

func TestClose(t *testing.T) {
	stubSleep(t)
	r := newRig()
	opts := r.options()
	opts.Profile.DriverMode = true
	d, err := New(opts)
	require.NoError(t, err)

	obs := &collector{}
	d.Register(obs)
	r.liveDPI = [2]int{1200, 1000}
	r.files.missing[FileDeviceMode] = true
	changed := r.store.changed

	require.NoError(t, d.Close(), "missing device_mode is tolerated")
	assert.Equal(t, StateClosed, d.State())
	assert.Equal(t, 1, r.closed)

	x, y := d.DPI()
	assert.Equal(t, [2]int{1200, 1000}, [2]int{x, y})
	assert.Equal(t, changed+1, r.store.changed)

	require.NoError(t, d.Close())
	assert.Equal(t, 1, r.closed, "second close is a no-op")

	assert.Equal(t, []event.Kind{event.KindState}, obs.kinds())
	assert.Equal(t, StateClosed.String(), obs.events[0].State)

	assert.ErrorIs(t, d.ApplyEffect(zone.Backlight, effect.Spectrum), ErrClosed)
	assert.ErrorIs(t, d.Suspend(), ErrClosed)
}

func TestDeviceMode(t *testing.T) {
	sleeps := stubSleep(t)
	r := newRig()
	d, err := New(r.options())
	require.NoError(t, err)

	r.files.queue(FileDeviceMode, "", "", "\x03\x00")
	mode, err := d.DeviceMode()
	require.NoError(t, err)
	assert.Equal(t, "3:0", mode)
	assert.Equal(t, 2, *sleeps)

	r.files.reads[FileDeviceMode] = nil
	r.files.queue(FileDeviceMode, "")
	_, err = d.DeviceMode()
	assert.ErrorIs(t, err, ErrInvalidDeviceMode)
	assert.Equal(t, 2+deviceModeRetries, *sleeps)
}

func TestSetDeviceMode_Clamps(t *testing.T) {
	stubSleep(t)
	r := newRig()
	d, err := New(r.options())
	require.NoError(t, err)

	require.NoError(t, d.SetDeviceMode(5, 7))
	require.NoError(t, d.SetDeviceMode(3, 1))
	assert.Equal(t, [][]byte{{0, 0}, {3, 0}}, r.files.written(FileDeviceMode))
}

func TestSetDPIAndPollRate(t *testing.T) {
	stubSleep(t)
	r := newRig()
	d, err := New(r.options())
	require.NoError(t, err)

	require.NoError(t, d.SetDPI(800, 400))
	x, y := d.DPI()
	assert.Equal(t, [2]int{800, 400}, [2]int{x, y})
	assert.ErrorIs(t, d.SetDPI(3200, 400), ErrInvalidDPI)

	require.NoError(t, d.SetPollRate(125))
	assert.Equal(t, 125, d.PollRate())
	assert.ErrorIs(t, d.SetPollRate(250), ErrInvalidPollRate)
	assert.Equal(t, 2, r.store.changed)

	snap := newFakeStore()
	d.Snapshot(snap)
	assert.Equal(t, map[string]string{
		KeyDPIX:     "800",
		KeyDPIY:     "400",
		KeyPollRate: "125",
	}, map[string]string{
		KeyDPIX:     snap.sections["PM1234"][KeyDPIX],
		KeyDPIY:     snap.sections["PM1234"][KeyDPIY],
		KeyPollRate: snap.sections["PM1234"][KeyPollRate],
	})
}

func TestSetDPI_NotSupported(t *testing.T) {
	stubSleep(t)
	r := newRig()
	opts := r.options()
	opts.Capabilities.SetDPI = nil
	opts.Capabilities.SetPollRate = nil
	d, err := New(opts)
	require.NoError(t, err)

	assert.ErrorIs(t, d.SetDPI(800, 800), ErrNotSupported)
	assert.ErrorIs(t, d.SetPollRate(500), ErrNotSupported)
	assert.Empty(t, d.PollRates())
}

func TestCustomFrame(t *testing.T) {
	stubSleep(t)
	r := newRig()
	d, err := New(r.options())
	require.NoError(t, err)

	require.NoError(t, d.SetCustomEffect())
	assert.Equal(t, [][]byte{[]byte("1")}, r.files.written(FileCustomEffect))

	row := []byte{1, 255, 0, 0, 0, 255, 0}
	require.NoError(t, d.SetKeyRow(row))
	assert.Equal(t, [][]byte{row}, r.files.written(FileCustomFrame))

	assert.ErrorIs(t, d.SetKeyRow([]byte{1, 2}), ErrInvalidPayload)
}

func TestInfo(t *testing.T) {
	stubSleep(t)
	r := newRig()
	r.files.queue(FileFirmwareVersion, "v1.2\n")
	d, err := New(r.options())
	require.NoError(t, err)

	fw, err := d.FirmwareVersion()
	require.NoError(t, err)
	assert.Equal(t, "v1.2", fw)

	assert.Equal(t, "https://example.invalid/mouse.png", d.DeviceImage())
	assert.JSONEq(t, `{
		"top_img": "https://example.invalid/top.png",
		"side_img": "https://example.invalid/side.png",
		"perspective_img": "https://example.invalid/perspective.png"
	}`, d.ImageJSON())
	assert.Equal(t, []string{effect.Spectrum, effect.Static, effect.Wave}, d.Effects(zone.Backlight))
}

func TestBatteryLowEvent(t *testing.T) {
	stubSleep(t)
	r := newRig()
	opts := r.options()
	opts.Capabilities.BatteryLevel = func() (float64, error) { return 10, nil }
	d, err := New(opts)
	require.NoError(t, err)
	require.NotNil(t, d.Battery())

	obs := &collector{}
	d.Register(obs)
	d.onBatteryLow(battery.Reading{Level: 10, Low: true})
	assert.Equal(t, []event.Kind{event.KindBattery}, obs.kinds())
	assert.Equal(t, 10.0, obs.events[0].Value)
}

func TestMatch(t *testing.T) {
	p := Profile{VendorID: 0x1532, ProductID: 0x0084}
	bound := newFakeFiles()
	bound.exists[FileDeviceType] = true

	assert.True(t, Match(p, "0003:1532:0084.0007", bound))
	assert.False(t, Match(p, "0003:1532:0085.0007", bound))
	assert.False(t, Match(p, "0003:1532:0084", bound))
	assert.False(t, Match(p, "0003:1532:0084.0007", newFakeFiles()), "unbound interface")
}
