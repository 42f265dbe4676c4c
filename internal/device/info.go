package device

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerrad567/lumen-core/internal/battery"
	"github.com/nerrad567/lumen-core/internal/event"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// Serial returns the hardware serial, or the placeholder assigned when
// the hardware had none.
func (d *Device) Serial() string { return d.serial }

// StorageName returns the persistence section name.
func (d *Device) StorageName() string { return d.storageName }

// Number returns the daemon-wide ordinal.
func (d *Device) Number() int { return d.number }

// HIDID returns the bus identifier.
func (d *Device) HIDID() string { return d.hidID }

// Name returns the model name.
func (d *Device) Name() string { return d.profile.Name }

// Type returns the model's device type, e.g. "mouse".
func (d *Device) Type() string { return d.profile.Type }

// Profile returns the static model description.
func (d *Device) Profile() Profile { return d.profile }

// DriverVersion returns the kernel driver version.
func (d *Device) DriverVersion() string { return d.driverVersion }

// HasDedicatedMacroKeys reports whether the model has macro keys.
func (d *Device) HasDedicatedMacroKeys() bool { return d.profile.DedicatedMacroKeys }

// MatrixDims returns the lighting matrix rows and columns.
func (d *Device) MatrixDims() [2]int { return d.profile.MatrixDims }

// EventFiles returns the input event nodes belonging to the device.
func (d *Device) EventFiles() []string {
	return append([]string(nil), d.eventFiles...)
}

// VidPid returns the vendor and product IDs.
func (d *Device) VidPid() []int {
	return []int{int(d.profile.VendorID), int(d.profile.ProductID)}
}

// State returns the lifecycle state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// FirmwareVersion returns the firmware version reported by the driver.
func (d *Device) FirmwareVersion() (string, error) {
	if d.caps.Firmware != nil {
		return d.caps.Firmware()
	}
	raw, err := d.files.Read(FileFirmwareVersion)
	if err != nil {
		return "", fmt.Errorf("reading firmware version: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// DeviceImage returns the main product image URL.
func (d *Device) DeviceImage() string {
	return d.profile.Image
}

// ImageJSON returns the product images as a JSON object with top_img,
// side_img and perspective_img keys.
func (d *Device) ImageJSON() string {
	b, err := json.Marshal(d.profile.Images)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Zones returns the present zones in canonical order.
func (d *Device) Zones() []zone.ID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.zones.Present()
}

// Effects returns the effect names the zone supports.
func (d *Device) Effects(z zone.ID) []string {
	return d.caps.Effects.Effects(z)
}

// ZoneState returns a copy of the zone's state.
//
// Returns:
//   - zone.State: The remembered state
//   - error: zone.ErrUnknownZone or zone.ErrNotPresent
func (d *Device) ZoneState(z zone.ID) (zone.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.presentZone(z); err != nil {
		return zone.State{}, err
	}
	return d.zones.State(z)
}

// Effect returns the zone's current effect.
func (d *Device) Effect(z zone.ID) (string, error) {
	st, err := d.ZoneState(z)
	return st.Effect, err
}

// Colors returns the zone's current palette.
func (d *Device) Colors(z zone.ID) (zone.Palette, error) {
	st, err := d.ZoneState(z)
	return st.Colors, err
}

// Speed returns the zone's current effect speed.
func (d *Device) Speed(z zone.ID) (int, error) {
	st, err := d.ZoneState(z)
	return st.Speed, err
}

// WaveDir returns the zone's current wave direction.
func (d *Device) WaveDir(z zone.ID) (int, error) {
	st, err := d.ZoneState(z)
	return st.WaveDir, err
}

// Brightness returns the zone's remembered brightness.
func (d *Device) Brightness(z zone.ID) (float64, error) {
	st, err := d.ZoneState(z)
	return st.Brightness, err
}

// Active returns the zone's remembered on/off flag.
func (d *Device) Active(z zone.ID) (bool, error) {
	st, err := d.ZoneState(z)
	return st.Active, err
}

// DPI returns the remembered DPI.
func (d *Device) DPI() (x, y int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dpi[0], d.dpi[1]
}

// SupportsDPI reports whether the hardware can set its DPI.
func (d *Device) SupportsDPI() bool { return d.caps.canSetDPI() }

// PollRate returns the remembered poll rate.
func (d *Device) PollRate() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pollRate
}

// PollRates returns the poll rates the device accepts.
func (d *Device) PollRates() []int {
	return append([]int(nil), d.pollRates...)
}

// Battery returns the battery poller, or nil for wired devices.
func (d *Device) Battery() *battery.Manager { return d.battery }

// Register adds an observer.
func (d *Device) Register(s event.Subscriber) { d.bus.Register(s) }

// Remove removes an observer.
func (d *Device) Remove(s event.Subscriber) { d.bus.Remove(s) }

// Notify lets a device observe another publisher: e is re-broadcast to
// this device's observers. It never reaches the effect-sync parent.
func (d *Device) Notify(e event.Event) { d.bus.Notify(e) }

var _ event.Subscriber = (*Device)(nil)

// SetParent attaches the device to an aggregator that receives its
// effect events while sync is enabled.
func (d *Device) SetParent(p event.Parent) { d.bus.SetParent(p) }
