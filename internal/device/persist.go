package device

import (
	"strconv"
	"strings"

	"github.com/nerrad567/lumen-core/internal/persistence"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// Persistence keys that are not zone fields.
const (
	KeyDPIX     = "dpi_x"
	KeyDPIY     = "dpi_y"
	KeyPollRate = "poll_rate"
)

// loadPersistence reads DPI, poll rate and zone state from the device's
// section. Anything missing or unparseable keeps its default.
func (d *Device) loadPersistence() {
	section := d.storageName
	if !d.store.HasSection(section) {
		d.logger.Debug("no persisted state", "serial", d.serial, "section", section)
		return
	}

	if d.caps.canSetDPI() {
		x, okX := d.storedInt(KeyDPIX)
		y, okY := d.storedInt(KeyDPIY)
		if okX && okY {
			d.dpi = [2]int{x, y}
		}
	}
	if d.caps.canSetPollRate() {
		if rate, ok := d.storedInt(KeyPollRate); ok {
			d.pollRate = rate
		}
	}

	if n := d.zones.Load(d.store, section); n > 0 {
		d.logger.Warn("persisted zone fields reset to defaults", "serial", d.serial, "count", n)
	}
}

func (d *Device) storedInt(key string) (int, bool) {
	raw, ok := d.store.Get(d.storageName, key)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		d.logger.Warn("persisted value invalid", "serial", d.serial, "key", key, "value", raw)
		return 0, false
	}
	return v, true
}

// setPersistence records one zone field change. It is a no-op while
// persistence is disabled, so the in-memory state keeps the value that
// was there before the suspend or resume window.
func (d *Device) setPersistence(z zone.ID, field string, value any) {
	if d.persistDisabled {
		return
	}
	d.logger.Debug("set persistence", "serial", d.serial, "zone", z, "field", field, "value", value)

	changed, err := d.zones.Set(z, field, value)
	if err != nil {
		d.logger.Warn("cannot persist zone field", "serial", d.serial, "zone", z, "field", field, "error", err)
		return
	}
	if changed {
		d.store.MarkChanged()
	}
}

// Snapshot writes the device's current state into w under its storage
// name.
func (d *Device) Snapshot(w persistence.Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.zones.Save(w, d.storageName)
	if d.caps.canSetDPI() {
		w.Set(d.storageName, KeyDPIX, strconv.Itoa(d.dpi[0]))
		w.Set(d.storageName, KeyDPIY, strconv.Itoa(d.dpi[1]))
	}
	if d.caps.canSetPollRate() {
		w.Set(d.storageName, KeyPollRate, strconv.Itoa(d.pollRate))
	}
}
