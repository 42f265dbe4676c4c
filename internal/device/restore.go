package device

import (
	"github.com/nerrad567/lumen-core/internal/effect"
	"github.com/nerrad567/lumen-core/internal/event"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// restoreDPIPollRate pushes the stored DPI and poll rate to the
// hardware, clamping DPI to the model maximum and snapping the poll rate
// to the nearest supported value.
func (d *Device) restoreDPIPollRate() {
	if d.caps.canSetDPI() {
		if limit := d.profile.DPIMax; limit > 0 {
			for i, axis := range []string{"x", "y"} {
				if d.dpi[i] > limit {
					d.logger.Warn("constraining stored dpi to maximum",
						"serial", d.serial, "axis", axis, "stored", d.dpi[i], "max", limit)
					d.dpi[i] = limit
				}
			}
		}
		if err := d.caps.SetDPI(d.dpi[0], d.dpi[1]); err != nil {
			d.logger.Error("cannot restore dpi", "serial", d.serial, "error", err)
		}
	}

	if d.caps.canSetPollRate() {
		if !containsInt(d.pollRates, d.pollRate) {
			nearest := nearestInt(d.pollRates, d.pollRate)
			d.logger.Warn("constraining stored poll rate",
				"serial", d.serial, "stored", d.pollRate, "restored", nearest)
			d.pollRate = nearest
		}
		if err := d.caps.SetPollRate(d.pollRate); err != nil {
			d.logger.Error("cannot restore poll rate", "serial", d.serial, "error", err)
		}
	}
}

// restoreBrightness re-applies every present zone's active flag and
// brightness.
func (d *Device) restoreBrightness() {
	for _, z := range d.zones.Present() {
		st, _ := d.zones.State(z) //nolint:errcheck // Present zones always exist
		d.applyBrightness(z, st.Active, st.Brightness)
	}
}

// disableBrightness turns every present zone off.
func (d *Device) disableBrightness() {
	for _, z := range d.zones.Present() {
		d.applyBrightness(z, false, 0)
	}
}

func (d *Device) applyBrightness(z zone.ID, active bool, level float64) {
	if _, ok := d.caps.Active[z]; ok {
		if err := d.setActive(z, active); err != nil {
			d.logger.Error("cannot set zone active", "serial", d.serial, "zone", z, "error", err)
		}
	}
	if _, ok := d.caps.Brightness[z]; ok {
		if err := d.setBrightness(z, level); err != nil {
			d.logger.Error("cannot set zone brightness", "serial", d.serial, "zone", z, "error", err)
		}
	}
}

// restoreEffects re-applies every present zone's stored effect.
func (d *Device) restoreEffects() effect.Report {
	report := d.dispatcher.Restore(d.zones, executor{d})
	d.logger.Debug("effects restored",
		"serial", d.serial,
		"applied", report.Count(effect.Applied),
		"corrected", report.Count(effect.Corrected),
		"skipped", report.Count(effect.Skipped),
		"failed", report.Count(effect.Failed))
	return report
}

// executor carries out restore steps on the device. The caller holds
// the device lock.
type executor struct {
	d *Device
}

func (x executor) Correct(z zone.ID, name string) {
	x.d.setPersistence(z, zone.FieldEffect, name)
}

func (x executor) Apply(step effect.Step) error {
	return x.d.applyStep(step, false)
}

// applyStep calls the setter, records the new zone state and queues an
// effect event. Synced steps notify observers but never the parent.
func (d *Device) applyStep(step effect.Step, synced bool) error {
	st, err := d.zones.State(step.Zone)
	if err != nil {
		return err
	}
	updates, err := effect.Updates(step.Effect, step.Args, st.Colors)
	if err != nil {
		return err
	}
	if err := step.Setter.Call(step.Args...); err != nil {
		return err
	}
	for _, u := range updates {
		d.setPersistence(step.Zone, u.Field, u.Value)
	}

	e := event.NewEffect(d.serial, step.Zone, step.Effect, step.Args...)
	if synced {
		d.emitLocal(e)
	} else {
		d.emit(e)
	}
	return nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// nearestInt returns the element of list closest to v; ties go to the
// earlier element. An empty list returns v.
func nearestInt(list []int, v int) int {
	if len(list) == 0 {
		return v
	}
	best := list[0]
	for _, x := range list[1:] {
		if abs(x-v) < abs(best-v) {
			best = x
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
