package device

import (
	"errors"
	"io/fs"

	"github.com/nerrad567/lumen-core/internal/event"
)

// Suspend turns every zone off for a host suspend or screen lock.
// Neither the persisted state nor observers see the zones going dark,
// so Resume brings back what was there before.
func (d *Device) Suspend() error {
	return d.do(func() error {
		switch d.state {
		case StateClosed:
			return ErrClosed
		case StateSuspended:
			return nil
		}
		d.logger.Info("suspending device", "serial", d.serial)

		var hookErr error
		d.withSideEffectsDisabled(func() {
			d.disableBrightness()
			if d.caps.Suspend != nil {
				hookErr = d.caps.Suspend()
			}
		})
		if hookErr != nil {
			d.logger.Warn("suspend hook failed", "serial", d.serial, "error", hookErr)
		}

		d.state = StateSuspended
		return nil
	})
}

// Resume re-enters driver mode (when the model uses it) and restores
// the remembered brightness of every zone. Like Suspend it notifies no
// observers.
func (d *Device) Resume() error {
	return d.do(func() error {
		if d.state == StateClosed {
			return ErrClosed
		}
		d.logger.Info("resuming device", "serial", d.serial)

		var hookErr error
		d.withSideEffectsDisabled(func() {
			if d.profile.DriverMode {
				if err := d.setDeviceMode(ModeDriver, 0); err != nil {
					d.logger.Warn("cannot re-enter driver mode", "serial", d.serial, "error", err)
				}
			}
			d.restoreBrightness()
			if d.caps.Resume != nil {
				hookErr = d.caps.Resume()
			}
		})
		if hookErr != nil {
			d.logger.Warn("resume hook failed", "serial", d.serial, "error", hookErr)
		}

		d.state = StateActive
		return nil
	})
}

// Close releases the device. It reads back the live DPI so changes made
// with on-device buttons are persisted, returns driver-mode models to
// normal mode and runs the close hook. Close is idempotent, and a
// control directory that has already disappeared is not an error.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.state == StateClosed {
		d.mu.Unlock()
		return nil
	}

	if d.caps.Has(MethodGetDPIXY) && d.caps.GetDPI != nil {
		if x, y, err := d.caps.GetDPI(); err != nil {
			d.logger.Debug("cannot read back dpi", "serial", d.serial, "error", err)
		} else if d.dpi != [2]int{x, y} {
			d.dpi = [2]int{x, y}
			d.store.MarkChanged()
		}
	}

	var errs []error
	if d.profile.DriverMode {
		if err := d.setDeviceMode(ModeNormal, 0); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if d.caps.Close != nil {
		if err := d.caps.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	d.state = StateClosed
	d.emit(event.NewState(d.serial, StateClosed.String()))
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	d.deliver(pending)
	d.bus.Clear()
	if d.battery != nil {
		d.battery.Close()
	}

	d.logger.Info("device closed", "serial", d.serial)
	return errors.Join(errs...)
}
