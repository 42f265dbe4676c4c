package device

import (
	"fmt"

	"github.com/nerrad567/lumen-core/internal/effect"
	"github.com/nerrad567/lumen-core/internal/event"
	"github.com/nerrad567/lumen-core/internal/zone"
)

func (d *Device) setActive(z zone.ID, on bool) error {
	fn, ok := d.caps.Active[z]
	if !ok || fn == nil {
		return fmt.Errorf("%w: %s", ErrNotSupported, ZoneMethod(z, "active"))
	}
	if err := fn(on); err != nil {
		return err
	}
	d.setPersistence(z, zone.FieldActive, on)
	return nil
}

func (d *Device) setBrightness(z zone.ID, level float64) error {
	ctl, ok := d.caps.Brightness[z]
	if !ok || ctl.Set == nil {
		return fmt.Errorf("%w: brightness on %s", ErrNotSupported, z)
	}
	if err := ctl.Set(level); err != nil {
		return err
	}
	d.setPersistence(z, zone.FieldBrightness, level)
	d.emit(event.NewBrightness(d.serial, z, level))
	return nil
}

func (d *Device) presentZone(z zone.ID) error {
	if !z.Valid() {
		return fmt.Errorf("%w: %q", zone.ErrUnknownZone, z)
	}
	if !d.zones.IsPresent(z) {
		return fmt.Errorf("%w: %s", zone.ErrNotPresent, z)
	}
	return nil
}

func (d *Device) resolveEffect(z zone.ID, name string, args []int) (effect.Step, error) {
	if err := d.presentZone(z); err != nil {
		return effect.Step{}, err
	}
	method := effect.MethodName(z, name)
	setter, ok := d.caps.Effects.Lookup(z, name)
	if !ok {
		return effect.Step{}, fmt.Errorf("%w: %s", effect.ErrSetterNotFound, method)
	}
	if len(args) != setter.Arity() {
		return effect.Step{}, fmt.Errorf("%w: %s takes %d, got %d",
			effect.ErrArgumentCount, method, setter.Arity(), len(args))
	}
	return effect.Step{Zone: z, Effect: name, Method: method, Setter: setter, Args: args}, nil
}

// ApplyEffect applies an effect to a zone, persists the resulting zone
// state and notifies observers.
//
// Parameters:
//   - z: Target zone, which must be present
//   - name: Effect name, e.g. "static" or "starlightRandom"
//   - args: Setter arguments; their count must match the setter's arity
//
// Returns:
//   - error: ErrClosed, ErrSuspended, zone.ErrNotPresent,
//     effect.ErrSetterNotFound, effect.ErrArgumentCount or a write error
func (d *Device) ApplyEffect(z zone.ID, name string, args ...int) error {
	return d.do(func() error {
		if err := d.checkUsable(); err != nil {
			return err
		}
		step, err := d.resolveEffect(z, name, args)
		if err != nil {
			return err
		}
		return d.applyStep(step, false)
	})
}

// ApplySyncedEffect applies an effect received from another device.
// Observers are notified but the event is not propagated upward again.
func (d *Device) ApplySyncedEffect(z zone.ID, name string, args ...int) error {
	return d.do(func() error {
		if err := d.checkUsable(); err != nil {
			return err
		}
		step, err := d.resolveEffect(z, name, args)
		if err != nil {
			return err
		}
		return d.applyStep(step, true)
	})
}

// SetBrightness sets a zone's brightness and persists it.
func (d *Device) SetBrightness(z zone.ID, level float64) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("%w: brightness %v outside 0..100", zone.ErrInvalidValue, level)
	}
	return d.do(func() error {
		if err := d.checkUsable(); err != nil {
			return err
		}
		if err := d.presentZone(z); err != nil {
			return err
		}
		return d.setBrightness(z, level)
	})
}

// SetActive turns a zone on or off and persists the flag.
func (d *Device) SetActive(z zone.ID, on bool) error {
	return d.do(func() error {
		if err := d.checkUsable(); err != nil {
			return err
		}
		if err := d.presentZone(z); err != nil {
			return err
		}
		return d.setActive(z, on)
	})
}

// RestoreEffect re-applies the stored effect of every present zone.
// The error joins the failures of individual zones.
func (d *Device) RestoreEffect() error {
	return d.do(func() error {
		if err := d.checkUsable(); err != nil {
			return err
		}
		return d.restoreEffects().Err()
	})
}

// SetDPI sets and remembers the sensor DPI.
func (d *Device) SetDPI(x, y int) error {
	return d.do(func() error {
		if err := d.checkUsable(); err != nil {
			return err
		}
		if !d.caps.canSetDPI() {
			return fmt.Errorf("%w: %s", ErrNotSupported, MethodSetDPIXY)
		}
		limit := d.profile.DPIMax
		if x < 0 || y < 0 || (limit > 0 && (x > limit || y > limit)) {
			return fmt.Errorf("%w: (%d, %d) outside 0..%d", ErrInvalidDPI, x, y, limit)
		}
		if err := d.caps.SetDPI(x, y); err != nil {
			return err
		}
		if d.dpi != [2]int{x, y} {
			d.dpi = [2]int{x, y}
			d.store.MarkChanged()
		}
		return nil
	})
}

// SetPollRate sets and remembers the poll rate.
func (d *Device) SetPollRate(rate int) error {
	return d.do(func() error {
		if err := d.checkUsable(); err != nil {
			return err
		}
		if !d.caps.canSetPollRate() {
			return fmt.Errorf("%w: %s", ErrNotSupported, MethodSetPollRate)
		}
		if !containsInt(d.pollRates, rate) {
			return fmt.Errorf("%w: %d not in %v", ErrInvalidPollRate, rate, d.pollRates)
		}
		if err := d.caps.SetPollRate(rate); err != nil {
			return err
		}
		if d.pollRate != rate {
			d.pollRate = rate
			d.store.MarkChanged()
		}
		return nil
	})
}

// SetEffectSync turns propagation of this device's effects to the
// parent aggregator on or off.
func (d *Device) SetEffectSync(on bool) {
	d.bus.SetPropagate(on)
}

// EffectSync reports whether effect propagation is on.
func (d *Device) EffectSync() bool {
	return d.bus.Propagate()
}
