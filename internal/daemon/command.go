package daemon

import (
	"fmt"

	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// Command actions.
const (
	ActionEffect       = "effect"
	ActionBrightness   = "brightness"
	ActionActive       = "active"
	ActionDPI          = "dpi"
	ActionPollRate     = "poll_rate"
	ActionRestore      = "restore"
	ActionEffectSync   = "effect_sync"
	ActionDeviceMode   = "device_mode"
	ActionCustomEffect = "custom_effect"
	ActionKeyRow       = "key_row"
	ActionSuspend      = "suspend"
	ActionResume       = "resume"
)

// Command is one instruction for a device, as received over MQTT or HTTP.
// An empty Zone means the backlight.
type Command struct {
	Action string  `json:"action" cbor:"1,keyasint"`
	Zone   string  `json:"zone,omitempty" cbor:"2,keyasint,omitempty"`
	Effect string  `json:"effect,omitempty" cbor:"3,keyasint,omitempty"`
	Args   []int   `json:"args,omitempty" cbor:"4,keyasint,omitempty"`
	Value  float64 `json:"value,omitempty" cbor:"5,keyasint,omitempty"`
	On     *bool   `json:"on,omitempty" cbor:"6,keyasint,omitempty"`
	DPI    []int   `json:"dpi,omitempty" cbor:"7,keyasint,omitempty"`
	Rate   int     `json:"rate,omitempty" cbor:"8,keyasint,omitempty"`
	Mode   []int   `json:"mode,omitempty" cbor:"9,keyasint,omitempty"`
	Row    []byte  `json:"row,omitempty" cbor:"10,keyasint,omitempty"`
}

func (c Command) zone() (zone.ID, error) {
	if c.Zone == "" {
		return zone.Backlight, nil
	}
	return zone.Parse(c.Zone)
}

func (c Command) on() (bool, error) {
	if c.On == nil {
		return false, fmt.Errorf("%w: %s requires on", ErrInvalidCommand, c.Action)
	}
	return *c.On, nil
}

// Execute runs cmd against d.
//
// Returns:
//   - error: ErrUnknownCommand, ErrInvalidCommand or the device's error
func Execute(d *device.Device, cmd Command) error {
	switch cmd.Action {
	case ActionEffect:
		z, err := cmd.zone()
		if err != nil {
			return err
		}
		if cmd.Effect == "" {
			return fmt.Errorf("%w: effect requires effect", ErrInvalidCommand)
		}
		return d.ApplyEffect(z, cmd.Effect, cmd.Args...)

	case ActionBrightness:
		z, err := cmd.zone()
		if err != nil {
			return err
		}
		return d.SetBrightness(z, cmd.Value)

	case ActionActive:
		z, err := cmd.zone()
		if err != nil {
			return err
		}
		on, err := cmd.on()
		if err != nil {
			return err
		}
		return d.SetActive(z, on)

	case ActionDPI:
		switch len(cmd.DPI) {
		case 1:
			return d.SetDPI(cmd.DPI[0], cmd.DPI[0])
		case 2:
			return d.SetDPI(cmd.DPI[0], cmd.DPI[1])
		}
		return fmt.Errorf("%w: dpi requires one or two values", ErrInvalidCommand)

	case ActionPollRate:
		return d.SetPollRate(cmd.Rate)

	case ActionRestore:
		return d.RestoreEffect()

	case ActionEffectSync:
		on, err := cmd.on()
		if err != nil {
			return err
		}
		d.SetEffectSync(on)
		return nil

	case ActionDeviceMode:
		if len(cmd.Mode) != 2 {
			return fmt.Errorf("%w: device_mode requires mode and param", ErrInvalidCommand)
		}
		return d.SetDeviceMode(cmd.Mode[0], cmd.Mode[1])

	case ActionCustomEffect:
		return d.SetCustomEffect()

	case ActionKeyRow:
		return d.SetKeyRow(cmd.Row)

	case ActionSuspend:
		return d.Suspend()

	case ActionResume:
		return d.Resume()
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Action)
}

// Execute runs cmd against the live device with the given serial.
func (m *Manager) Execute(serial string, cmd Command) error {
	d, err := m.registry.Get(serial)
	if err != nil {
		return err
	}
	if err := Execute(d, cmd); err != nil {
		return err
	}
	m.logger.Debug("command executed", "serial", serial, "action", cmd.Action)
	return nil
}
