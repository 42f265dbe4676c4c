package daemon

import (
	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// ZoneStatus is the lighting state of one present zone.
type ZoneStatus struct {
	Effect     string  `json:"effect" cbor:"1,keyasint"`
	Colors     []int   `json:"colors" cbor:"2,keyasint"`
	Speed      int     `json:"speed" cbor:"3,keyasint"`
	WaveDir    int     `json:"wave_dir" cbor:"4,keyasint"`
	Brightness float64 `json:"brightness" cbor:"5,keyasint"`
	Active     bool    `json:"active" cbor:"6,keyasint"`
}

// Status is the externally visible state of a device.
type Status struct {
	Serial        string                 `json:"serial" cbor:"1,keyasint"`
	Name          string                 `json:"name" cbor:"2,keyasint"`
	Type          string                 `json:"type" cbor:"3,keyasint"`
	Number        int                    `json:"number" cbor:"4,keyasint"`
	State         string                 `json:"state" cbor:"5,keyasint"`
	VidPid        []int                  `json:"vid_pid" cbor:"6,keyasint"`
	DriverVersion string                 `json:"driver_version" cbor:"7,keyasint"`
	DPI           []int                  `json:"dpi,omitempty" cbor:"8,keyasint,omitempty"`
	PollRate      int                    `json:"poll_rate,omitempty" cbor:"9,keyasint,omitempty"`
	EffectSync    bool                   `json:"effect_sync" cbor:"10,keyasint"`
	Zones         map[zone.ID]ZoneStatus `json:"zones" cbor:"11,keyasint"`
}

// StatusOf reads the current status of d.
func StatusOf(d *device.Device) Status {
	st := Status{
		Serial:        d.Serial(),
		Name:          d.Name(),
		Type:          d.Type(),
		Number:        d.Number(),
		State:         d.State().String(),
		VidPid:        d.VidPid(),
		DriverVersion: d.DriverVersion(),
		EffectSync:    d.EffectSync(),
		Zones:         make(map[zone.ID]ZoneStatus),
	}
	if len(d.PollRates()) > 0 {
		st.PollRate = d.PollRate()
	}
	if d.SupportsDPI() {
		x, y := d.DPI()
		st.DPI = []int{x, y}
	}
	for _, z := range d.Zones() {
		zs, err := d.ZoneState(z)
		if err != nil {
			continue
		}
		st.Zones[z] = ZoneStatus{
			Effect:     zs.Effect,
			Colors:     zs.Colors.Ints(zone.PaletteLen),
			Speed:      zs.Speed,
			WaveDir:    zs.WaveDir,
			Brightness: zs.Brightness,
			Active:     zs.Active,
		}
	}
	return st
}
