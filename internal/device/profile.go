package device

import (
	"github.com/nerrad567/lumen-core/internal/effect"
	"github.com/nerrad567/lumen-core/internal/zone"
)

// Images are the product pictures shown by front-ends.
type Images struct {
	Top         string `json:"top_img"`
	Side        string `json:"side_img"`
	Perspective string `json:"perspective_img"`
}

// Profile is the static description of a hardware model.
type Profile struct {
	Name      string
	Type      string
	VendorID  uint16
	ProductID uint16

	// StorageName overrides the persistence section name for models
	// whose serial is not usable.
	StorageName string

	// DPIMax caps restored DPI values. Zero means no cap.
	DPIMax int

	// PollRates lists the rates the hardware accepts. Empty means the
	// standard 125/500/1000 set when the device can set its poll rate.
	PollRates []int

	// DriverMode means the device must be switched into driver mode (3)
	// at startup and resume and back to normal mode (0) on close.
	DriverMode bool

	DedicatedMacroKeys bool
	MatrixDims         [2]int
	Image              string
	Images             Images
}

// Capability method names that decide zone presence and restore behavior.
const (
	MethodSetStaticEffect = "set_static_effect"
	MethodBWSetStatic     = "bw_set_static"
	MethodAvailableDPI    = "available_dpi"
	MethodSetDPIXY        = "set_dpi_xy"
	MethodSetDPIXYByte    = "set_dpi_xy_byte"
	MethodGetDPIXY        = "get_dpi_xy"
	MethodSetPollRate     = "set_poll_rate"
)

// ZoneMethod returns the capability name for a zone-specific method,
// e.g. ZoneMethod(zone.Logo, "static") is "set_logo_static".
func ZoneMethod(z zone.ID, suffix string) string {
	return "set_" + string(z) + "_" + suffix
}

// BrightnessControl drives a zone's brightness.
type BrightnessControl struct {
	Set func(level float64) error
	Get func() (float64, error)
}

// Capabilities is everything a driver can do for one device.
// Nil functions mean the hardware lacks that capability.
type Capabilities struct {
	// Methods is the set of capability names the driver declares.
	Methods map[string]bool

	// Effects holds one setter per supported (zone, effect) pair.
	Effects *effect.Table

	Brightness map[zone.ID]BrightnessControl
	Active     map[zone.ID]func(on bool) error

	SetDPI      func(x, y int) error
	GetDPI      func() (x, y int, err error)
	SetPollRate func(rate int) error
	GetPollRate func() (int, error)

	Firmware     func() (string, error)
	BatteryLevel func() (float64, error)
	Charging     func() (bool, error)

	// Hooks run inside suspend, resume and close.
	Suspend func() error
	Resume  func() error
	Close   func() error
}

// Has reports whether the driver declares the named capability.
func (c Capabilities) Has(method string) bool {
	return c.Methods[method]
}

// PresentZones derives zone presence from the declared capabilities.
// The backlight is present when the device has a static effect; any
// other zone is present when it has a static, static_classic, active or
// on method.
func (c Capabilities) PresentZones() []zone.ID {
	var out []zone.ID
	for _, z := range zone.All {
		if z == zone.Backlight {
			if c.Has(MethodSetStaticEffect) || c.Has(MethodBWSetStatic) {
				out = append(out, z)
			}
			continue
		}
		for _, suffix := range []string{"static_classic", "static", "active", "on"} {
			if c.Has(ZoneMethod(z, suffix)) {
				out = append(out, z)
				break
			}
		}
	}
	return out
}

// canSetDPI reports whether DPI is restored and persisted.
func (c Capabilities) canSetDPI() bool {
	return c.SetDPI != nil
}

// canSetPollRate reports whether poll rate is restored and persisted.
func (c Capabilities) canSetPollRate() bool {
	return c.SetPollRate != nil
}
