package effect

import "github.com/nerrad567/lumen-core/internal/zone"

// Effect names with special argument handling.
const (
	None               = "none"
	Spectrum           = "spectrum"
	Static             = "static"
	Wave               = "wave"
	Wheel              = "wheel"
	Reactive           = "reactive"
	BreathRandom       = "breathRandom"
	BreathSingle       = "breathSingle"
	BreathDual         = "breathDual"
	BreathTriple       = "breathTriple"
	StarlightRandom    = "starlightRandom"
	StarlightSingle    = "starlightSingle"
	StarlightDual      = "starlightDual"
	Ripple             = "ripple"
	RippleRandomColour = "rippleRandomColour"
	Blinking           = "blinking"
	Pulsate            = "pulsate"
)

// MethodName composes the capability name of an effect setter: "set"
// followed by the zone prefix and the effect, both camel-cased. The
// backlight has no prefix, so static on the backlight is "setStatic"
// and static on fast_charging is "setFastChargingStatic".
func MethodName(z zone.ID, effect string) string {
	return "set" + z.Prefix() + zone.Camel(effect)
}
