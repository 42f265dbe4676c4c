// Package effect resolves and re-applies lighting effects.
//
// A device exposes one setter per (zone, effect) pair it supports. Each
// setter has a fixed arity, and the arity decides which stored zone
// fields become its arguments:
//
//	0  no arguments
//	1  speed (starlightRandom) or wave direction (wave, wheel)
//	3  first color
//	4  first color and speed (starlightSingle, reactive)
//	6  first two colors
//	7  first two colors and speed
//	9  all three colors
//
// Ripple effects are animated by a separate manager and never re-applied
// here. A zone whose stored effect has no setter falls back to spectrum,
// and the fallback is persisted so it happens only once.
//
// Setter names follow "set" + zone prefix + effect, camel-cased:
// setStatic, setLogoWave, setFastChargingSpectrum.
package effect
