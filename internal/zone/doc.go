// Package zone models the lighting zones of a peripheral.
//
// Every device has the same fixed set of zones (backlight, logo, scroll,
// charging indicators, addressable channels and so on); which of them are
// present depends on the hardware. Each zone carries its own active flag,
// brightness, effect name, nine-value color palette, speed and wave
// direction.
//
// # Persistence
//
// Zone state is stored per device section under keys of the form
// "<zone>_<field>", for example "logo_effect" or "backlight_colors".
// Model.Load reads them back field by field: a missing key keeps the
// default and a value that does not parse falls back to the default for
// that one field, so a damaged store never prevents a device from coming
// up. Palettes must be exactly nine space-separated values in 0..255.
package zone
