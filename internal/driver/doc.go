// Package driver translates a device's kernel control files into the
// capabilities a device.Device works with.
//
// The kernel driver exposes one attribute per feature. Effects live in
// matrix_effect_<name> for the backlight and <zone>_matrix_effect_<name>
// for other zones; brightness in matrix_brightness or
// <zone>_led_brightness; DPI, poll rate, firmware and battery in their own
// files. Build inspects which of those files exist and returns setters
// that encode arguments into the byte payloads the driver expects.
//
// A Catalogue holds the supported hardware models and matches bound HID
// interfaces against them.
package driver
