// Package battery polls wireless peripherals for low charge.
//
// A Manager is created for every device that can report a battery level.
// When active it polls at the configured frequency and calls the
// registered callback whenever the device is discharging below the
// threshold. The daemon turns that callback into a battery event.
package battery
