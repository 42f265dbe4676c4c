// Package sysfs reads and writes kernel driver control files.
//
// The peripheral driver exposes every device attribute (serial, mode,
// effect triggers, brightness, DPI) as a file in the device's directory.
// Dir wraps that directory. Writes never create files, so writing an
// attribute the driver does not provide fails instead of leaving a stray
// regular file behind.
package sysfs
