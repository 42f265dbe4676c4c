package daemon

import "errors"

// Domain errors for the daemon package.
var (
	// ErrDeviceNotFound is returned when no live device has the serial.
	ErrDeviceNotFound = errors.New("daemon: device not found")

	// ErrDeviceExists is returned when a device is added twice.
	ErrDeviceExists = errors.New("daemon: device already exists")

	// ErrUnknownCommand is returned for a command action the daemon does not handle.
	ErrUnknownCommand = errors.New("daemon: unknown command")

	// ErrInvalidCommand is returned when a command is missing a required field.
	ErrInvalidCommand = errors.New("daemon: invalid command")

	// ErrUnsupportedFormat is returned for an unknown payload format.
	ErrUnsupportedFormat = errors.New("daemon: unsupported payload format")
)
