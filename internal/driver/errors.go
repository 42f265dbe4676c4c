package driver

import "errors"

// Domain errors for the driver package.
var (
	// ErrUnknownModel is returned when no catalogue entry matches a HID interface.
	ErrUnknownModel = errors.New("driver: unknown model")

	// ErrInvalidModel is returned when a catalogue entry cannot be used.
	ErrInvalidModel = errors.New("driver: invalid model")

	// ErrShortRead is returned when an attribute holds fewer bytes than its format needs.
	ErrShortRead = errors.New("driver: short read")
)
