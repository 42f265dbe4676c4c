package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrClosed) {
//	    // the device was unplugged
//	}
var (
	// ErrClosed is returned for any command on a closed device.
	ErrClosed = errors.New("device: closed")

	// ErrSuspended is returned for lighting commands while the device is suspended.
	ErrSuspended = errors.New("device: suspended")

	// ErrNotSupported is returned when the hardware lacks a capability.
	ErrNotSupported = errors.New("device: not supported")

	// ErrInvalidDeviceMode is returned when the mode attribute cannot be decoded.
	ErrInvalidDeviceMode = errors.New("device: invalid device mode")

	// ErrInvalidOptions is returned by New when required options are missing.
	ErrInvalidOptions = errors.New("device: invalid options")

	// ErrInvalidDPI is returned when a DPI value is outside the hardware range.
	ErrInvalidDPI = errors.New("device: invalid dpi")

	// ErrInvalidPayload is returned when a custom frame row is malformed.
	ErrInvalidPayload = errors.New("device: invalid payload")

	// ErrInvalidPollRate is returned when a poll rate is not one the hardware offers.
	ErrInvalidPollRate = errors.New("device: invalid poll rate")
)
