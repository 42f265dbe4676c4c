package zone

import "errors"

// Domain errors for the zone package.
var (
	// ErrUnknownZone is returned when a zone name is not one of the known zones.
	ErrUnknownZone = errors.New("zone: unknown zone")

	// ErrNotPresent is returned when a zone exists but the device lacks it.
	ErrNotPresent = errors.New("zone: not present on device")

	// ErrUnknownField is returned when a field name is not a zone field.
	ErrUnknownField = errors.New("zone: unknown field")

	// ErrInvalidValue is returned when a field value has the wrong type or range.
	ErrInvalidValue = errors.New("zone: invalid value")

	// ErrInvalidPalette is returned when a stored palette cannot be parsed.
	ErrInvalidPalette = errors.New("zone: invalid palette")
)
