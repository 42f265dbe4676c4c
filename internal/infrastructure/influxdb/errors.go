package influxdb

import "errors"

var (
	// ErrNotConnected is returned by a nil or closed client.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed wraps a failed health ping in Connect.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled tells the caller that telemetry is switched off, so no
	// sink should be registered.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
