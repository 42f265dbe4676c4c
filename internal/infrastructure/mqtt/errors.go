package mqtt

import "errors"

// Sentinel errors; compare with errors.Is.
var (
	// ErrNotConnected is returned while the broker link is down or after Close.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed wraps a failed first connect.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	ErrPublishFailed     = errors.New("mqtt: publish failed")
	ErrSubscribeFailed   = errors.New("mqtt: subscribe failed")
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS is returned for a QoS other than 0, 1 or 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level")

	// ErrInvalidTopic is returned for an empty topic.
	ErrInvalidTopic = errors.New("mqtt: empty topic")
)
