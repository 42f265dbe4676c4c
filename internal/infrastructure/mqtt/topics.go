package mqtt

import "strings"

// DefaultRoot is the first level of every lumend topic.
const DefaultRoot = "lumend"

// Topics builds lumend topic names. The zero value uses DefaultRoot.
//
//	topics := mqtt.Topics{}
//	topics.DeviceEvent("PM1234")   // "lumend/device/PM1234/event"
//	topics.DeviceCommand("PM1234") // "lumend/device/PM1234/command"
type Topics struct {
	// Root replaces DefaultRoot, e.g. to run two daemons on one broker.
	Root string
}

func (t Topics) root() string {
	if t.Root == "" {
		return DefaultRoot
	}
	return strings.TrimSuffix(t.Root, "/")
}

func (t Topics) device(serial, leaf string) string {
	return t.root() + "/device/" + serial + "/" + leaf
}

// DeviceEvent is where a device's effect, brightness and battery events
// are published. Not retained.
//
// Example: lumend/device/PM1234/event
func (t Topics) DeviceEvent(serial string) string {
	return t.device(serial, "event")
}

// DeviceState is the retained status of a device: lifecycle state,
// zone lighting, DPI and poll rate.
//
// Example: lumend/device/PM1234/state
func (t Topics) DeviceState(serial string) string {
	return t.device(serial, "state")
}

// DeviceCommand is where commands for a device are received.
//
// Example: lumend/device/PM1234/command
func (t Topics) DeviceCommand(serial string) string {
	return t.device(serial, "command")
}

// SystemStatus is the retained daemon online/offline topic, also used
// for the Last Will and Testament.
//
// Example: lumend/system/status
func (t Topics) SystemStatus() string {
	return t.root() + "/system/status"
}

// AllDeviceCommands matches the command topic of every device.
//
// Pattern: lumend/device/+/command
func (t Topics) AllDeviceCommands() string {
	return t.device("+", "command")
}

// AllDeviceEvents matches the event topic of every device.
//
// Pattern: lumend/device/+/event
func (t Topics) AllDeviceEvents() string {
	return t.device("+", "event")
}

// SerialFromTopic extracts the device serial from a device topic.
// It returns "" when topic is not a device topic under this root.
func (t Topics) SerialFromTopic(topic string) string {
	prefix := t.root() + "/device/"
	if !strings.HasPrefix(topic, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(topic, prefix)
	serial, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return serial
}
