package daemon

import (
	"errors"
	"fmt"

	"github.com/nerrad567/lumen-core/internal/device"
	"github.com/nerrad567/lumen-core/internal/event"
	"github.com/nerrad567/lumen-core/internal/infrastructure/mqtt"
)

// Publisher is the publishing side of the MQTT client.
// *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	QoS() byte
	Topics() mqtt.Topics
}

// CommandSource is the subscribing side of the MQTT client.
// *mqtt.Client satisfies it.
type CommandSource interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	QoS() byte
	Topics() mqtt.Topics
}

// LookupFunc finds a live device by serial.
type LookupFunc func(serial string) (*device.Device, error)

// MQTTSink publishes device events, and the retained status of the
// device that raised them, to the broker.
type MQTTSink struct {
	pub    Publisher
	codec  Codec
	lookup LookupFunc
	logger Logger
}

// NewMQTTSink creates a sink publishing through pub. lookup may be nil,
// in which case no retained status is published.
func NewMQTTSink(pub Publisher, codec Codec, lookup LookupFunc) *MQTTSink {
	return &MQTTSink{
		pub:    pub,
		codec:  codec,
		lookup: lookup,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for publish failures.
func (s *MQTTSink) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Notify implements event.Subscriber.
func (s *MQTTSink) Notify(e event.Event) {
	topics := s.pub.Topics()

	payload, err := s.codec.Marshal(e)
	if err != nil {
		s.logger.Error("encoding event", "serial", e.Source, "kind", e.Kind, "error", err)
		return
	}
	if err := s.pub.Publish(topics.DeviceEvent(e.Source), payload, s.pub.QoS(), false); err != nil {
		s.logger.Warn("publishing event", "serial", e.Source, "kind", e.Kind, "error", err)
	}

	if e.Kind == event.KindBattery || s.lookup == nil {
		return
	}
	d, err := s.lookup(e.Source)
	if err != nil {
		return
	}
	payload, err = s.codec.Marshal(StatusOf(d))
	if err != nil {
		s.logger.Error("encoding status", "serial", e.Source, "error", err)
		return
	}
	if err := s.pub.Publish(topics.DeviceState(e.Source), payload, s.pub.QoS(), true); err != nil {
		s.logger.Warn("publishing status", "serial", e.Source, "error", err)
	}
}

// CommandHandler executes commands received on the device command topics.
type CommandHandler struct {
	manager *Manager
	codec   Codec
	topics  mqtt.Topics
	logger  Logger
}

// NewCommandHandler creates a handler executing commands on m.
func NewCommandHandler(m *Manager, codec Codec, topics mqtt.Topics) *CommandHandler {
	return &CommandHandler{
		manager: m,
		codec:   codec,
		topics:  topics,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for rejected commands.
func (h *CommandHandler) SetLogger(logger Logger) {
	if logger != nil {
		h.logger = logger
	}
}

// Subscribe starts receiving commands from src.
func (h *CommandHandler) Subscribe(src CommandSource) error {
	return src.Subscribe(h.topics.AllDeviceCommands(), src.QoS(), h.Handle)
}

// Handle decodes and executes one command message. Errors are logged
// and returned; the MQTT client does not act on them.
func (h *CommandHandler) Handle(topic string, payload []byte) error {
	serial := h.topics.SerialFromTopic(topic)
	if serial == "" {
		return fmt.Errorf("%w: topic %q has no serial", ErrInvalidCommand, topic)
	}

	var cmd Command
	if err := h.codec.Unmarshal(payload, &cmd); err != nil {
		h.logger.Warn("malformed command", "serial", serial, "error", err)
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	if err := h.manager.Execute(serial, cmd); err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			h.logger.Debug("command for unknown device", "serial", serial, "action", cmd.Action)
		} else {
			h.logger.Warn("command failed", "serial", serial, "action", cmd.Action, "error", err)
		}
		return err
	}
	return nil
}
