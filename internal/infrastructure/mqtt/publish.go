package mqtt

import "fmt"

// Publish sends payload to topic.
//
// Parameters:
//   - topic: Destination topic, e.g. Topics{}.DeviceEvent(serial)
//   - payload: Message body, at most 1 MiB
//   - qos: 0, 1 or 2
//   - retained: Whether the broker keeps the message for new subscribers
//
// Returns:
//   - error: ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected or
//     ErrPublishFailed
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := validate(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(operationTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, operationTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishRetained publishes a retained message at the configured QoS.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// QoS returns the configured default QoS.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS)
}

func validate(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	return nil
}
