package mqtt

import "fmt"

// Subscribe registers handler for topic, which may contain + and #
// wildcards. The subscription is restored after reconnects.
//
// Returns:
//   - error: ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected or
//     ErrSubscribeFailed
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := validate(topic, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.mu.Lock()
	c.subscriptions[topic] = subscription{qos: qos, handler: handler}
	c.mu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrap(handler))
	var err error
	if token.WaitTimeout(operationTimeout) {
		err = token.Error()
	} else {
		err = fmt.Errorf("timeout after %v", operationTimeout)
	}
	if err != nil {
		c.mu.Lock()
		delete(c.subscriptions, topic)
		c.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

// Unsubscribe removes the subscription for topic.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.mu.Lock()
	delete(c.subscriptions, topic)
	c.mu.Unlock()

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(operationTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, operationTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}
	return nil
}

// SubscriptionCount returns the number of tracked subscriptions.
func (c *Client) SubscriptionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscriptions)
}
