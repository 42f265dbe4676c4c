package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
)

// Logger is the logging interface used for handler failures.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

// MessageHandler handles one received message. Returned errors are
// logged; they do not affect acknowledgement.
type MessageHandler func(topic string, payload []byte) error

type subscription struct {
	qos     byte
	handler MessageHandler
}

// Client is a paho client that announces the daemon on the status
// topic and restores its subscriptions after every reconnect.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	mu            sync.RWMutex
	connected     bool
	subscriptions map[string]subscription
	logger        Logger
	onConnect     func()
}

// Connect connects to the broker and publishes the online status.
//
// Parameters:
//   - cfg: MQTT configuration
//
// Returns:
//   - *Client: Connected client
//   - error: ErrConnectionFailed when the broker cannot be reached
//     within the connect timeout
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:           cfg,
		subscriptions: make(map[string]subscription),
	}

	opts := clientOptions(cfg, c.topics)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.handleConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.handleConnectionLost(err) })

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The connect handler runs asynchronously; mark the state now so
	// callers can publish straight away.
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	return c, nil
}

// Topics returns the topic builder the client publishes under.
func (c *Client) Topics() Topics {
	return c.topics
}

func (c *Client) handleConnect() {
	c.mu.Lock()
	c.connected = true
	subs := make(map[string]subscription, len(c.subscriptions))
	for topic, sub := range c.subscriptions {
		subs[topic] = sub
	}
	callback := c.onConnect
	c.mu.Unlock()

	for topic, sub := range subs {
		c.client.Subscribe(topic, sub.qos, c.wrap(sub.handler))
	}
	c.client.Publish(c.topics.SystemStatus(), byte(c.cfg.QoS), true, onlinePayload(c.cfg.Broker.ClientID))

	if callback != nil {
		callback()
	}
}

func (c *Client) handleConnectionLost(err error) {
	c.mu.Lock()
	c.connected = false
	logger := c.logger
	c.mu.Unlock()
	if logger != nil {
		logger.Warn("mqtt connection lost", "error", err)
	}
}

// SetLogger sets the logger for handler failures and connection loss.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// SetOnConnect registers a callback run after every (re)connect.
func (c *Client) SetOnConnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = fn
}

// IsConnected reports the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// HealthCheck returns ErrNotConnected while the broker is unreachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// Close publishes a graceful offline status and disconnects.
// A nil client is a no-op.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.IsConnected() {
		token := c.client.Publish(c.topics.SystemStatus(), byte(c.cfg.QoS), true,
			offlinePayload(c.cfg.Broker.ClientID))
		token.WaitTimeout(operationTimeout)
	}
	c.client.Disconnect(disconnectQuiesce)

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	return nil
}

// wrap adapts a MessageHandler for paho, recovering panics and logging
// handler errors.
func (c *Client) wrap(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.mu.RLock()
		logger := c.logger
		c.mu.RUnlock()

		defer func() {
			if r := recover(); r != nil && logger != nil {
				logger.Error("mqtt handler panic recovered", "topic", msg.Topic(), "panic", r)
			}
		}()
		if err := handler(msg.Topic(), msg.Payload()); err != nil && logger != nil {
			logger.Warn("mqtt handler failed", "topic", msg.Topic(), "error", err)
		}
	}
}
