package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
)

const (
	connectTimeout    = 10 * time.Second
	operationTimeout  = 5 * time.Second
	disconnectQuiesce = 1000 // milliseconds
	keepAlive         = 60 * time.Second
	maxQoS            = 2
	maxPayloadSize    = 1 << 20
)

// brokerURL returns tcp://host:port, or ssl://host:port with TLS.
func brokerURL(cfg config.MQTTBrokerConfig) string {
	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)
}

// clientOptions translates the configuration into paho options: broker,
// credentials, clean session, reconnect backoff, keepalive, TLS 1.2+ and
// an offline Last Will on the status topic.
func clientOptions(cfg config.MQTTConfig, topics Topics) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL(cfg.Broker)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second).
		SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	opts.SetBinaryWill(topics.SystemStatus(), willPayload(cfg.Broker.ClientID), 1, true)
	return opts
}
