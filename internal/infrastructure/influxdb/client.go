package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
)

const (
	connectTimeout       = 10 * time.Second
	pingTimeout          = 5 * time.Second
	defaultBatchSize     = 100
	defaultFlushInterval = 10 // seconds
)

// Client is a batched, non-blocking InfluxDB writer.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	mu        sync.RWMutex
	connected bool
	onError   func(err error)
}

// options returns the client options for cfg, substituting defaults for
// non-positive batch settings.
func options(cfg config.InfluxDBConfig) *influxdb2.Options {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	flush := cfg.FlushInterval
	if flush <= 0 {
		flush = defaultFlushInterval
	}
	// #nosec G115 -- both values are positive
	return influxdb2.DefaultOptions().
		SetBatchSize(uint(batch)).
		SetFlushInterval(uint(flush) * 1000)
}

// Connect pings the server and opens a write API for the configured
// org and bucket.
//
// Parameters:
//   - ctx: Bounds the initial ping together with the connect timeout
//   - cfg: InfluxDB configuration
//
// Returns:
//   - *Client: Connected client
//   - error: ErrDisabled when influxdb.enabled is false, or
//     ErrConnectionFailed
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, options(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	c := &Client{
		client:    client,
		writeAPI:  client.WriteAPI(cfg.Org, cfg.Bucket),
		connected: true,
	}
	go c.forwardErrors(c.writeAPI.Errors())
	return c, nil
}

func (c *Client) forwardErrors(errs <-chan error) {
	for err := range errs {
		c.mu.RLock()
		fn := c.onError
		c.mu.RUnlock()
		if fn != nil {
			fn(err)
		}
	}
}

// SetOnError registers the callback for asynchronous write failures.
func (c *Client) SetOnError(fn func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// IsConnected reports whether Close has not been called yet.
func (c *Client) IsConnected() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check: server not healthy")
	}
	return nil
}

// Flush blocks until buffered points are written. No-op after Close.
func (c *Client) Flush() {
	if c.IsConnected() {
		c.writeAPI.Flush()
	}
}

// Close flushes pending points and closes the client. A nil client is
// a no-op.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

func (c *Client) write(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}
