package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the lumend daemon.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Daemon      DaemonConfig      `yaml:"daemon"`
	Startup     StartupConfig     `yaml:"startup"`
	Devices     DevicesConfig     `yaml:"devices"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Database    DatabaseConfig    `yaml:"database"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	API         APIConfig         `yaml:"api"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	InfluxDB    InfluxDBConfig    `yaml:"influxdb"`
	Logging     LoggingConfig     `yaml:"logging"`
	Security    SecurityConfig    `yaml:"security"`
}

// DaemonConfig identifies this daemon instance.
type DaemonConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// StartupConfig controls what a device does when it is constructed.
type StartupConfig struct {
	// RestorePersistence re-applies the persisted lighting effect of every
	// zone at construction. Brightness, DPI and poll rate are always restored.
	RestorePersistence bool `yaml:"restore_persistence"`

	// PersistenceDualBootQuirk repeats the effect restore once more for
	// firmware that drops the first effect write after a dual-boot.
	PersistenceDualBootQuirk bool `yaml:"persistence_dual_boot_quirk"`

	// EffectSync enables effect propagation between devices by default.
	EffectSync bool `yaml:"effect_sync"`

	// BatteryNotifier enables the low-battery poller for wireless devices.
	BatteryNotifier bool `yaml:"battery_notifier"`

	// BatteryNotifierFreq is the poll interval in seconds. Default: 600
	BatteryNotifierFreq int `yaml:"battery_notifier_freq"`

	// BatteryNotifierPercent is the low-battery threshold. Default: 33
	BatteryNotifierPercent int `yaml:"battery_notifier_percent"`
}

// DevicesConfig describes where devices are discovered and which models are known.
type DevicesConfig struct {
	// HIDRoot is the directory holding one entry per bound HID interface.
	HIDRoot string `yaml:"hid_root"`

	// InputRoot is the directory holding input event nodes.
	InputRoot string `yaml:"input_root"`

	// DriverVersion is reported by the driver-version query. When empty
	// the daemon reads it from the kernel module version file.
	DriverVersion string `yaml:"driver_version"`

	// Models is the catalogue of supported hardware.
	Models []ModelConfig `yaml:"models"`
}

// ModelConfig is the static description of one supported hardware model.
type ModelConfig struct {
	Name               string `yaml:"name"`
	VendorID           uint16 `yaml:"vendor_id"`
	ProductID          uint16 `yaml:"product_id"`
	StorageName        string `yaml:"storage_name"`
	Type               string `yaml:"type"`
	DPIMax             int    `yaml:"dpi_max"`
	PollRates          []int  `yaml:"poll_rates"`
	DriverMode         bool   `yaml:"driver_mode"`
	DedicatedMacroKeys bool   `yaml:"dedicated_macro_keys"`
	MatrixRows         int    `yaml:"matrix_rows"`
	MatrixCols         int    `yaml:"matrix_cols"`
	Image              string `yaml:"image"`
	TopImage           string `yaml:"top_image"`
	SideImage          string `yaml:"side_image"`
	PerspectiveImage   string `yaml:"perspective_image"`
	EventFilePattern   string `yaml:"event_file_pattern"`
}

// PersistenceConfig controls how often dirty device state is written out.
type PersistenceConfig struct {
	// SyncInterval is the number of seconds between persistence checks.
	SyncInterval int `yaml:"sync_interval"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled       bool                `yaml:"enabled"`
	Broker        MQTTBrokerConfig    `yaml:"broker"`
	Auth          MQTTAuthConfig      `yaml:"auth"`
	QoS           int                 `yaml:"qos"`
	PayloadFormat string              `yaml:"payload_format"`
	Reconnect     MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	MDNS     MDNSConfig       `yaml:"mdns"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// MDNSConfig controls DNS-SD advertisement of the API on the local network.
type MDNSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
	Service  string `yaml:"service"`
	Domain   string `yaml:"domain"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT   JWTConfig    `yaml:"jwt"`
	Users []UserConfig `yaml:"users"`
}

// UserConfig is one API account. PasswordHash is an Argon2id PHC string
// as printed by `lumend hash-password`.
type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LUMEND_SECTION_KEY
// For example: LUMEND_DATABASE_PATH, LUMEND_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Daemon: DaemonConfig{
			ID:   "lumend",
			Name: "Lumen",
		},
		Startup: StartupConfig{
			RestorePersistence:     true,
			BatteryNotifierFreq:    10 * 60,
			BatteryNotifierPercent: 33,
		},
		Devices: DevicesConfig{
			HIDRoot:   "/sys/bus/hid/devices",
			InputRoot: "/dev/input/by-id",
		},
		Persistence: PersistenceConfig{
			SyncInterval: 10,
		},
		Database: DatabaseConfig{
			Path:        "./data/lumend.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lumend",
			},
			QoS:           1,
			PayloadFormat: "json",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8095,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			MDNS: MDNSConfig{
				Service: "_lumend._tcp",
				Domain:  "local.",
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 15,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LUMEND_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LUMEND_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("LUMEND_HID_ROOT"); v != "" {
		cfg.Devices.HIDRoot = v
	}

	if v := os.Getenv("LUMEND_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LUMEND_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LUMEND_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("LUMEND_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("LUMEND_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("LUMEND_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("LUMEND_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Daemon.ID == "" {
		errs = append(errs, "daemon.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Devices.HIDRoot == "" {
		errs = append(errs, "devices.hid_root is required")
	}

	for i, m := range c.Devices.Models {
		if m.Name == "" {
			errs = append(errs, fmt.Sprintf("devices.models[%d].name is required", i))
		}
		if m.ProductID == 0 {
			errs = append(errs, fmt.Sprintf("devices.models[%d].product_id is required", i))
		}
		if m.DPIMax < 0 {
			errs = append(errs, fmt.Sprintf("devices.models[%d].dpi_max must not be negative", i))
		}
	}

	if c.Persistence.SyncInterval < 1 {
		errs = append(errs, "persistence.sync_interval must be at least 1 second")
	}

	if c.Startup.BatteryNotifierPercent < 0 || c.Startup.BatteryNotifierPercent > 100 {
		errs = append(errs, "startup.battery_notifier_percent must be between 0 and 100")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	switch c.MQTT.PayloadFormat {
	case "", "json", "cbor":
	default:
		errs = append(errs, "mqtt.payload_format must be json or cbor")
	}

	if c.API.Enabled {
		if c.API.Port < 1 || c.API.Port > 65535 {
			errs = append(errs, "api.port must be between 1 and 65535")
		}

		// The API can change device modes and lighting, so it never runs unauthenticated.
		const minJWTSecretLength = 32
		if c.Security.JWT.Secret == "" {
			errs = append(errs, "security.jwt.secret is required (set LUMEND_JWT_SECRET environment variable)")
		} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
			errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
		}
	}

	for i, u := range c.Security.Users {
		if u.Username == "" || u.PasswordHash == "" {
			errs = append(errs, fmt.Sprintf("security.users[%d] needs username and password_hash", i))
		}
		switch u.Role {
		case "viewer", "operator", "admin":
		default:
			errs = append(errs, fmt.Sprintf("security.users[%d].role must be viewer, operator or admin", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetSyncInterval returns the persistence sync interval as a Duration.
func (c *Config) GetSyncInterval() time.Duration {
	return time.Duration(c.Persistence.SyncInterval) * time.Second
}

// GetBatteryInterval returns the battery poll interval as a Duration.
func (c *Config) GetBatteryInterval() time.Duration {
	return time.Duration(c.Startup.BatteryNotifierFreq) * time.Second
}
