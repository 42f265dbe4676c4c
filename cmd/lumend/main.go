// lumend - peripheral lighting daemon
//
// This is the main entry point for lumend. The daemon discovers supported
// lighting peripherals under the kernel HID tree, restores their persisted
// lighting state, keeps that state in SQLite, and exposes every device over
// MQTT and an HTTP/WebSocket API.
//
// Usage:
//
//	lumend                  run the daemon (config from LUMEND_CONFIG)
//	lumend hash-password    read a password from stdin, print its Argon2id hash
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nerrad567/lumen-core/internal/api"
	"github.com/nerrad567/lumen-core/internal/auth"
	"github.com/nerrad567/lumen-core/internal/daemon"
	"github.com/nerrad567/lumen-core/internal/driver"
	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
	"github.com/nerrad567/lumen-core/internal/infrastructure/database"
	"github.com/nerrad567/lumen-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/lumen-core/internal/infrastructure/logging"
	"github.com/nerrad567/lumen-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/lumen-core/internal/persistence"
	"github.com/nerrad567/lumen-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/lumend.yaml"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // Linear startup sequence with a defer per component
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting lumend",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"daemon_id", cfg.Daemon.ID,
		"level", cfg.Logging.Level,
	)

	// Open database
	db, err := database.Open(ctx, database.FromConfig(cfg.Database))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS, migrations.Dir); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Load persisted device state
	store := persistence.NewStore(persistence.NewSQLiteRepository(db.DB))
	if loadErr := store.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading persisted state: %w", loadErr)
	}

	catalogue, err := driver.NewCatalogue(cfg.Devices.Models)
	if err != nil {
		return fmt.Errorf("loading model catalogue: %w", err)
	}
	log.Info("model catalogue loaded", "models", catalogue.Len())

	manager, err := daemon.NewManager(daemon.Options{
		Devices:   cfg.Devices,
		Startup:   cfg.Startup,
		Catalogue: catalogue,
		Store:     store,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("creating device manager: %w", err)
	}

	// The syncer stops after the manager closes so the final device
	// snapshots reach the database.
	syncer := persistence.NewSyncer(store, cfg.GetSyncInterval(), manager.Snapshotters)
	syncer.SetLogger(log.Component("persistence"))
	defer func() {
		log.Info("flushing persisted state")
		if stopErr := syncer.Stop(context.Background()); stopErr != nil {
			log.Error("error flushing persisted state", "error", stopErr)
		}
	}()
	defer func() {
		log.Info("closing devices")
		if closeErr := manager.Close(); closeErr != nil {
			log.Error("error closing devices", "error", closeErr)
		}
	}()

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = startMQTT(cfg, manager, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		manager.AddSink(daemon.NewInfluxSink(influxClient, manager.Get))
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the HTTP API (optional)
	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = newAPIServer(cfg, manager, db, mqttClient, log)
		if err != nil {
			return err
		}
		manager.AddSink(apiServer.Hub())
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API disabled")
	}

	// Sinks are registered, so the "added" events of discovered devices
	// reach every consumer.
	added, err := manager.Discover(ctx)
	if err != nil {
		log.Warn("some devices failed to initialise", "error", err)
	}
	log.Info("device discovery complete", "added", added, "hid_root", cfg.Devices.HIDRoot)

	syncer.Start(ctx)

	if err := healthCheck(ctx, db, mqttClient, influxClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// API, InfluxDB, MQTT, devices, persistence flush, database.

	log.Info("lumend stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LUMEND_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LUMEND_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startMQTT connects to the broker, registers the event sink and
// subscribes to device commands.
func startMQTT(cfg *config.Config, manager *daemon.Manager, log *logging.Logger) (*mqtt.Client, error) {
	codec, err := daemon.NewCodec(cfg.MQTT.PayloadFormat)
	if err != nil {
		return nil, fmt.Errorf("mqtt payload format: %w", err)
	}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	mqttLog := log.Component("mqtt")
	client.SetLogger(mqttLog)
	client.SetOnConnect(func() {
		mqttLog.Info("MQTT reconnected")
	})

	sink := daemon.NewMQTTSink(client, codec, manager.Get)
	sink.SetLogger(mqttLog)
	manager.AddSink(sink)

	handler := daemon.NewCommandHandler(manager, codec, client.Topics())
	handler.SetLogger(mqttLog)
	if err := handler.Subscribe(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("subscribing to device commands: %w", err)
	}

	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
		"payload_format", cfg.MQTT.PayloadFormat,
	)
	return client, nil
}

// newAPIServer builds the HTTP API with the configured users.
func newAPIServer(cfg *config.Config, manager *daemon.Manager, db *database.DB, mqttClient *mqtt.Client, log *logging.Logger) (*api.Server, error) {
	users := make([]auth.User, 0, len(cfg.Security.Users))
	for _, u := range cfg.Security.Users {
		users = append(users, auth.User{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			Role:         auth.Role(u.Role),
		})
	}
	authn, err := auth.NewAuthenticator(users, cfg.Security.JWT.Secret, auth.TokenTTL(cfg.Security.JWT.AccessTokenTTL))
	if err != nil {
		return nil, fmt.Errorf("configuring API users: %w", err)
	}
	if len(users) == 0 {
		log.Warn("no API users configured; only open endpoints are usable")
	}

	deps := api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log.Component("api"),
		Manager: manager,
		Auth:    authn,
		DB:      db,
		Version: version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}

	server, err := api.New(deps)
	if err != nil {
		return nil, fmt.Errorf("creating API server: %w", err)
	}
	return server, nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//   - apiServer: API server to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, apiServer *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if apiServer != nil {
		if err := apiServer.HealthCheck(ctx); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}

	return nil
}

// hashPassword reads one password line from r and writes its Argon2id
// PHC string to w, for the security.users section of the config.
func hashPassword(r io.Reader, w io.Writer) error {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	_, err = fmt.Fprintln(w, hash)
	return err
}
