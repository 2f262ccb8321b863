// homecontrol publishes a Homie 5 device over MQTT.
//
// The device, its nodes and the surrounding services (SQLite registration
// store, HTTP API, Prometheus metrics, InfluxDB telemetry) are configured in
// a YAML file. Usage:
//
//	homecontrol                        run the device
//	homecontrol token <subject> <role> print a signed API token
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/homecontrol-core/internal/api"
	"github.com/nerrad567/homecontrol-core/internal/audit"
	"github.com/nerrad567/homecontrol-core/internal/auth"
	"github.com/nerrad567/homecontrol-core/internal/bridges/homie"
	"github.com/nerrad567/homecontrol-core/internal/device"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/config"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/database"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/logging"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/metrics"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/simulator"
	"github.com/nerrad567/homecontrol-core/internal/smarthome"
	"github.com/nerrad567/homecontrol-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// shutdownTimeout bounds the final $state publish and detach on shutdown.
const shutdownTimeout = 5 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := runToken(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		return
	}

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
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
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // startup sequence is linear wiring
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting homecontrol",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "level", cfg.Logging.Level)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	applied, err := db.Migrate(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path, "migrations_applied", applied)

	dev, err := buildDevice(cfg.Device)
	if err != nil {
		return fmt.Errorf("building device: %w", err)
	}

	// Connect to MQTT broker. The will flips $state to lost when the
	// connection drops without a clean shutdown.
	topics := mqtt.Topics{Domain: cfg.Device.HomieDomain}
	qos := byte(cfg.MQTT.QoS) //nolint:gosec // validated to 0..2
	mqttClient, err := mqtt.Connect(cfg.MQTT, &mqtt.Will{
		Topic:    topics.State(dev.ID()),
		Payload:  []byte(device.StateLost),
		QoS:      qos,
		Retained: true,
	})
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.Component("mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", mqttClient.ClientID(),
	)

	transport := homie.New(mqttClient, cfg.Device.HomieDomain, qos)
	transport.SetLogger(log.Component("homie"))

	rt := device.NewRuntime(dev, transport)
	rt.SetLogger(log.Component("device"))
	rt.SetRepository(device.NewSQLiteRepository(db.DB))

	// Metrics (optional)
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(version)
		collector.TrackDevice(dev.Len, func() bool { return rt.State() == device.StateReady })
		rt.AddObserver(device.NewMetricsObserver(dev, collector))
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
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
		rt.AddObserver(device.NewTelemetryObserver(dev, influxClient))
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Virtual appliance (optional)
	var appliance *simulator.Appliance
	if cfg.Device.Simulate {
		appliance = simulator.New(rt)
		appliance.SetLogger(log.Component("simulator"))
		rt.OnEvent(appliance.HandleEvent)
	}

	// API server (optional). Created before Start so the hub sees the
	// initial publishes.
	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = startAPI(ctx, cfg, rt, collector, audit.NewSQLiteRepository(db.DB), log)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	restored, err := rt.RestoreNodes(ctx)
	if err != nil {
		return fmt.Errorf("restoring nodes: %w", err)
	}
	if restored > 0 {
		log.Info("provisioned nodes restored", "count", restored)
	}

	if err := rt.Start(ctx); err != nil {
		return fmt.Errorf("starting device: %w", err)
	}
	defer stopDevice(rt, transport, log)

	if appliance != nil {
		if err := appliance.Start(ctx); err != nil {
			return fmt.Errorf("starting simulator: %w", err)
		}
	}

	// A reconnect follows a session in which the broker may have published
	// the will, so the device announces itself again.
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected, re-advertising device")
		if err := rt.Reconfigure(context.Background()); err != nil {
			log.Error("re-advertising after reconnect", "error", err)
		}
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal", "device", dev.ID(), "nodes", dev.Len())

	<-ctx.Done()

	// Deferred calls run in reverse order: device state, API, InfluxDB,
	// MQTT, database.
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// startAPI creates and starts the HTTP API server.
func startAPI(ctx context.Context, cfg *config.Config, rt *device.Runtime, collector *metrics.Collector, auditRepo audit.Repository, log *logging.Logger) (*api.Server, error) {
	issuer, err := auth.NewIssuer(cfg.Security.JWT.Secret, cfg.GetTokenTTL())
	if err != nil {
		return nil, fmt.Errorf("creating token issuer: %w", err)
	}

	srv, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log.Component("api"),
		Runtime:     rt,
		Issuer:      issuer,
		Metrics:     collector,
		Audit:       auditRepo,
		MetricsPath: cfg.Metrics.Path,
		Version:     version,
	})
	if err != nil {
		return nil, fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting API server: %w", err)
	}
	return srv, nil
}

// stopDevice publishes $state=disconnected and drops the set subscription.
// It uses its own context because the run context is already cancelled.
func stopDevice(rt *device.Runtime, transport *homie.Transport, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := rt.Stop(ctx); err != nil {
		log.Error("error stopping device", "error", err)
	}
	if err := transport.Detach(rt.Device().ID()); err != nil {
		log.Warn("error detaching device", "error", err)
	}
}

// buildDevice creates the device and its configured nodes.
//
// Parameters:
//   - cfg: Device section of the configuration
//
// Returns:
//   - *device.Device: Device with every configured node, in config order
//   - error: If a node cannot be built or added
func buildDevice(cfg config.DeviceConfig) (*device.Device, error) {
	dev, err := device.New(cfg.ID, cfg.Name)
	if err != nil {
		return nil, err
	}

	for i := range cfg.Nodes {
		nc := &cfg.Nodes[i]
		id := node.Identity{Device: cfg.ID, Node: nc.NodeID()}
		n, err := smarthome.NewNode(smarthome.Kind(nc.Type), id, nc.Name, &nc.Config)
		if err != nil {
			return nil, fmt.Errorf("device.nodes[%d]: %w", i, err)
		}
		if err := dev.AddNode(n); err != nil {
			return nil, fmt.Errorf("device.nodes[%d]: %w", i, err)
		}
	}
	return dev, nil
}

// runToken prints a signed API token for the configured secret.
//
// Parameters:
//   - args: <subject> <role>
//   - out: Destination of the token
func runToken(args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("usage: homecontrol token <subject> <viewer|operator>")
	}
	role, err := auth.ParseRole(args[1])
	if err != nil {
		return fmt.Errorf("%w: %q", err, args[1])
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	issuer, err := auth.NewIssuer(cfg.Security.JWT.Secret, cfg.GetTokenTTL())
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	token, err := issuer.Issue(args[0], role)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

// getConfigPath returns the configuration file path.
// Uses HOMECONTROL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMECONTROL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
