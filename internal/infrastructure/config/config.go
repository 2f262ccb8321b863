package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/homecontrol-core/internal/schema"
	"github.com/nerrad567/homecontrol-core/internal/smarthome"
)

// Config is the root configuration of a homecontrol device process.
// It is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// DeviceConfig describes the published device and its configured nodes.
type DeviceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// HomieDomain is the first topic level, "homie" unless a test
	// environment isolates itself with another domain.
	HomieDomain string `yaml:"homie_domain"`

	Nodes []NodeConfig `yaml:"nodes"`

	// Simulate attaches the virtual appliance that answers set commands.
	Simulate bool `yaml:"simulate"`
}

// NodeConfig declares one node of the device.
type NodeConfig struct {
	// ID defaults to the node type's default id.
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
	Name string `yaml:"name"`

	// Config is decoded over the node type's default configuration.
	Config yaml.Node `yaml:"config"`
}

// NodeID returns the configured id or the node type's default id.
func (n NodeConfig) NodeID() string {
	if n.ID != "" {
		return n.ID
	}
	id, _ := smarthome.DefaultNodeID(smarthome.Kind(n.Type))
	return id
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`

	// ClientID is generated per process when empty.
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains settings of the live event stream.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
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

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains API token settings.
type JWTConfig struct {
	Secret string `yaml:"secret"`

	// TokenTTL is the lifetime of issued tokens in minutes.
	TokenTTL int `yaml:"token_ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern HOMECONTROL_SECTION_KEY, e.g.
// HOMECONTROL_DATABASE_PATH. The broker can also be set with the HOMIE_MQTT_*
// variables used by Homie test environments.
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
		Device: DeviceConfig{
			ID:          "homecontrol",
			Name:        "Home Control",
			HomieDomain: "homie",
		},
		Database: DatabaseConfig{
			Path:        "./data/homecontrol.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{TokenTTL: 60},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// The HOMECONTROL_* variables win over the HOMIE_MQTT_* ones.
func applyEnvOverrides(cfg *Config) {
	// Homie test environment
	setString(&cfg.MQTT.Broker.Host, "HOMIE_MQTT_HOST")
	setInt(&cfg.MQTT.Broker.Port, "HOMIE_MQTT_PORT")
	setString(&cfg.MQTT.Auth.Username, "HOMIE_MQTT_USERNAME")
	setString(&cfg.MQTT.Auth.Password, "HOMIE_MQTT_PASSWORD")
	setString(&cfg.MQTT.Broker.ClientID, "HOMIE_MQTT_CLIENT_ID")
	setString(&cfg.Device.HomieDomain, "HOMIE_MQTT_HOMIE_DOMAIN")

	// Device
	setString(&cfg.Device.ID, "HOMECONTROL_DEVICE_ID")
	setString(&cfg.Device.Name, "HOMECONTROL_DEVICE_NAME")

	// Database
	setString(&cfg.Database.Path, "HOMECONTROL_DATABASE_PATH")

	// MQTT
	setString(&cfg.MQTT.Broker.Host, "HOMECONTROL_MQTT_HOST")
	setInt(&cfg.MQTT.Broker.Port, "HOMECONTROL_MQTT_PORT")
	setString(&cfg.MQTT.Auth.Username, "HOMECONTROL_MQTT_USERNAME")
	setString(&cfg.MQTT.Auth.Password, "HOMECONTROL_MQTT_PASSWORD")

	// API
	setString(&cfg.API.Host, "HOMECONTROL_API_HOST")
	setInt(&cfg.API.Port, "HOMECONTROL_API_PORT")

	// InfluxDB
	setString(&cfg.InfluxDB.Token, "HOMECONTROL_INFLUXDB_TOKEN")

	// Logging
	setString(&cfg.Logging.Level, "HOMECONTROL_LOG_LEVEL")

	// Security - JWT secret (always override in production)
	setString(&cfg.Security.JWT.Secret, "HOMECONTROL_JWT_SECRET")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setInt ignores values that are not integers; Validate reports the
// resulting configuration.
func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Every validation failure joined with "; ", or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if !schema.ValidID(c.Device.ID) {
		errs = append(errs, fmt.Sprintf("device.id %q must be lowercase letters, digits and single hyphens", c.Device.ID))
	}
	if c.Device.HomieDomain == "" || strings.ContainsAny(c.Device.HomieDomain, "/+#") {
		errs = append(errs, "device.homie_domain must be a single topic level")
	}
	errs = append(errs, c.validateNodes()...)

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	// API validation
	if c.API.Enabled {
		if c.API.Port < 1 || c.API.Port > 65535 {
			errs = append(errs, "api.port must be between 1 and 65535")
		}

		// A forged token can switch physical devices, so the secret is
		// required whenever the API is served.
		const minJWTSecretLength = 32
		if c.Security.JWT.Secret == "" {
			errs = append(errs, "security.jwt.secret is required (set HOMECONTROL_JWT_SECRET environment variable)")
		} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
			errs = append(errs, "security.jwt.secret must be at least 32 characters")
		}
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	// Metrics validation
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, "metrics.path must start with /")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateNodes() []string {
	var errs []string
	seen := make(map[string]bool, len(c.Device.Nodes))

	for i, n := range c.Device.Nodes {
		if !smarthome.Kind(n.Type).Valid() {
			errs = append(errs, fmt.Sprintf("device.nodes[%d].type %q is not a known node type", i, n.Type))
			continue
		}
		id := n.NodeID()
		if !schema.ValidID(id) {
			errs = append(errs, fmt.Sprintf("device.nodes[%d].id %q is invalid", i, id))
			continue
		}
		if seen[id] {
			errs = append(errs, fmt.Sprintf("device.nodes[%d].id %q is used twice", i, id))
		}
		seen[id] = true
	}
	return errs
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

// GetTokenTTL returns the API token lifetime as a Duration.
func (c *Config) GetTokenTTL() time.Duration {
	return time.Duration(c.Security.JWT.TokenTTL) * time.Minute
}
