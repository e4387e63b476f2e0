package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the OPC logger.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Tags     []TagConfig    `yaml:"tags"`
	Logging  LoggingConfig  `yaml:"logging"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Journal  JournalConfig  `yaml:"journal"`
}

// SourceConfig contains data source connection and sampling settings.
type SourceConfig struct {
	// Endpoint is the OPC UA server endpoint URL.
	Endpoint string `yaml:"endpoint"`

	// IntervalSeconds is the sampling interval in whole seconds. Must be positive.
	IntervalSeconds int `yaml:"interval_seconds"`

	// ReconnectDelaySeconds is the fixed backoff before retrying a failed connection.
	ReconnectDelaySeconds int `yaml:"reconnect_delay_seconds"`

	// ConnectTimeoutSeconds bounds each connection attempt.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
}

// OutputConfig contains hourly CSV output settings.
type OutputConfig struct {
	// Directory is where hourly CSV files are written. Created if missing.
	Directory string `yaml:"directory"`

	// Prefix is the file name prefix: <prefix>_<YYYY-MM-DD>_<HH>.csv
	Prefix string `yaml:"prefix"`

	// Timezone is the IANA zone name used for row timestamps and hour buckets.
	Timezone string `yaml:"timezone"`

	// ZoneLabel is the human-readable zone name used in the CSV header,
	// e.g. "IST" produces "Timestamp (24hr IST)".
	ZoneLabel string `yaml:"zone_label"`
}

// TagConfig is a single catalog entry: a human-readable tag name and the
// source-specific node identifier it resolves to.
type TagConfig struct {
	Name   string `yaml:"name"`
	NodeID string `yaml:"node_id"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MQTTConfig contains MQTT status publishing settings.
type MQTTConfig struct {
	Enabled     bool           `yaml:"enabled"`
	Broker      MQTTBroker     `yaml:"broker"`
	Auth        MQTTAuthConfig `yaml:"auth"`
	QoS         int            `yaml:"qos"`
	StatusTopic string         `yaml:"status_topic"`
}

// MQTTBroker contains MQTT broker connection details.
type MQTTBroker struct {
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

// InfluxDBConfig contains the optional time-series mirror settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// JournalConfig contains the optional SQLite run journal settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: OPCLOGGER_SECTION_KEY
// For example: OPCLOGGER_SOURCE_ENDPOINT, OPCLOGGER_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

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

// Default returns a Config with sensible defaults.
//
// The defaults match the Prosys Simulation Server environment the logger
// was originally written for: 60 second interval, 10 second reconnect
// delay, IST timestamps, and the standard simulation tag catalog.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Endpoint:              "opc.tcp://127.0.0.1:53530/OPCUA/SimulationServer",
			IntervalSeconds:       60,
			ReconnectDelaySeconds: 10,
			ConnectTimeoutSeconds: 10,
		},
		Output: OutputConfig{
			Directory: "./logs",
			Prefix:    "OPC_Log",
			Timezone:  "Asia/Kolkata",
			ZoneLabel: "IST",
		},
		Tags: []TagConfig{
			{Name: "Constant_Val", NodeID: "ns=3;i=1001"},
			{Name: "Counter_Val", NodeID: "ns=3;i=1002"},
			{Name: "Random_Val", NodeID: "ns=3;i=1003"},
			{Name: "Sawtooth_Val", NodeID: "ns=3;i=1004"},
			{Name: "Sinusoid_Val", NodeID: "ns=3;i=1005"},
			{Name: "Square_Val", NodeID: "ns=3;i=1006"},
			{Name: "Triangle_Val", NodeID: "ns=3;i=1007"},
			{Name: "MyLevel_Gauge", NodeID: "ns=6;s=MyLevel"},
			{Name: "MySwitch_State", NodeID: "ns=6;s=MySwitch"},
			{Name: "Generic_Double", NodeID: "ns=5;s=Double"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBroker{
				Host:     "localhost",
				Port:     1883,
				ClientID: "opclogger",
			},
			QoS:         1,
			StatusTopic: "opclogger/status",
		},
		InfluxDB: InfluxDBConfig{
			Bucket:        "opclogger",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Journal: JournalConfig{
			Path:        "./data/opclogger.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
	}
}

// LoadDefaults returns the built-in defaults with environment variable
// overrides applied, for running without a config file. Callers validate.
func LoadDefaults() *Config {
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: OPCLOGGER_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Source
	if v := os.Getenv("OPCLOGGER_SOURCE_ENDPOINT"); v != "" {
		cfg.Source.Endpoint = v
	}
	if v := os.Getenv("OPCLOGGER_SOURCE_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Source.IntervalSeconds = n
		}
	}

	// Output
	if v := os.Getenv("OPCLOGGER_OUTPUT_DIRECTORY"); v != "" {
		cfg.Output.Directory = v
	}

	// MQTT
	if v := os.Getenv("OPCLOGGER_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("OPCLOGGER_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("OPCLOGGER_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("OPCLOGGER_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Journal
	if v := os.Getenv("OPCLOGGER_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Source validation
	if c.Source.Endpoint == "" {
		errs = append(errs, "source.endpoint is required")
	}
	if c.Source.IntervalSeconds <= 0 {
		errs = append(errs, "source.interval_seconds must be positive")
	}
	if c.Source.ReconnectDelaySeconds <= 0 {
		errs = append(errs, "source.reconnect_delay_seconds must be positive")
	}

	// Output validation
	if c.Output.Directory == "" {
		errs = append(errs, "output.directory is required")
	}
	if c.Output.Prefix == "" {
		errs = append(errs, "output.prefix is required")
	}
	if _, err := time.LoadLocation(c.Output.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("output.timezone is not a valid IANA zone: %v", err))
	}

	// Tag catalog validation
	if len(c.Tags) == 0 {
		errs = append(errs, "tags must contain at least one entry")
	}
	seen := make(map[string]bool, len(c.Tags))
	for i, tag := range c.Tags {
		if tag.Name == "" {
			errs = append(errs, fmt.Sprintf("tags[%d].name is required", i))
			continue
		}
		if tag.NodeID == "" {
			errs = append(errs, fmt.Sprintf("tags[%d].node_id is required", i))
		}
		if seen[tag.Name] {
			errs = append(errs, fmt.Sprintf("tags[%d].name %q is duplicated", i, tag.Name))
		}
		seen[tag.Name] = true
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.StatusTopic == "" {
		errs = append(errs, "mqtt.status_topic is required when mqtt is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	// Journal validation
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when journal is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Location returns the configured output timezone.
// Validate must have passed for this to be reliable.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Output.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return loc, nil
}

// GetInterval returns the sampling interval as a Duration.
func (c *Config) GetInterval() time.Duration {
	return time.Duration(c.Source.IntervalSeconds) * time.Second
}

// GetReconnectDelay returns the reconnect backoff as a Duration.
func (c *Config) GetReconnectDelay() time.Duration {
	return time.Duration(c.Source.ReconnectDelaySeconds) * time.Second
}

// GetConnectTimeout returns the per-attempt connection timeout as a Duration.
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.Source.ConnectTimeoutSeconds) * time.Second
}
