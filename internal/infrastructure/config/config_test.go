package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
source:
  endpoint: "opc.tcp://10.0.0.5:4840"
  interval_seconds: 5
output:
  directory: "/tmp/opclogs"
  prefix: "PlantA"
  timezone: "UTC"
  zone_label: "UTC"
tags:
  - name: "Temp"
    node_id: "ns=2;s=Temp"
  - name: "Pressure"
    node_id: "ns=2;s=Pressure"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source.Endpoint != "opc.tcp://10.0.0.5:4840" {
		t.Errorf("Source.Endpoint = %q, want %q", cfg.Source.Endpoint, "opc.tcp://10.0.0.5:4840")
	}

	if cfg.Source.IntervalSeconds != 5 {
		t.Errorf("Source.IntervalSeconds = %d, want 5", cfg.Source.IntervalSeconds)
	}

	// File value overrides the default catalog entirely
	if len(cfg.Tags) != 2 {
		t.Fatalf("len(Tags) = %d, want 2", len(cfg.Tags))
	}
	if cfg.Tags[0].Name != "Temp" || cfg.Tags[1].Name != "Pressure" {
		t.Errorf("Tags = %v, want Temp then Pressure", cfg.Tags)
	}

	// Unset sections keep defaults
	if cfg.Source.ReconnectDelaySeconds != 10 {
		t.Errorf("Source.ReconnectDelaySeconds = %d, want default 10", cfg.Source.ReconnectDelaySeconds)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return Default() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "empty endpoint",
			mutate:  func(c *Config) { c.Source.Endpoint = "" },
			wantErr: true,
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Source.IntervalSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "negative interval",
			mutate:  func(c *Config) { c.Source.IntervalSeconds = -5 },
			wantErr: true,
		},
		{
			name:    "zero reconnect delay",
			mutate:  func(c *Config) { c.Source.ReconnectDelaySeconds = 0 },
			wantErr: true,
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Output.Timezone = "Mars/Olympus" },
			wantErr: true,
		},
		{
			name:    "empty catalog",
			mutate:  func(c *Config) { c.Tags = nil },
			wantErr: true,
		},
		{
			name: "duplicate tag name",
			mutate: func(c *Config) {
				c.Tags = []TagConfig{
					{Name: "A", NodeID: "ns=1;i=1"},
					{Name: "A", NodeID: "ns=1;i=2"},
				}
			},
			wantErr: true,
		},
		{
			name: "tag missing node id",
			mutate: func(c *Config) {
				c.Tags = []TagConfig{{Name: "A", NodeID: ""}}
			},
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "mqtt enabled without topic",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.StatusTopic = ""
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = ""
			},
			wantErr: true,
		},
		{
			name: "journal enabled without path",
			mutate: func(c *Config) {
				c.Journal.Enabled = true
				c.Journal.Path = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	t.Setenv("OPCLOGGER_SOURCE_ENDPOINT", "opc.tcp://plant:4840")
	t.Setenv("OPCLOGGER_SOURCE_INTERVAL", "15")
	t.Setenv("OPCLOGGER_OUTPUT_DIRECTORY", "/var/log/opc")
	t.Setenv("OPCLOGGER_MQTT_HOST", "mqtt.example.com")
	t.Setenv("OPCLOGGER_MQTT_USERNAME", "testuser")
	t.Setenv("OPCLOGGER_MQTT_PASSWORD", "testpass")
	t.Setenv("OPCLOGGER_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("OPCLOGGER_JOURNAL_PATH", "/var/lib/opc/journal.db")

	applyEnvOverrides(cfg)

	if cfg.Source.Endpoint != "opc.tcp://plant:4840" {
		t.Errorf("Source.Endpoint = %q, want %q", cfg.Source.Endpoint, "opc.tcp://plant:4840")
	}

	if cfg.Source.IntervalSeconds != 15 {
		t.Errorf("Source.IntervalSeconds = %d, want 15", cfg.Source.IntervalSeconds)
	}

	if cfg.Output.Directory != "/var/log/opc" {
		t.Errorf("Output.Directory = %q, want %q", cfg.Output.Directory, "/var/log/opc")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}

	if cfg.Journal.Path != "/var/lib/opc/journal.db" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "/var/lib/opc/journal.db")
	}
}

func TestApplyEnvOverrides_BadInterval(t *testing.T) {
	cfg := Default()
	t.Setenv("OPCLOGGER_SOURCE_INTERVAL", "not-a-number")
	applyEnvOverrides(cfg)

	if cfg.Source.IntervalSeconds != 60 {
		t.Errorf("Source.IntervalSeconds = %d, want default 60 for unparseable override", cfg.Source.IntervalSeconds)
	}
}

func TestLoadDefaults_AppliesEnv(t *testing.T) {
	t.Setenv("OPCLOGGER_SOURCE_ENDPOINT", "opc.tcp://plant:4840")

	cfg := LoadDefaults()

	if cfg.Source.Endpoint != "opc.tcp://plant:4840" {
		t.Errorf("Source.Endpoint = %q, want env override", cfg.Source.Endpoint)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate, got %v", err)
	}

	if cfg.Source.IntervalSeconds != 60 {
		t.Errorf("Default Source.IntervalSeconds = %d, want 60", cfg.Source.IntervalSeconds)
	}

	if cfg.Source.ReconnectDelaySeconds != 10 {
		t.Errorf("Default Source.ReconnectDelaySeconds = %d, want 10", cfg.Source.ReconnectDelaySeconds)
	}

	if len(cfg.Tags) != 10 {
		t.Errorf("Default len(Tags) = %d, want 10", len(cfg.Tags))
	}

	if cfg.Output.Prefix != "OPC_Log" {
		t.Errorf("Default Output.Prefix = %q, want %q", cfg.Output.Prefix, "OPC_Log")
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := &Config{
		Source: SourceConfig{
			IntervalSeconds:       5,
			ReconnectDelaySeconds: 10,
			ConnectTimeoutSeconds: 7,
		},
	}

	if got := cfg.GetInterval().Seconds(); got != 5 {
		t.Errorf("GetInterval() = %v, want 5", got)
	}

	if got := cfg.GetReconnectDelay().Seconds(); got != 10 {
		t.Errorf("GetReconnectDelay() = %v, want 10", got)
	}

	if got := cfg.GetConnectTimeout().Seconds(); got != 7 {
		t.Errorf("GetConnectTimeout() = %v, want 7", got)
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := Default()

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc.String() != "Asia/Kolkata" {
		t.Errorf("Location() = %q, want %q", loc.String(), "Asia/Kolkata")
	}
}
