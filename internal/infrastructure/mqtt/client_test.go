package mqtt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/config"
)

// newDisconnectedClient builds a client that has never connected.
// Useful for exercising validation paths without a broker.
func newDisconnectedClient(cfg config.MQTTConfig) *Client {
	opts := buildClientOptions(cfg)
	return &Client{
		cfg:     cfg,
		options: opts,
		client:  pahomqtt.NewClient(opts),
	}
}

func testMQTTConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBroker{
			Host:     "localhost",
			Port:     1883,
			ClientID: "opclogger-test",
		},
		QoS:         1,
		StatusTopic: "opclogger/status",
	}
}

func TestBuildClientOptions_BrokerURL(t *testing.T) {
	tests := []struct {
		name string
		tls  bool
		want string
	}{
		{name: "plain tcp", tls: false, want: "tcp://localhost:1883"},
		{name: "tls uses ssl scheme", tls: true, want: "ssl://localhost:1883"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testMQTTConfig()
			cfg.Broker.TLS = tt.tls

			opts := buildClientOptions(cfg)
			if len(opts.Servers) != 1 {
				t.Fatalf("got %d servers, want 1", len(opts.Servers))
			}
			if got := opts.Servers[0].String(); got != tt.want {
				t.Errorf("broker URL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions_ClientID(t *testing.T) {
	opts := buildClientOptions(testMQTTConfig())
	if opts.ClientID != "opclogger-test" {
		t.Errorf("client ID = %q, want %q", opts.ClientID, "opclogger-test")
	}
}

func TestBuildClientOptions_Auth(t *testing.T) {
	cfg := testMQTTConfig()
	cfg.Auth.Username = "logger"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)
	if opts.Username != "logger" {
		t.Errorf("username = %q, want %q", opts.Username, "logger")
	}
	if opts.Password != "secret" {
		t.Errorf("password not carried through")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testMQTTConfig())
	configureLWT(opts, "opclogger/status", "opclogger-test")

	if !opts.WillEnabled {
		t.Fatal("LWT not enabled")
	}
	if opts.WillTopic != "opclogger/status" {
		t.Errorf("will topic = %q, want %q", opts.WillTopic, "opclogger/status")
	}
	if !opts.WillRetained {
		t.Error("will message should be retained")
	}

	var payload map[string]string
	if err := json.Unmarshal(opts.WillPayload, &payload); err != nil {
		t.Fatalf("will payload is not valid JSON: %v", err)
	}
	if payload["status"] != "offline" {
		t.Errorf("will status = %q, want %q", payload["status"], "offline")
	}
	if payload["reason"] != "unexpected_disconnect" {
		t.Errorf("will reason = %q, want %q", payload["reason"], "unexpected_disconnect")
	}
}

func TestStatusPayloads(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus string
		wantReason string
	}{
		{
			name:       "online",
			payload:    buildOnlinePayload("opclogger-test"),
			wantStatus: "online",
		},
		{
			name:       "graceful offline",
			payload:    buildOfflinePayload("opclogger-test"),
			wantStatus: "offline",
			wantReason: "graceful_shutdown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decoded map[string]string
			if err := json.Unmarshal([]byte(tt.payload), &decoded); err != nil {
				t.Fatalf("payload is not valid JSON: %v", err)
			}
			if decoded["status"] != tt.wantStatus {
				t.Errorf("status = %q, want %q", decoded["status"], tt.wantStatus)
			}
			if tt.wantReason != "" && decoded["reason"] != tt.wantReason {
				t.Errorf("reason = %q, want %q", decoded["reason"], tt.wantReason)
			}
			if decoded["client_id"] != "opclogger-test" {
				t.Errorf("client_id = %q, want %q", decoded["client_id"], "opclogger-test")
			}
		})
	}
}

func TestPublish_Validation(t *testing.T) {
	c := newDisconnectedClient(testMQTTConfig())

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{
			name:    "empty topic",
			topic:   "",
			payload: []byte("x"),
			qos:     1,
			wantErr: ErrInvalidTopic,
		},
		{
			name:    "invalid qos",
			topic:   "opclogger/status",
			payload: []byte("x"),
			qos:     3,
			wantErr: ErrInvalidQoS,
		},
		{
			name:    "oversized payload",
			topic:   "opclogger/status",
			payload: bytes.Repeat([]byte("x"), maxPayloadSize+1),
			qos:     1,
			wantErr: ErrPublishFailed,
		},
		{
			name:    "not connected",
			topic:   "opclogger/status",
			payload: []byte("x"),
			qos:     1,
			wantErr: ErrNotConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := newDisconnectedClient(testMQTTConfig())

	err := c.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_ContextCancelled(t *testing.T) {
	c := newDisconnectedClient(testMQTTConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.HealthCheck(ctx)
	if err == nil || !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("HealthCheck() error = %v, want context cancellation", err)
	}
}

func TestClose_NilClient(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v, want nil", err)
	}
}
