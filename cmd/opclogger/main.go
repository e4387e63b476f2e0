// OPC UA client logger.
//
// This is the main entry point for the logger: a long-running service
// that connects to an OPC UA-style data source, samples a fixed catalog
// of tags on an interval, and appends timestamped rows to hourly CSV
// files. Connection faults are answered with a fixed reconnect delay;
// the process survives them and resumes sampling.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/catalog"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/config"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/database"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/influxdb"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/logging"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/mqtt"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/journal"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/poller"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/samplelog"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/source/sim"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/status"
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

// shutdownJoinTimeout bounds the wait for the worker after a stop request.
const shutdownJoinTimeout = 10 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting OPC logger",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := loadConfig(log)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Build the tag catalog
	cat, err := catalog.FromConfig(cfg.Tags)
	if err != nil {
		return fmt.Errorf("building tag catalog: %w", err)
	}
	log.Info("tag catalog loaded", "tags", cat.Len())

	// Build the sample writer
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolving timezone: %w", err)
	}
	writer, err := samplelog.NewWriter(samplelog.Config{
		Directory: cfg.Output.Directory,
		Prefix:    cfg.Output.Prefix,
		Location:  loc,
		ZoneLabel: cfg.Output.ZoneLabel,
		Columns:   cat.Names(),
	})
	if err != nil {
		return fmt.Errorf("creating sample writer: %w", err)
	}
	log.Info("sample writer ready",
		"directory", cfg.Output.Directory,
		"prefix", cfg.Output.Prefix,
		"timezone", cfg.Output.Timezone,
	)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Assemble the status bus: log sink always, MQTT sink when connected
	sinks := []status.Sink{status.NewLogSink(log.With("component", "status"))}
	if mqttClient != nil {
		sinks = append(sinks, status.NewMQTTSink(mqttClient, cfg.MQTT.StatusTopic, byte(cfg.MQTT.QoS)))
	}
	bus := status.NewBus(0, sinks...)
	if err := bus.Start(); err != nil {
		return fmt.Errorf("starting status bus: %w", err)
	}
	defer bus.Stop()

	// Connect to InfluxDB mirror (optional)
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
		log.Info("InfluxDB mirror connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB mirror disabled")
	}

	// Open the run journal (optional)
	var recorder poller.RunRecorder
	if cfg.Journal.Enabled {
		db, err := database.Open(database.Config{
			Path:        cfg.Journal.Path,
			WALMode:     cfg.Journal.WALMode,
			BusyTimeout: cfg.Journal.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("opening journal database: %w", err)
		}
		defer func() {
			log.Info("closing journal database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing journal database", "error", closeErr)
			}
		}()

		j, err := journal.New(ctx, db)
		if err != nil {
			return fmt.Errorf("initialising run journal: %w", err)
		}
		recorder = j
		log.Info("run journal ready", "path", cfg.Journal.Path)
	} else {
		log.Info("run journal disabled")
	}

	// Build the controller around the simulated source
	pollerCfg := poller.Config{
		Client:         sim.New(),
		Catalog:        cat,
		Writer:         writer,
		Location:       loc,
		ReconnectDelay: cfg.GetReconnectDelay(),
		ConnectTimeout: cfg.GetConnectTimeout(),
		Status:         bus,
		Logger:         log.With("component", "poller"),
		Recorder:       recorder,
		OnReset: func() {
			log.Info("run finished")
		},
	}
	if influxClient != nil {
		pollerCfg.Mirror = influxClient
	}

	controller, err := poller.New(pollerCfg)
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}

	if err := controller.Start(cfg.Source.Endpoint, cfg.GetInterval()); err != nil {
		return fmt.Errorf("starting poller: %w", err)
	}
	log.Info("poller started",
		"endpoint", cfg.Source.Endpoint,
		"interval", cfg.GetInterval(),
		"reconnect_delay", cfg.GetReconnectDelay(),
	)
	if influxClient != nil {
		influxClient.WriteRunEvent("run_started", cfg.Source.Endpoint)
	}

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, stopping poller")
	controller.RequestStop()
	if !controller.Join(shutdownJoinTimeout) {
		log.Warn("poller did not stop within timeout, exiting anyway",
			"timeout", shutdownJoinTimeout,
		)
	}
	if influxClient != nil {
		influxClient.WriteRunEvent("run_stopped", cfg.Source.Endpoint)
		influxClient.Flush()
	}

	log.Info("OPC logger stopped", "events_dropped", bus.Dropped())
	return nil
}

// loadConfig loads configuration from the config file, falling back to
// built-in defaults (plus environment overrides) when no file exists.
func loadConfig(log *logging.Logger) (*config.Config, error) {
	path := getConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Info("no config file found, using defaults", "path", path)
		cfg := config.LoadDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validating default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log.Info("configuration loaded", "path", path)
	return cfg, nil
}

// getConfigPath returns the configuration file path.
// Uses OPCLOGGER_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("OPCLOGGER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
