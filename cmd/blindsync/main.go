// Blind Sync - device-state synchronization service for networked
// window blinds.
//
// The service keeps three sources of truth aligned: the remote HTTP
// store, a durable local cache and the live MQTT transport the devices
// report on. It runs headless and exposes a small read-only HTTP
// surface for observation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/AbigailTB/proyecto-nuevo-sub000/migrations"

	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/api"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/cache"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/controller"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/config"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/database"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/influxdb"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/logging"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/mqtt"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/remote"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting blind sync",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the local cache database
	db, err := database.Open(ctx, database.Config{
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
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	localCache := cache.New(db.DB)

	// Remote store client
	remoteStore := remote.New(cfg.Remote.BaseURL, cfg.RemoteTimeout(), func() string {
		return cfg.Remote.Token
	})
	log.Info("remote store client ready", "base_url", cfg.Remote.BaseURL)

	// Transport client. The initial connect must succeed; once the session
	// is up, lost connections retry on a fixed interval automatically.
	transport := mqtt.New(cfg.MQTT)
	transport.SetLogger(log)
	transport.SetOnStateChange(func(state mqtt.ConnState) {
		log.Info("mqtt connection state changed", "state", state.String())
	})
	if connErr := transport.Connect(); connErr != nil {
		return fmt.Errorf("connecting to MQTT: %w", connErr)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		transport.Disconnect()
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional)
	var history controller.History
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
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
		history = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Synchronization controller
	ctrl := controller.New(transport, remoteStore, localCache, history)
	ctrl.SetLogger(log)
	defer ctrl.Close()

	if loadErr := ctrl.LoadDevices(ctx); loadErr != nil {
		return fmt.Errorf("loading devices: %w", loadErr)
	}
	if loadErr := ctrl.LoadSchedules(ctx); loadErr != nil {
		return fmt.Errorf("loading schedules: %w", loadErr)
	}
	status := ctrl.GetStatus()
	log.Info("synchronization controller ready",
		"devices", status.DeviceCount,
		"offline", status.Offline,
	)

	// Read-only observer API
	server := api.New(api.Deps{
		Config:     cfg.API,
		Logger:     log,
		Controller: ctrl,
		Version:    version,
	})
	server.Start(ctx)
	defer server.Close()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("blind sync stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BLINDSYNC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BLINDSYNC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
