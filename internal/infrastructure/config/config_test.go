package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "localhost" || cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("broker = %s:%d, want localhost:1883", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("qos = %d, want 1", cfg.MQTT.QoS)
	}
	if cfg.ReconnectDelay() != 5*time.Second {
		t.Errorf("ReconnectDelay() = %v, want 5s", cfg.ReconnectDelay())
	}
	if cfg.Remote.BaseURL != "http://localhost:3000/api" {
		t.Errorf("remote base URL = %q", cfg.Remote.BaseURL)
	}
	if cfg.Database.Path != "./data/blindsync.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("api port = %d, want 8080", cfg.API.Port)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker:
    host: broker.lan
    port: 8883
    tls: true
  reconnect:
    delay: 12
remote:
  base_url: https://store.lan/api
  timeout: 3
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.lan" || !cfg.MQTT.Broker.TLS {
		t.Errorf("broker = %+v, want broker.lan with TLS", cfg.MQTT.Broker)
	}
	if cfg.ReconnectDelay() != 12*time.Second {
		t.Errorf("ReconnectDelay() = %v, want 12s", cfg.ReconnectDelay())
	}
	if cfg.RemoteTimeout() != 3*time.Second {
		t.Errorf("RemoteTimeout() = %v, want 3s", cfg.RemoteTimeout())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.API.Port != 8080 {
		t.Errorf("api port = %d, want default 8080", cfg.API.Port)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker:
    host: broker.lan
`)
	t.Setenv("BLINDSYNC_MQTT_HOST", "env-broker.lan")
	t.Setenv("BLINDSYNC_REMOTE_TOKEN", "secret-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "env-broker.lan" {
		t.Errorf("broker host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.Remote.Token != "secret-token" {
		t.Errorf("remote token = %q, want env value", cfg.Remote.Token)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() = nil error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantPart string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"bad qos", func(c *Config) { c.MQTT.QoS = 3 }, "mqtt.qos"},
		{"zero reconnect delay", func(c *Config) { c.MQTT.Reconnect.Delay = 0 }, "mqtt.reconnect.delay"},
		{"missing remote url", func(c *Config) { c.Remote.BaseURL = "" }, "remote.base_url"},
		{"bad api port", func(c *Config) { c.API.Port = 0 }, "api.port"},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantPart == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantPart) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantPart)
			}
		})
	}
}
