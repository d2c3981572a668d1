package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxResults != 100 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if cfg.Content.Source != "manifest" {
		t.Errorf("Content.Source = %q, want manifest", cfg.Content.Source)
	}
	if cfg.Kafka.Topics.ContentUpdates != "docs.content-updates" {
		t.Errorf("content updates topic = %q", cfg.Kafka.Topics.ContentUpdates)
	}
	if cfg.Redis.CacheTTL.Std() != 60*time.Second {
		t.Errorf("Redis.CacheTTL = %v", cfg.Redis.CacheTTL)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9999
search:
  defaultLimit: 5
  maxResults: 50
content:
  source: postgres
  refreshInterval: 1m
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 5 || cfg.Search.MaxResults != 50 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Content.Source != "postgres" {
		t.Errorf("Content.Source = %q", cfg.Content.Source)
	}
	if cfg.Content.RefreshInterval.Std() != time.Minute {
		t.Errorf("RefreshInterval = %v", cfg.Content.RefreshInterval)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	// Unset sections keep their defaults.
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want default", cfg.Redis.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DS_SERVER_PORT", "7070")
	t.Setenv("DS_POSTGRES_HOST", "db.internal")
	t.Setenv("DS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DS_CONTENT_SOURCE", "postgres")
	t.Setenv("DS_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q", cfg.Postgres.Host)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Content.Source != "postgres" {
		t.Errorf("Content.Source = %q", cfg.Content.Source)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestEnvOverrideIgnoresBadPort(t *testing.T) {
	t.Setenv("DS_SERVER_PORT", "not-a-port")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestDurationUnmarshalRejectsBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  readTimeout: soon\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "localhost", Port: 5432,
		User: "docsearch", Password: "pw",
		Database: "docs", SSLMode: "disable",
	}
	want := "host=localhost port=5432 user=docsearch password=pw dbname=docs sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
