package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: production\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("unexpected port %d", c.Server.Port)
	}
	if c.Replay.Interval != 100*time.Millisecond {
		t.Fatalf("unexpected interval %v", c.Replay.Interval)
	}
	if c.Replay.MaxDataPoints != 50 {
		t.Fatalf("unexpected window %d", c.Replay.MaxDataPoints)
	}
	if !c.Replay.AutoStart {
		t.Fatalf("auto_start should default to true")
	}
	if len(c.Replay.Metrics) != 1 || c.Replay.Metrics[0].Key() != "voltage" {
		t.Fatalf("unexpected default metrics %+v", c.Replay.Metrics)
	}
	if c.Predictor.BaseURL != "http://localhost:5000" {
		t.Fatalf("unexpected base url %q", c.Predictor.BaseURL)
	}
}

func TestParseExplicitFalseSurvivesDefaults(t *testing.T) {
	c, err := Parse([]byte("replay:\n  auto_start: false\nmetrics:\n  enabled: false\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Replay.AutoStart {
		t.Fatalf("auto_start should be false")
	}
	if c.Metrics.Enabled {
		t.Fatalf("metrics.enabled should be false")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad environment": "environment: qa\n",
		"zero window":     "replay:\n  max_data_points: -1\n",
		"bad url":         "predictor:\n  base_url: not a url\n",
		"kafka brokers":   "kafka:\n  enabled: true\n  brokers: []\n",
		"duplicate metric": "replay:\n  metrics:\n    - {id: Voltage, label: V, color: \"rgba(1, 2, 3, 1)\"}\n" +
			"    - {id: voltage, label: V2, color: \"rgba(1, 2, 3, 1)\"}\n",
	}
	for name, body := range cases {
		if _, err := Parse([]byte(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("replay:\n  interval: 250ms\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PREDICTOR_URL", "http://model:5000/")
	t.Setenv("REPLAY_INTERVAL", "20ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv() error = %v", err)
	}
	if c.Predictor.BaseURL != "http://model:5000" {
		t.Fatalf("unexpected base url %q", c.Predictor.BaseURL)
	}
	if c.Replay.Interval != 20*time.Millisecond {
		t.Fatalf("unexpected interval %v", c.Replay.Interval)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("unexpected kafka config %+v", c.Kafka)
	}
}

func TestLoadWithEnvMissingFile(t *testing.T) {
	t.Setenv("PORT", "9090")
	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadWithEnv() error = %v", err)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("unexpected port %d", c.Server.Port)
	}
}
