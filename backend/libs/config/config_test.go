package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sample struct {
	Broker struct {
		URL   string        `yaml:"url" env:"TEST_BROKER_URL"`
		QoS   int           `yaml:"qos"`
		Delay time.Duration `yaml:"delay" env:"TEST_BROKER_DELAY"`
	} `yaml:"broker"`
	Enabled bool     `yaml:"enabled" env:"TEST_ENABLED"`
	Ratio   float64  `yaml:"ratio" env:"TEST_RATIO"`
	Topics  []string `yaml:"topics" env:"TEST_TOPICS"`
	Ignored string   `env:"-"`
}

func TestLoadFromYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	body := []byte("broker:\n  url: tcp://file:1883\n  qos: 1\nenabled: false\nratio: 0.5\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TEST_BROKER_URL", "tcp://env:1883")
	t.Setenv("TEST_ENABLED", "true")
	t.Setenv("TEST_BROKER_DELAY", "250ms")
	t.Setenv("TEST_TOPICS", "a/b, c/d,,")

	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Broker.URL != "tcp://env:1883" {
		t.Fatalf("expected env override, got %q", cfg.Broker.URL)
	}
	if cfg.Broker.QoS != 1 {
		t.Fatalf("expected qos from file, got %d", cfg.Broker.QoS)
	}
	if cfg.Broker.Delay != 250*time.Millisecond {
		t.Fatalf("expected 250ms delay, got %s", cfg.Broker.Delay)
	}
	if !cfg.Enabled {
		t.Fatalf("expected enabled from env")
	}
	if cfg.Ratio != 0.5 {
		t.Fatalf("expected ratio 0.5, got %v", cfg.Ratio)
	}
	if len(cfg.Topics) != 2 || cfg.Topics[0] != "a/b" || cfg.Topics[1] != "c/d" {
		t.Fatalf("unexpected topics %v", cfg.Topics)
	}
}

func TestLoadDerivesNestedKeys(t *testing.T) {
	t.Setenv("BROKER_QOS", "2")

	var cfg sample
	if err := Load("", &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Broker.QoS != 2 {
		t.Fatalf("expected derived key BROKER_QOS to apply, got %d", cfg.Broker.QoS)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TEST_RATIO", "not-a-number")

	var cfg sample
	if err := Load("", &cfg); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadRejectsNonPointer(t *testing.T) {
	if err := Load("", sample{}); err == nil {
		t.Fatalf("expected error for non-pointer target")
	}
	if err := Load("", nil); err == nil {
		t.Fatalf("expected error for nil target")
	}
}
