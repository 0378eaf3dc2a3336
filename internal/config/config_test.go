package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("CONFIG_ENV")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Mode != "release" {
		t.Fatalf("expected default mode release, got %q", cfg.Mode)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.ReadLimit != 32768 {
		t.Fatalf("expected default read limit 32768, got %d", cfg.ReadLimit)
	}
	if cfg.SendBuffer != 32 {
		t.Fatalf("expected default send buffer 32, got %d", cfg.SendBuffer)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Fatalf("expected default ping period 54s, got %s", cfg.PingPeriod)
	}
}
