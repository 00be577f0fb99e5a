package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port == "" {
		t.Error("expected default server port")
	}
	if cfg.Database.Postgres.MaxConnections <= 0 {
		t.Error("expected positive postgres max connections")
	}
	if cfg.Cache.QuoteTTL <= 0 {
		t.Error("expected positive quote cache TTL")
	}
	if cfg.History.MaxParallel <= 0 {
		t.Error("expected positive history fan-out limit")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Run("int default on malformed value", func(t *testing.T) {
		t.Setenv("TEST_INT_VALUE", "not-a-number")
		if got := getEnvAsInt("TEST_INT_VALUE", 42); got != 42 {
			t.Errorf("expected default 42, got %d", got)
		}
	})

	t.Run("int parses valid value", func(t *testing.T) {
		t.Setenv("TEST_INT_VALUE", "7")
		if got := getEnvAsInt("TEST_INT_VALUE", 42); got != 7 {
			t.Errorf("expected 7, got %d", got)
		}
	})

	t.Run("duration parses valid value", func(t *testing.T) {
		t.Setenv("TEST_DURATION_VALUE", "30s")
		if got := getEnvAsDuration("TEST_DURATION_VALUE", time.Minute); got != 30*time.Second {
			t.Errorf("expected 30s, got %v", got)
		}
	})

	t.Run("float default on malformed value", func(t *testing.T) {
		t.Setenv("TEST_FLOAT_VALUE", "abc")
		if got := getEnvAsFloat("TEST_FLOAT_VALUE", 2.5); got != 2.5 {
			t.Errorf("expected default 2.5, got %v", got)
		}
	})
}
