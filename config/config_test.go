package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.Nav.LoadAttempts != 3 {
		t.Errorf("LoadAttempts = %d, want 3", cfg.Nav.LoadAttempts)
	}
	if cfg.Nav.HomepageURL != "https://www.nseindia.com" {
		t.Errorf("HomepageURL = %q", cfg.Nav.HomepageURL)
	}
	if cfg.Readiness.MaxAttempts != 10 || cfg.Readiness.PollInterval != 2*time.Second {
		t.Errorf("readiness defaults = %d/%v, want 10/2s", cfg.Readiness.MaxAttempts, cfg.Readiness.PollInterval)
	}
	if cfg.Artifacts.OutputDir != "output" || cfg.Artifacts.Source != "www_nseindia_com" {
		t.Errorf("artifact defaults = %q/%q", cfg.Artifacts.OutputDir, cfg.Artifacts.Source)
	}
	if cfg.Cache.MaxAge != 0 {
		t.Errorf("cache should be disabled by default, MaxAge = %v", cfg.Cache.MaxAge)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QUOTES_PORT", "9090")
	t.Setenv("QUOTES_HEADLESS", "false")
	t.Setenv("QUOTES_LOAD_TIMEOUT", "90s")
	t.Setenv("QUOTES_API_KEYS", "key-a, key-b")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Browser.Headless {
		t.Error("Headless override not applied")
	}
	if cfg.Nav.LoadTimeout != 90*time.Second {
		t.Errorf("LoadTimeout = %v, want 90s", cfg.Nav.LoadTimeout)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[1] != "key-b" {
		t.Errorf("APIKeys = %v", cfg.Auth.APIKeys)
	}
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("QUOTES_PORT", "not-a-number")
	t.Setenv("QUOTES_READY_INTERVAL", "soon")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("malformed int should fall back, Port = %d", cfg.Server.Port)
	}
	if cfg.Readiness.PollInterval != 2*time.Second {
		t.Errorf("malformed duration should fall back, PollInterval = %v", cfg.Readiness.PollInterval)
	}
}
