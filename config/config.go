package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Nav       NavConfig
	Readiness ReadinessConfig
	Artifacts ArtifactsConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser launched for each session.
type BrowserConfig struct {
	// Headless controls whether sessions run headless by default.
	// A request may override this per call.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL applied to every session.
	Proxy string

	// UserAgent is the navigator user agent presented to the site.
	UserAgent string

	// ViewportWidth and ViewportHeight size the emulated viewport.
	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080
}

// NavConfig controls the homepage-search navigation flow.
type NavConfig struct {
	// HomepageURL is the entry point the search flow starts from.
	HomepageURL string // default: "https://www.nseindia.com"

	// LoadAttempts is the number of full page-load attempts before the
	// minimal-wait fallback.
	LoadAttempts int // default: 3

	// LoadTimeout bounds a single full load attempt.
	LoadTimeout time.Duration // default: 60s

	// MinimalLoadTimeout bounds the final commit-level attempt.
	MinimalLoadTimeout time.Duration // default: 30s

	// RetryBackoffMin/Max bound the randomized sleep between load attempts.
	RetryBackoffMin time.Duration // default: 3s
	RetryBackoffMax time.Duration // default: 6s

	// TypeDelayMin/Max bound the randomized inter-character typing delay.
	TypeDelayMin time.Duration // default: 50ms
	TypeDelayMax time.Duration // default: 150ms

	// ElementTimeout bounds each single locator-candidate probe.
	ElementTimeout time.Duration // default: 2s

	// ContentTimeout bounds the wait for the quote page's main container.
	ContentTimeout time.Duration // default: 30s

	// SettleDelayMin/Max bound the randomized waits while the quote page
	// settles after navigation.
	SettleDelayMin time.Duration // default: 3s
	SettleDelayMax time.Duration // default: 5s
}

// ReadinessConfig controls the order-book readiness polling.
type ReadinessConfig struct {
	// MaxAttempts is the number of readiness polls before giving up.
	MaxAttempts int // default: 10

	// PollInterval is the sleep between polls.
	PollInterval time.Duration // default: 2s
}

// ArtifactsConfig controls where scrape artifacts are persisted.
type ArtifactsConfig struct {
	// OutputDir is the directory artifacts are written to.
	OutputDir string // default: "output"

	// Source is the {source} part of artifact file names.
	Source string // default: "www_nseindia_com"

	// Screenshot toggles full-page screenshot capture by default.
	Screenshot bool // default: true
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 2
}

// CacheConfig controls the quote response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 256

	// MaxAge is how long a cached quote may be served. Zero disables caching.
	MaxAge time.Duration // default: 0
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("QUOTES_HOST", "0.0.0.0"),
			Port: envIntOr("QUOTES_PORT", 8080),
			Mode: envOr("QUOTES_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("QUOTES_HEADLESS", true),
			NoSandbox:      envBoolOr("QUOTES_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("QUOTES_BROWSER_BIN"),
			Proxy:          os.Getenv("QUOTES_PROXY"),
			UserAgent:      envOr("QUOTES_USER_AGENT", defaultUserAgent),
			ViewportWidth:  envIntOr("QUOTES_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envIntOr("QUOTES_VIEWPORT_HEIGHT", 1080),
		},
		Nav: NavConfig{
			HomepageURL:        envOr("QUOTES_HOMEPAGE_URL", "https://www.nseindia.com"),
			LoadAttempts:       envIntOr("QUOTES_LOAD_ATTEMPTS", 3),
			LoadTimeout:        envDurationOr("QUOTES_LOAD_TIMEOUT", 60*time.Second),
			MinimalLoadTimeout: envDurationOr("QUOTES_MINIMAL_LOAD_TIMEOUT", 30*time.Second),
			RetryBackoffMin:    envDurationOr("QUOTES_RETRY_BACKOFF_MIN", 3*time.Second),
			RetryBackoffMax:    envDurationOr("QUOTES_RETRY_BACKOFF_MAX", 6*time.Second),
			TypeDelayMin:       envDurationOr("QUOTES_TYPE_DELAY_MIN", 50*time.Millisecond),
			TypeDelayMax:       envDurationOr("QUOTES_TYPE_DELAY_MAX", 150*time.Millisecond),
			ElementTimeout:     envDurationOr("QUOTES_ELEMENT_TIMEOUT", 2*time.Second),
			ContentTimeout:     envDurationOr("QUOTES_CONTENT_TIMEOUT", 30*time.Second),
			SettleDelayMin:     envDurationOr("QUOTES_SETTLE_DELAY_MIN", 3*time.Second),
			SettleDelayMax:     envDurationOr("QUOTES_SETTLE_DELAY_MAX", 5*time.Second),
		},
		Readiness: ReadinessConfig{
			MaxAttempts:  envIntOr("QUOTES_READY_ATTEMPTS", 10),
			PollInterval: envDurationOr("QUOTES_READY_INTERVAL", 2*time.Second),
		},
		Artifacts: ArtifactsConfig{
			OutputDir:  envOr("QUOTES_OUTPUT_DIR", "output"),
			Source:     envOr("QUOTES_ARTIFACT_SOURCE", "www_nseindia_com"),
			Screenshot: envBoolOr("QUOTES_SCREENSHOT", true),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("QUOTES_AUTH_ENABLED", false),
			APIKeys: envSliceOr("QUOTES_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("QUOTES_RATE_RPS", 1.0),
			Burst:             envIntOr("QUOTES_RATE_BURST", 2),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("QUOTES_CACHE_MAX_ENTRIES", 256),
			MaxAge:     envDurationOr("QUOTES_CACHE_MAX_AGE", 0),
		},
		Log: LogConfig{
			Level:  envOr("QUOTES_LOG_LEVEL", "info"),
			Format: envOr("QUOTES_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
