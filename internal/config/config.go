package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Spreadsheet sources
	DefaultSpreadsheetID string
	// Cities maps a display name to a spreadsheet id, parsed from
	// CITY_SPREADSHEETS as "Name=id,Name=id".
	Cities map[string]string

	// Fetching
	FetchTimeout time.Duration

	// Cache
	CacheTTL        time.Duration
	CacheMaxEntries int

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DefaultSpreadsheetID: getEnv("SPREADSHEET_ID", ""),
		Cities:               parseCities(getEnv("CITY_SPREADSHEETS", "")),

		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 30*time.Second),

		CacheTTL:        getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 32),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DefaultSpreadsheetID == "" && len(c.Cities) == 0 {
		errs = append(errs, "no spreadsheet configured: set SPREADSHEET_ID or CITY_SPREADSHEETS")
	}

	for city, id := range c.Cities {
		if id == "" {
			errs = append(errs, fmt.Sprintf("city '%s' has an empty spreadsheet id", city))
		}
	}

	if c.FetchTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	}

	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.CacheMaxEntries < 1 {
		errs = append(errs, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheMaxEntries))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// SourceID resolves a request's source parameter: a configured city
// name, an explicit spreadsheet id, or the default when empty.
func (c *Config) SourceID(source string) (string, bool) {
	if source == "" {
		return c.DefaultSpreadsheetID, c.DefaultSpreadsheetID != ""
	}
	if id, ok := c.Cities[source]; ok {
		return id, true
	}
	return source, true
}

func parseCities(raw string) map[string]string {
	cities := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, id, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		id = strings.TrimSpace(id)
		if name == "" {
			continue
		}
		cities[name] = id
	}
	return cities
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
