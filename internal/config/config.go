// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Catalog provider names.
const (
	ProviderGoogleBooks = "googlebooks"
	ProviderOpenLibrary = "openlibrary"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Data     DataConfig
	DocStore DocStoreConfig
	Catalog  CatalogConfig
	Library  LibraryConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed CORS origins (default: *)
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit      int
	RateLimitBurst int
}

// DataConfig holds local data configuration.
type DataConfig struct {
	// BasePath holds the cache (cache/) and the search index (search/).
	BasePath string
	// CacheInMemory keeps the read-through cache in memory only.
	CacheInMemory bool
}

// CachePath returns the directory of the local read-through cache.
func (d DataConfig) CachePath() string {
	return filepath.Join(d.BasePath, "cache")
}

// SearchPath returns the directory of the library search index.
func (d DataConfig) SearchPath() string {
	return filepath.Join(d.BasePath, "search")
}

// DocStoreConfig holds the remote document store configuration.
type DocStoreConfig struct {
	URL     string
	APIKey  string // Optional, sent as a bearer token
	Timeout time.Duration
}

// CatalogConfig holds the book search providers configuration.
type CatalogConfig struct {
	// DefaultProvider is used when a request names none (default: googlebooks).
	DefaultProvider   string
	GoogleBooksAPIKey string // Optional
	GoogleBooksURL    string
	OpenLibraryURL    string
	// RequestsPerSecond and Burst shape outbound calls per provider.
	RequestsPerSecond float64
	Burst             int
}

// LibraryConfig holds library behavior configuration.
type LibraryConfig struct {
	// DefaultStatus is the status of books added without one (wishlist or toRead).
	DefaultStatus string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("pagetrail", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")
	rateLimit := fs.String("rate-limit", "", "API requests per minute per client IP, 0 disables (default: 300)")

	// Data flags
	dataPath := fs.String("data-path", "", "Base path for the local cache and search index")
	cacheInMemory := fs.String("cache-in-memory", "", "Keep the local cache in memory (default: false)")

	// Document store flags
	docStoreURL := fs.String("docstore-url", "", "Document store base URL")
	docStoreAPIKey := fs.String("docstore-api-key", "", "Document store API key")
	docStoreTimeout := fs.String("docstore-timeout", "", "Document store request timeout (default: 10s)")

	// Catalog flags
	catalogProvider := fs.String("catalog-provider", "", "Default catalog provider (googlebooks, openlibrary)")
	catalogRPS := fs.String("catalog-rps", "", "Catalog requests per second per provider (default: 1)")
	catalogBurst := fs.String("catalog-burst", "", "Catalog request burst per provider (default: 3)")

	defaultStatus := fs.String("default-status", "", "Status for newly added books (wishlist, toRead)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins:    splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
			RateLimit:      getIntConfigValue(*rateLimit, "SERVER_RATE_LIMIT", 300),
			RateLimitBurst: getIntConfigValue("", "SERVER_RATE_LIMIT_BURST", 50),
		},
		Data: DataConfig{
			BasePath:      getConfigValue(*dataPath, "DATA_PATH", ""),
			CacheInMemory: getBoolConfigValue(*cacheInMemory, "CACHE_IN_MEMORY", false),
		},
		DocStore: DocStoreConfig{
			URL:    strings.TrimRight(getConfigValue(*docStoreURL, "DOCSTORE_URL", ""), "/"),
			APIKey: getConfigValue(*docStoreAPIKey, "DOCSTORE_API_KEY", ""),
		},
		Catalog: CatalogConfig{
			DefaultProvider:   getConfigValue(*catalogProvider, "CATALOG_DEFAULT_PROVIDER", ProviderGoogleBooks),
			GoogleBooksAPIKey: getConfigValue("", "GOOGLE_BOOKS_API_KEY", ""),
			GoogleBooksURL:    getConfigValue("", "GOOGLE_BOOKS_URL", "https://www.googleapis.com/books/v1"),
			OpenLibraryURL:    getConfigValue("", "OPEN_LIBRARY_URL", "https://openlibrary.org"),
			RequestsPerSecond: getFloatConfigValue(*catalogRPS, "CATALOG_RPS", 1),
			Burst:             getIntConfigValue(*catalogBurst, "CATALOG_BURST", 3),
		},
		Library: LibraryConfig{
			DefaultStatus: getConfigValue(*defaultStatus, "LIBRARY_DEFAULT_STATUS", "wishlist"),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	if cfg.DocStore.Timeout, err = getDurationConfigValue(*docStoreTimeout, "DOCSTORE_TIMEOUT", "10s"); err != nil {
		return nil, fmt.Errorf("invalid document store timeout: %w", err)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Server.RateLimit < 0 || (c.Server.RateLimit > 0 && c.Server.RateLimitBurst < 1) {
		return errors.New("server rate limit must be zero or allow a burst of at least one")
	}

	if c.Data.BasePath == "" && !c.Data.CacheInMemory {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.DocStore.URL == "" {
		return errors.New("DOCSTORE_URL is required")
	}
	if u, err := url.Parse(c.DocStore.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid document store url: %s", c.DocStore.URL)
	}
	if c.DocStore.Timeout <= 0 {
		return errors.New("document store timeout must be positive")
	}

	switch c.Catalog.DefaultProvider {
	case ProviderGoogleBooks, ProviderOpenLibrary:
	default:
		return fmt.Errorf("invalid catalog provider: %s (must be googlebooks or openlibrary)", c.Catalog.DefaultProvider)
	}
	if c.Catalog.RequestsPerSecond <= 0 || c.Catalog.Burst < 1 {
		return errors.New("catalog rate limit must allow at least one request")
	}

	switch c.Library.DefaultStatus {
	case "wishlist", "toRead":
	default:
		return fmt.Errorf("invalid default status: %s (must be wishlist or toRead)", c.Library.DefaultStatus)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data path to ~/PageTrail/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "PageTrail", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", strValue, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
