package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Data:     DataConfig{BasePath: "/some/path"},
		DocStore: DocStoreConfig{URL: "https://store.example.com", Timeout: 10 * time.Second},
		Catalog: CatalogConfig{
			DefaultProvider:   ProviderGoogleBooks,
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Library: LibraryConfig{DefaultStatus: "wishlist"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"missing docstore url", func(c *Config) { c.DocStore.URL = "" }, "DOCSTORE_URL is required"},
		{"relative docstore url", func(c *Config) { c.DocStore.URL = "store.local" }, "invalid document store url"},
		{"zero docstore timeout", func(c *Config) { c.DocStore.Timeout = 0 }, "timeout must be positive"},
		{"unknown provider", func(c *Config) { c.Catalog.DefaultProvider = "amazon" }, "invalid catalog provider"},
		{"zero rate", func(c *Config) { c.Catalog.RequestsPerSecond = 0 }, "catalog rate limit"},
		{"reading default status", func(c *Config) { c.Library.DefaultStatus = "reading" }, "invalid default status"},
		{"empty data path", func(c *Config) { c.Data.BasePath = "" }, "data base path cannot be empty"},
		{"negative api rate limit", func(c *Config) { c.Server.RateLimit = -1 }, "server rate limit"},
		{"rate limit without burst", func(c *Config) { c.Server.RateLimit = 60 }, "burst of at least one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidate_InMemoryCacheAllowsEmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""
	cfg.Data.CacheInMemory = true

	assert.NoError(t, cfg.Validate())
}

func TestExpandDataPath_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{}

	require.NoError(t, cfg.expandDataPath())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "PageTrail", "data"), cfg.Data.BasePath)
	assert.Equal(t, filepath.Join(homeDir, "PageTrail", "data", "cache"), cfg.Data.CachePath())
	assert.Equal(t, filepath.Join(homeDir, "PageTrail", "data", "search"), cfg.Data.SearchPath())
}

func TestExpandDataPath_TildeExpansion(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "~/books-data"}}

	require.NoError(t, cfg.expandDataPath())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "books-data"), cfg.Data.BasePath)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(
		"# local overrides\n"+
			"DOCSTORE_URL=\"https://file.example.com/\"\n"+
			"CATALOG_RPS=2.5\n"+
			"LOG_LEVEL=debug\n",
	), 0o600))

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DATA_PATH", dir)
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := loadConfig([]string{"-env-file", envPath, "-port", "9100", "-cors-origins", "http://a.test, http://b.test"})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port, "flag beats env")
	assert.Equal(t, "warn", cfg.Logger.Level, "env beats .env file")
	assert.Equal(t, "https://file.example.com", cfg.DocStore.URL, ".env fills the gap, trailing slash trimmed")
	assert.InDelta(t, 2.5, cfg.Catalog.RequestsPerSecond, 0.001)
	assert.Equal(t, 3, cfg.Catalog.Burst)
	assert.Equal(t, 10*time.Second, cfg.DocStore.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "wishlist", cfg.Library.DefaultStatus)
	assert.Equal(t, 300, cfg.Server.RateLimit)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("DOCSTORE_URL", "https://store.example.com")

	_, err := loadConfig([]string{"-env-file", filepath.Join(t.TempDir(), "missing"), "-docstore-timeout", "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document store timeout")
}

func TestGetBoolConfigValue(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"no", true, false},
		{"", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, getBoolConfigValue(tt.value, "", tt.def))
		})
	}
}
