package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

// Helper function to clear environment variables
func clearEnvVars() {
	for _, name := range []string{
		"I765_MODE", "I765_HOST", "I765_PORT",
		"I765_PROFILES_DIR", "I765_TEMPLATES_DIR", "I765_SCHEMAS_DIR", "I765_OUTPUT_DIR",
		"I765_SCHEMA_PATH", "I765_SCHEMA_URL", "I765_TEMPLATE_PATH", "I765_TEMPLATE_URL",
		"I765_CACHE_STRATEGY", "I765_CACHE_BACKEND", "I765_CACHE_TTL", "I765_CACHE_CAPACITY",
		"I765_REDIS_ADDR", "I765_REDIS_PASSWORD", "I765_REDIS_DB",
		"I765_LOCALE", "I765_MARK_TOKEN", "I765_LOG_LEVEL", "I765_MAX_FILE_SIZE",
	} {
		os.Unsetenv(name)
	}
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	// Save original args and environment
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	// Set minimal args (just program name)
	setArgs([]string{"mcp-i765-filler"})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	// Verify default values
	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "stdio")
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, "127.0.0.1")
	}
	if cfg.Port != 8080 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 8080)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.MaxFileSize != 50*1024*1024 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 50*1024*1024)
	}
	if cfg.CacheStrategy != "cache-first" {
		t.Errorf("LoadFromFlags() CacheStrategy = %v, want %v", cfg.CacheStrategy, "cache-first")
	}
	if cfg.CacheBackend != "memory" {
		t.Errorf("LoadFromFlags() CacheBackend = %v, want %v", cfg.CacheBackend, "memory")
	}
	// Directories should be populated and absolute
	if cfg.ProfilesDir == "" || !filepath.IsAbs(cfg.ProfilesDir) {
		t.Errorf("LoadFromFlags() ProfilesDir should be an absolute path, got %q", cfg.ProfilesDir)
	}
	if cfg.OutputDir == "" || !filepath.IsAbs(cfg.OutputDir) {
		t.Errorf("LoadFromFlags() OutputDir should be an absolute path, got %q", cfg.OutputDir)
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name            string
		args            []string
		wantMode        string
		wantHost        string
		wantPort        int
		wantLogLevel    string
		wantMaxFileSize int64
		wantCacheStrat  string
		wantLocale      string
		wantMarkToken   string
	}{
		{
			name:            "stdio mode defaults",
			args:            []string{"mcp-i765-filler"},
			wantMode:        "stdio",
			wantHost:        "127.0.0.1",
			wantPort:        8080,
			wantLogLevel:    "info",
			wantMaxFileSize: 50 * 1024 * 1024,
			wantCacheStrat:  "cache-first",
			wantLocale:      "en",
			wantMarkToken:   "X",
		},
		{
			name:            "server mode",
			args:            []string{"mcp-i765-filler", "--mode=server"},
			wantMode:        "server",
			wantHost:        "127.0.0.1",
			wantPort:        8080,
			wantLogLevel:    "info",
			wantMaxFileSize: 50 * 1024 * 1024,
			wantCacheStrat:  "cache-first",
			wantLocale:      "en",
			wantMarkToken:   "X",
		},
		{
			name:            "server mode with custom host and port",
			args:            []string{"mcp-i765-filler", "--mode=server", "--host=0.0.0.0", "--port=9090"},
			wantMode:        "server",
			wantHost:        "0.0.0.0",
			wantPort:        9090,
			wantLogLevel:    "info",
			wantMaxFileSize: 50 * 1024 * 1024,
			wantCacheStrat:  "cache-first",
			wantLocale:      "en",
			wantMarkToken:   "X",
		},
		{
			name:            "debug logging and custom max file size",
			args:            []string{"mcp-i765-filler", "--log-level=debug", "--max-file-size=5000000"},
			wantMode:        "stdio",
			wantHost:        "127.0.0.1",
			wantPort:        8080,
			wantLogLevel:    "debug",
			wantMaxFileSize: 5000000,
			wantCacheStrat:  "cache-first",
			wantLocale:      "en",
			wantMarkToken:   "X",
		},
		{
			name:            "cache strategy, locale and mark token",
			args:            []string{"mcp-i765-filler", "--cache-strategy=network-first", "--locale=es", "--mark-token=YES"},
			wantMode:        "stdio",
			wantHost:        "127.0.0.1",
			wantPort:        8080,
			wantLogLevel:    "info",
			wantMaxFileSize: 50 * 1024 * 1024,
			wantCacheStrat:  "network-first",
			wantLocale:      "es",
			wantMarkToken:   "YES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save original args and environment
			originalArgs := os.Args
			defer func() {
				os.Args = originalArgs
				resetFlags()
				clearEnvVars()
			}()

			setArgs(tt.args)
			resetFlags()
			clearEnvVars()

			cfg, err := LoadFromFlags()
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}

			if cfg.Mode != tt.wantMode {
				t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, tt.wantMode)
			}
			if cfg.Host != tt.wantHost {
				t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, tt.wantHost)
			}
			if cfg.Port != tt.wantPort {
				t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, tt.wantPort)
			}
			if cfg.LogLevel != tt.wantLogLevel {
				t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, tt.wantLogLevel)
			}
			if cfg.MaxFileSize != tt.wantMaxFileSize {
				t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, tt.wantMaxFileSize)
			}
			if cfg.CacheStrategy != tt.wantCacheStrat {
				t.Errorf("LoadFromFlags() CacheStrategy = %v, want %v", cfg.CacheStrategy, tt.wantCacheStrat)
			}
			if cfg.Locale != tt.wantLocale {
				t.Errorf("LoadFromFlags() Locale = %v, want %v", cfg.Locale, tt.wantLocale)
			}
			if cfg.MarkToken != tt.wantMarkToken {
				t.Errorf("LoadFromFlags() MarkToken = %v, want %v", cfg.MarkToken, tt.wantMarkToken)
			}
		})
	}
}

func TestLoadFromFlags_PathResolution(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	schemasDir := t.TempDir()
	templatesDir := t.TempDir()
	absSchema := filepath.Join(t.TempDir(), "custom.json")

	setArgs([]string{
		"mcp-i765-filler",
		"--schemas-dir=" + schemasDir,
		"--templates-dir=" + templatesDir,
		"--schema-path=i765.json",
		"--template-path=i-765.pdf",
	})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if want := filepath.Join(schemasDir, "i765.json"); cfg.SchemaPath != want {
		t.Errorf("LoadFromFlags() SchemaPath = %v, want %v", cfg.SchemaPath, want)
	}
	if want := filepath.Join(templatesDir, "i-765.pdf"); cfg.TemplatePath != want {
		t.Errorf("LoadFromFlags() TemplatePath = %v, want %v", cfg.TemplatePath, want)
	}

	// An absolute schema path must not be re-rooted
	setArgs([]string{"mcp-i765-filler", "--schemas-dir=" + schemasDir, "--schema-path=" + absSchema})
	resetFlags()
	clearEnvVars()

	cfg, err = LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}
	if cfg.SchemaPath != absSchema {
		t.Errorf("LoadFromFlags() SchemaPath = %v, want %v", cfg.SchemaPath, absSchema)
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	// Save original args and environment
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	profilesDir := t.TempDir()

	// Set environment variables
	os.Setenv("I765_MODE", "server")
	os.Setenv("I765_HOST", "192.168.1.1")
	os.Setenv("I765_PORT", "3000")
	os.Setenv("I765_PROFILES_DIR", profilesDir)
	os.Setenv("I765_CACHE_STRATEGY", "stale-while-revalidate")
	os.Setenv("I765_CACHE_TTL", "90m")
	os.Setenv("I765_LOG_LEVEL", "warn")
	os.Setenv("I765_MAX_FILE_SIZE", "20000000")

	setArgs([]string{"mcp-i765-filler"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "server" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "server")
	}
	if cfg.Host != "192.168.1.1" {
		t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, "192.168.1.1")
	}
	if cfg.Port != 3000 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 3000)
	}
	if cfg.ProfilesDir != profilesDir {
		t.Errorf("LoadFromFlags() ProfilesDir = %v, want %v", cfg.ProfilesDir, profilesDir)
	}
	if cfg.CacheStrategy != "stale-while-revalidate" {
		t.Errorf("LoadFromFlags() CacheStrategy = %v, want %v", cfg.CacheStrategy, "stale-while-revalidate")
	}
	if cfg.CacheTTL != 90*time.Minute {
		t.Errorf("LoadFromFlags() CacheTTL = %v, want %v", cfg.CacheTTL, 90*time.Minute)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if cfg.MaxFileSize != 20000000 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 20000000)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	// Save original args and environment
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	// Set environment variables
	os.Setenv("I765_MODE", "server")
	os.Setenv("I765_HOST", "192.168.1.1")
	os.Setenv("I765_PORT", "3000")

	// Set args that should override environment
	setArgs([]string{"mcp-i765-filler", "--mode=stdio", "--host=localhost", "--port=8888"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	// Flags should override environment variables
	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v (should override env)", cfg.Mode, "stdio")
	}
	if cfg.Host != "localhost" {
		t.Errorf("LoadFromFlags() Host = %v, want %v (should override env)", cfg.Host, "localhost")
	}
	if cfg.Port != 8888 {
		t.Errorf("LoadFromFlags() Port = %v, want %v (should override env)", cfg.Port, 8888)
	}
}

func TestLoadFromFlags_InvalidMode(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"mcp-i765-filler", "--mode=invalid"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid mode")
	}
	if err != nil && !strings.Contains(err.Error(), "mode must be either 'stdio' or 'server'") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid mode", err)
	}
}

func TestLoadFromFlags_InvalidPort(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"mcp-i765-filler", "--mode=server", "--port=99999"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid port")
	}
	if err != nil && !strings.Contains(err.Error(), "port must be between 1 and 65535") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid port", err)
	}
}

func TestLoadFromFlags_InvalidLogLevel(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"mcp-i765-filler", "--log-level=invalid"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid log level")
	}
	if err != nil && !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid log level", err)
	}
}

func TestLoadFromFlags_InvalidCacheStrategy(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"mcp-i765-filler", "--cache-strategy=write-through"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for unknown cache strategy")
	}
	if err != nil && !strings.Contains(err.Error(), "unknown cache strategy") {
		t.Errorf("LoadFromFlags() error = %v, want error about unknown cache strategy", err)
	}
}

func TestLoadFromFlags_InvalidCacheBackend(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"mcp-i765-filler", "--cache-backend=memcached"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for unknown cache backend")
	}
	if err != nil && !strings.Contains(err.Error(), "invalid cache backend") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid cache backend", err)
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"mcp-i765-filler", "--version"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected version error")
	}
	if err != nil && err.Error() != "version requested" {
		t.Errorf("LoadFromFlags() error = %v, want 'version requested'", err)
	}
}
