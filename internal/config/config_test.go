package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.ServerName != "mcp-i765-filler" {
		t.Errorf("Expected default server name to be 'mcp-i765-filler', got '%s'", cfg.ServerName)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 50*1024*1024 {
		t.Errorf("Expected default max file size to be 50MB, got %d", cfg.MaxFileSize)
	}

	if cfg.CacheStrategy != "cache-first" {
		t.Errorf("Expected default cache strategy to be 'cache-first', got '%s'", cfg.CacheStrategy)
	}

	if cfg.CacheBackend != BackendMemory {
		t.Errorf("Expected default cache backend to be 'memory', got '%s'", cfg.CacheBackend)
	}

	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("Expected default cache TTL to be 24h, got %v", cfg.CacheTTL)
	}

	if cfg.CacheCapacity != 32 {
		t.Errorf("Expected default cache capacity to be 32, got %d", cfg.CacheCapacity)
	}

	if cfg.Locale != "en" {
		t.Errorf("Expected default locale to be 'en', got '%s'", cfg.Locale)
	}

	if cfg.MarkToken != "X" {
		t.Errorf("Expected default mark token to be 'X', got '%s'", cfg.MarkToken)
	}

	// Test that directories default under the current working directory
	currentDir, _ := os.Getwd()
	if cfg.ProfilesDir != filepath.Join(currentDir, "profiles") {
		t.Errorf("Expected default profiles dir under '%s', got '%s'", currentDir, cfg.ProfilesDir)
	}
	if cfg.OutputDir != filepath.Join(currentDir, "output") {
		t.Errorf("Expected default output dir under '%s', got '%s'", currentDir, cfg.OutputDir)
	}
}

func validConfig(mode string) *Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config - stdio mode",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid config - server mode",
			mutate:  func(c *Config) { c.Mode = ModeServer },
			wantErr: false,
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Mode = "invalid" },
			wantErr: true,
		},
		{
			name: "invalid port - too low (server mode)",
			mutate: func(c *Config) {
				c.Mode = ModeServer
				c.Port = 0
			},
			wantErr: true,
		},
		{
			name: "invalid port - too high (server mode)",
			mutate: func(c *Config) {
				c.Mode = ModeServer
				c.Port = 70000
			},
			wantErr: true,
		},
		{
			name:    "invalid port ignored in stdio mode",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: false,
		},
		{
			name:    "empty profiles directory",
			mutate:  func(c *Config) { c.ProfilesDir = "" },
			wantErr: true,
		},
		{
			name:    "empty output directory",
			mutate:  func(c *Config) { c.OutputDir = "" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "invalid" },
			wantErr: true,
		},
		{
			name:    "invalid max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "unknown cache strategy",
			mutate:  func(c *Config) { c.CacheStrategy = "write-through" },
			wantErr: true,
		},
		{
			name:    "empty cache strategy falls back",
			mutate:  func(c *Config) { c.CacheStrategy = "" },
			wantErr: false,
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *Config) { c.CacheBackend = "memcached" },
			wantErr: true,
		},
		{
			name: "redis backend without address",
			mutate: func(c *Config) {
				c.CacheBackend = BackendRedis
				c.RedisAddr = ""
			},
			wantErr: true,
		},
		{
			name:    "redis backend with address",
			mutate:  func(c *Config) { c.CacheBackend = BackendRedis },
			wantErr: false,
		},
		{
			name:    "zero memory cache capacity",
			mutate:  func(c *Config) { c.CacheCapacity = 0 },
			wantErr: true,
		},
		{
			name:    "negative cache TTL",
			mutate:  func(c *Config) { c.CacheTTL = -time.Minute },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(ModeStdio)
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateDoesNotCreateDirectories(t *testing.T) {
	// Placeholder paths like ${workspaceRoot} must survive validation,
	// so Validate never touches the filesystem.
	tempParent := t.TempDir()
	nonExistent := filepath.Join(tempParent, "non-existent", "profiles")

	cfg := validConfig(ModeStdio)
	cfg.ProfilesDir = nonExistent

	if err := cfg.Validate(); err != nil {
		t.Errorf("Config.Validate() should not fail for non-existent directory, got error: %v", err)
	}

	if _, err := os.Stat(nonExistent); !os.IsNotExist(err) {
		t.Errorf("Directory should NOT have been created: %s", nonExistent)
	}
}

func TestConfigValidateLogLevels(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error"}
	invalidLevels := []string{"DEBUG", "INFO", "trace", "fatal", ""}

	for _, level := range validLevels {
		t.Run("valid_"+level, func(t *testing.T) {
			cfg := validConfig(ModeStdio)
			cfg.LogLevel = level

			if err := cfg.Validate(); err != nil {
				t.Errorf("Config.Validate() should accept log level '%s', got error: %v", level, err)
			}
		})
	}

	for _, level := range invalidLevels {
		t.Run("invalid_"+level, func(t *testing.T) {
			cfg := validConfig(ModeStdio)
			cfg.LogLevel = level

			if err := cfg.Validate(); err == nil {
				t.Errorf("Config.Validate() should reject log level '%s'", level)
			}
		})
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{
		Host: "192.168.1.1",
		Port: 9090,
	}

	expected := "192.168.1.1:9090"
	if got := cfg.Address(); got != expected {
		t.Errorf("Config.Address() = %v, want %v", got, expected)
	}
}

func TestConfigIsDebug(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     bool
	}{
		{name: "debug level", logLevel: "debug", want: true},
		{name: "info level", logLevel: "info", want: false},
		{name: "warn level", logLevel: "warn", want: false},
		{name: "error level", logLevel: "error", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.want {
				t.Errorf("Config.IsDebug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := validConfig(ModeServer)
	cfg.Host = "localhost"
	cfg.Port = 8080
	cfg.LogLevel = "debug"
	cfg.MaxFileSize = 1024

	result := cfg.String()

	expectedSubstrings := []string{
		"Mode: server",
		"Host: localhost",
		"Port: 8080",
		"CacheStrategy: cache-first",
		"CacheBackend: memory",
		"Locale: en",
		"LogLevel: debug",
		"MaxFileSize: 1024",
	}

	for _, substr := range expectedSubstrings {
		if !strings.Contains(result, substr) {
			t.Errorf("Config.String() result doesn't contain expected substring: %s\nGot: %s", substr, result)
		}
	}
}

func TestConfigIsServerMode(t *testing.T) {
	tests := []struct {
		name string
		mode string
		want bool
	}{
		{name: "server mode", mode: "server", want: true},
		{name: "stdio mode", mode: "stdio", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode}
			if got := cfg.IsServerMode(); got != tt.want {
				t.Errorf("Config.IsServerMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigIsStdioMode(t *testing.T) {
	tests := []struct {
		name string
		mode string
		want bool
	}{
		{name: "stdio mode", mode: "stdio", want: true},
		{name: "server mode", mode: "server", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode}
			if got := cfg.IsStdioMode(); got != tt.want {
				t.Errorf("Config.IsStdioMode() = %v, want %v", got, tt.want)
			}
		})
	}
}
