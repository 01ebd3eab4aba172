package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/visaflow/mcp-i765-filler/internal/cache"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Cache backends
	BackendMemory = "memory"
	BackendRedis  = "redis"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultLocale        = "en"
	DefaultMarkToken     = "X"
	DefaultMaxFileSize   = 50 * 1024 * 1024 // 50MB
	DefaultCacheTTL      = 24 * time.Hour
	DefaultCacheCapacity = 32
	DefaultRedisAddr     = "127.0.0.1:6379"
)

// Config holds all configuration for the I-765 filler server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Directory layout
	ProfilesDir  string
	TemplatesDir string
	SchemasDir   string
	OutputDir    string

	// Form sources
	SchemaPath   string
	SchemaURL    string
	TemplatePath string
	TemplateURL  string

	// Cache configuration
	CacheStrategy string
	CacheBackend  string
	CacheTTL      time.Duration
	CacheCapacity int

	// Redis backend (cache-backend=redis)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Form behavior
	Locale    string
	MarkToken string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:          ModeStdio, // Default to stdio mode for MCP compatibility
		Host:          DefaultHost,
		Port:          DefaultPort,
		ProfilesDir:   filepath.Join(currentDir, "profiles"),
		TemplatesDir:  filepath.Join(currentDir, "templates"),
		SchemasDir:    filepath.Join(currentDir, "schemas"),
		OutputDir:     filepath.Join(currentDir, "output"),
		CacheStrategy: string(cache.CacheFirst),
		CacheBackend:  BackendMemory,
		CacheTTL:      DefaultCacheTTL,
		CacheCapacity: DefaultCacheCapacity,
		RedisAddr:     DefaultRedisAddr,
		Locale:        DefaultLocale,
		MarkToken:     DefaultMarkToken,
		Version:       "1.0.0",
		ServerName:    "mcp-i765-filler",
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	// A missing .env file is fine; explicit environment always wins
	// because godotenv never overwrites variables that are already set.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	expandPaths(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix; kebab-case keys map to
	// underscored variables (log-level -> I765_LOG_LEVEL).
	viper.SetEnvPrefix("I765")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("profiles-dir", cfg.ProfilesDir)
	viper.SetDefault("templates-dir", cfg.TemplatesDir)
	viper.SetDefault("schemas-dir", cfg.SchemasDir)
	viper.SetDefault("output-dir", cfg.OutputDir)
	viper.SetDefault("schema-path", cfg.SchemaPath)
	viper.SetDefault("schema-url", cfg.SchemaURL)
	viper.SetDefault("template-path", cfg.TemplatePath)
	viper.SetDefault("template-url", cfg.TemplateURL)
	viper.SetDefault("cache-strategy", cfg.CacheStrategy)
	viper.SetDefault("cache-backend", cfg.CacheBackend)
	viper.SetDefault("cache-ttl", cfg.CacheTTL)
	viper.SetDefault("cache-capacity", cfg.CacheCapacity)
	viper.SetDefault("redis-addr", cfg.RedisAddr)
	viper.SetDefault("redis-password", cfg.RedisPassword)
	viper.SetDefault("redis-db", cfg.RedisDB)
	viper.SetDefault("locale", cfg.Locale)
	viper.SetDefault("mark-token", cfg.MarkToken)
	viper.SetDefault("log-level", cfg.LogLevel)
	viper.SetDefault("max-file-size", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("profiles-dir", cfg.ProfilesDir, "Directory holding applicant profiles")
	pflag.String("templates-dir", cfg.TemplatesDir, "Directory holding form templates")
	pflag.String("schemas-dir", cfg.SchemasDir, "Directory holding field schemas")
	pflag.String("output-dir", cfg.OutputDir, "Directory filled forms are written to")
	pflag.String("schema-path", cfg.SchemaPath, "Field schema file (relative paths resolve under --schemas-dir)")
	pflag.String("schema-url", cfg.SchemaURL, "Field schema URL, tried after --schema-path")
	pflag.String("template-path", cfg.TemplatePath, "I-765 template file (relative paths resolve under --templates-dir)")
	pflag.String("template-url", cfg.TemplateURL, "I-765 template URL, fetched when no --template-path is set")
	pflag.String("cache-strategy", cfg.CacheStrategy,
		"Cache strategy for remote resources: cache-first, network-first, stale-while-revalidate, network-only, cache-only")
	pflag.String("cache-backend", cfg.CacheBackend, "Cache backend: 'memory' or 'redis'")
	pflag.Duration("cache-ttl", cfg.CacheTTL, "Time before a cached resource counts as stale")
	pflag.Int("cache-capacity", cfg.CacheCapacity, "Entry capacity of the in-memory cache")
	pflag.String("redis-addr", cfg.RedisAddr, "Redis address (cache-backend=redis)")
	pflag.String("redis-password", cfg.RedisPassword, "Redis password (cache-backend=redis)")
	pflag.Int("redis-db", cfg.RedisDB, "Redis database number (cache-backend=redis)")
	pflag.String("locale", cfg.Locale, "Message locale (en, es)")
	pflag.String("mark-token", cfg.MarkToken, "Token written into checkbox fields")
	pflag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("max-file-size", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range []string{
		"mode", "host", "port",
		"profiles-dir", "templates-dir", "schemas-dir", "output-dir",
		"schema-path", "schema-url", "template-path", "template-url",
		"cache-strategy", "cache-backend", "cache-ttl", "cache-capacity",
		"redis-addr", "redis-password", "redis-db",
		"locale", "mark-token", "log-level", "max-file-size",
	} {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP I-765 Filler - A Model Context Protocol server for filling Form I-765\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, directories under the working directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --template-path=/forms/i-765.pdf        "+
			"# stdio mode with a local template\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --template-url=https://example.com/i-765.pdf # server mode, remote template\n",
			os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (flags take precedence):\n")
		fmt.Fprintf(os.Stderr, "  I765_MODE            Server mode\n")
		fmt.Fprintf(os.Stderr, "  I765_HOST            Server host\n")
		fmt.Fprintf(os.Stderr, "  I765_PORT            Server port\n")
		fmt.Fprintf(os.Stderr, "  I765_PROFILES_DIR    Profile directory\n")
		fmt.Fprintf(os.Stderr, "  I765_TEMPLATES_DIR   Template directory\n")
		fmt.Fprintf(os.Stderr, "  I765_SCHEMAS_DIR     Schema directory\n")
		fmt.Fprintf(os.Stderr, "  I765_OUTPUT_DIR      Output directory\n")
		fmt.Fprintf(os.Stderr, "  I765_SCHEMA_PATH     Field schema file\n")
		fmt.Fprintf(os.Stderr, "  I765_SCHEMA_URL      Field schema URL\n")
		fmt.Fprintf(os.Stderr, "  I765_TEMPLATE_PATH   Template file\n")
		fmt.Fprintf(os.Stderr, "  I765_TEMPLATE_URL    Template URL\n")
		fmt.Fprintf(os.Stderr, "  I765_CACHE_STRATEGY  Cache strategy\n")
		fmt.Fprintf(os.Stderr, "  I765_CACHE_BACKEND   Cache backend (memory, redis)\n")
		fmt.Fprintf(os.Stderr, "  I765_CACHE_TTL       Cache TTL (Go duration)\n")
		fmt.Fprintf(os.Stderr, "  I765_REDIS_ADDR      Redis address\n")
		fmt.Fprintf(os.Stderr, "  I765_LOCALE          Message locale\n")
		fmt.Fprintf(os.Stderr, "  I765_LOG_LEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  I765_MAX_FILE_SIZE   Maximum file size\n")
		fmt.Fprintf(os.Stderr, "\nVariables can also be placed in a .env file in the working directory.\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.ProfilesDir = viper.GetString("profiles-dir")
	cfg.TemplatesDir = viper.GetString("templates-dir")
	cfg.SchemasDir = viper.GetString("schemas-dir")
	cfg.OutputDir = viper.GetString("output-dir")
	cfg.SchemaPath = viper.GetString("schema-path")
	cfg.SchemaURL = viper.GetString("schema-url")
	cfg.TemplatePath = viper.GetString("template-path")
	cfg.TemplateURL = viper.GetString("template-url")
	cfg.CacheStrategy = viper.GetString("cache-strategy")
	cfg.CacheBackend = viper.GetString("cache-backend")
	cfg.CacheTTL = viper.GetDuration("cache-ttl")
	cfg.CacheCapacity = viper.GetInt("cache-capacity")
	cfg.RedisAddr = viper.GetString("redis-addr")
	cfg.RedisPassword = viper.GetString("redis-password")
	cfg.RedisDB = viper.GetInt("redis-db")
	cfg.Locale = viper.GetString("locale")
	cfg.MarkToken = viper.GetString("mark-token")
	cfg.LogLevel = viper.GetString("log-level")
	cfg.MaxFileSize = viper.GetInt64("max-file-size")
}

// expandPaths resolves relative file paths against their directories and
// makes all directories absolute. Directories are not created here; the
// stores create what they own on first use.
func expandPaths(cfg *Config) {
	for _, dir := range []*string{&cfg.ProfilesDir, &cfg.TemplatesDir, &cfg.SchemasDir, &cfg.OutputDir} {
		if *dir == "" {
			continue
		}
		if abs, err := filepath.Abs(*dir); err == nil {
			*dir = abs
		}
	}
	cfg.SchemaPath = resolveUnder(cfg.SchemaPath, cfg.SchemasDir)
	cfg.TemplatePath = resolveUnder(cfg.TemplatePath, cfg.TemplatesDir)
}

func resolveUnder(path, dir string) string {
	if path == "" {
		return path
	}
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate directory layout
	if c.ProfilesDir == "" {
		return errors.New("profiles directory cannot be empty")
	}
	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	// Validate cache configuration
	if _, err := cache.ParseStrategy(c.CacheStrategy); err != nil {
		return err
	}
	switch c.CacheBackend {
	case BackendMemory:
		if c.CacheCapacity < 1 {
			return errors.New("cache capacity must be positive")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("redis address cannot be empty when cache backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid cache backend: %s (must be one of: memory, redis)", c.CacheBackend)
	}
	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Mode: %s, Host: %s, Port: %d, ProfilesDir: %s, OutputDir: %s, "+
			"CacheStrategy: %s, CacheBackend: %s, Locale: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.ProfilesDir, c.OutputDir,
		c.CacheStrategy, c.CacheBackend, c.Locale, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
