package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/visaflow/mcp-i765-filler/internal/cache"
	"github.com/visaflow/mcp-i765-filler/internal/config"
	"github.com/visaflow/mcp-i765-filler/internal/form"
	"github.com/visaflow/mcp-i765-filler/internal/form/schema"
	"github.com/visaflow/mcp-i765-filler/internal/logging"
	"github.com/visaflow/mcp-i765-filler/internal/mcp"
	"github.com/visaflow/mcp-i765-filler/internal/profile"
)

const (
	fetchTimeout     = 30 * time.Second
	redisPingTimeout = 3 * time.Second
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger := buildLogger(cfg)
	if cfg.IsDebug() && cfg.IsServerMode() {
		logger.Debug("loaded configuration", map[string]interface{}{
			"config": cfg.String(),
		})
	}

	server, err := buildServer(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server, logger)
	} else {
		runStdioMode(ctx, server)
	}
}

// buildLogger picks the logger for the configured mode. Stdio keeps quiet
// unless debug is on so the protocol stream stays the only stdout traffic;
// server mode logs structured JSON.
func buildLogger(cfg *config.Config) logging.Logger {
	if cfg.IsStdioMode() && !cfg.IsDebug() {
		return logging.NewNopLogger()
	}
	if cfg.IsServerMode() {
		return logging.NewStructured(cfg.LogLevel, "json")
	}
	return logging.NewStructured(cfg.LogLevel, "console")
}

// buildServer assembles the stack behind the MCP server: profile store,
// field schema, template cache and the form service.
func buildServer(cfg *config.Config, logger logging.Logger) (*mcp.Server, error) {
	store, err := profile.NewStore(cfg.ProfilesDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile store: %w", err)
	}

	resourceCache, err := buildCache(cfg, logger)
	if err != nil {
		return nil, err
	}

	fetch := form.HTTPFetch(&http.Client{Timeout: fetchTimeout}, cfg.MaxFileSize)

	loadCtx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	loader := schema.NewLoader(cachedFetch(resourceCache, fetch), logger)
	fieldSchema := loader.Load(loadCtx, schemaSources(cfg))

	svc, err := form.NewService(form.Settings{
		ServerName:   cfg.ServerName,
		Version:      cfg.Version,
		Mode:         cfg.Mode,
		TemplatePath: cfg.TemplatePath,
		TemplateURL:  cfg.TemplateURL,
		TemplatesDir: cfg.TemplatesDir,
		OutputDir:    cfg.OutputDir,
		SchemaSource: schemaSourceLabel(cfg),
		MarkToken:    cfg.MarkToken,
		Locale:       cfg.Locale,
		MaxFileSize:  cfg.MaxFileSize,
	}, form.Dependencies{
		Store:  store,
		Schema: fieldSchema,
		Cache:  resourceCache,
		Fetch:  fetch,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build form service: %w", err)
	}

	return mcp.NewServer(cfg, svc, logger)
}

// cachedFetch routes URL fetches through the resource cache, so on a
// persistent backend a previously fetched schema survives restarts and
// network loss.
func cachedFetch(c *cache.Cache, fetch schema.FetchFunc) schema.FetchFunc {
	return func(ctx context.Context, url string) ([]byte, error) {
		return c.Get(ctx, "schema:"+url, func(ctx context.Context) ([]byte, error) {
			return fetch(ctx, url)
		})
	}
}

// schemaSources orders the schema candidates: explicit file first, then
// URL, then the embedded default as the fallback of last resort.
func schemaSources(cfg *config.Config) []schema.Source {
	var sources []schema.Source
	if cfg.SchemaPath != "" {
		sources = append(sources, schema.Source{Path: cfg.SchemaPath})
	}
	if cfg.SchemaURL != "" {
		sources = append(sources, schema.Source{URL: cfg.SchemaURL})
	}
	return append(sources, schema.Source{})
}

// schemaSourceLabel names the preferred schema source for display.
func schemaSourceLabel(cfg *config.Config) string {
	switch {
	case cfg.SchemaPath != "":
		return cfg.SchemaPath
	case cfg.SchemaURL != "":
		return cfg.SchemaURL
	default:
		return "embedded default"
	}
}

// buildCache wires the template cache against the configured backend. A
// redis backend that cannot be reached is a startup error rather than a
// silent fallback.
func buildCache(cfg *config.Config, logger logging.Logger) (*cache.Cache, error) {
	strategy, err := cache.ParseStrategy(cfg.CacheStrategy)
	if err != nil {
		return nil, err
	}

	var store cache.Store
	if cfg.CacheBackend == config.BackendRedis {
		rs := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		store = rs
	} else {
		store = cache.NewMemoryStore(cfg.CacheCapacity)
	}

	return cache.New(store, strategy, cfg.CacheTTL, logger), nil
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger logging.Logger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", map[string]interface{}{
			"signal": sig.String(),
		})
		cancel()
		if err := <-serverErrCh; err != nil {
			logger.WithError(err).Error("server shutdown with error", nil)
			os.Exit(1)
		}
	case err := <-serverErrCh:
		if err != nil {
			logger.WithError(err).Error("server error", nil)
			os.Exit(1)
		}
	}

	logger.Info("server stopped", nil)
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server *mcp.Server) {
	// The parent process owns the lifecycle in stdio mode; Run returns
	// when stdin closes.
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP I-765 Filler\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
