package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/visaflow/mcp-i765-filler/internal/config"
	"github.com/visaflow/mcp-i765-filler/internal/logging"
)

// newRunTestServer builds a server in the given mode. SSE tests get an
// uncommon port so a busy machine does not turn them into flakes.
func newRunTestServer(t *testing.T, mode string, port int) *Server {
	t.Helper()

	dir := t.TempDir()
	formService := newTestFormService(t, dir)

	cfg := &config.Config{
		Mode:        mode,
		Host:        "127.0.0.1",
		Port:        port,
		ProfilesDir: filepath.Join(dir, "profiles"),
		OutputDir:   filepath.Join(dir, "output"),
		Version:     "1.0.0",
		ServerName:  "test-server",
		LogLevel:    "info",
		MaxFileSize: 10 * 1024 * 1024,
	}

	srv, err := NewServer(cfg, formService, logging.NewTestLogger(t))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func TestServer_Run_StdioMode(t *testing.T) {
	srv := newRunTestServer(t, "stdio", 8080)

	// Test with context that gets canceled immediately
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	// Run returns once test stdin hits EOF
	err := srv.Run(ctx)
	if err != nil {
		if !strings.Contains(err.Error(), "context") {
			t.Errorf("Run() error = %v, expected context-related error", err)
		}
	}
}

func TestServer_Run_ServerMode(t *testing.T) {
	srv := newRunTestServer(t, "server", 18650)

	// A canceled context makes Run shut the SSE listener straight down.
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := srv.Run(ctx)
	if err != nil {
		if !strings.Contains(err.Error(), "context") {
			t.Errorf("Run() error = %v, expected context-related error", err)
		}
	}
}

func TestServer_runStdioMode(t *testing.T) {
	srv := newRunTestServer(t, "stdio", 8080)

	tests := []struct {
		name           string
		contextTimeout time.Duration
	}{
		{
			name:           "canceled context",
			contextTimeout: 1 * time.Millisecond,
		},
		{
			name:           "quick timeout",
			contextTimeout: 10 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), tt.contextTimeout)
			defer cancel()

			err := srv.runStdioMode(ctx)
			if err != nil && !strings.Contains(err.Error(), "context") {
				t.Errorf("runStdioMode() unexpected non-context error = %v", err)
			}
		})
	}
}

func TestServer_runServerMode(t *testing.T) {
	tests := []struct {
		name           string
		contextTimeout time.Duration
		port           int
	}{
		{
			name:           "canceled context",
			contextTimeout: 1 * time.Millisecond,
			port:           18651,
		},
		{
			name:           "quick timeout",
			contextTimeout: 10 * time.Millisecond,
			port:           18655,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRunTestServer(t, "server", tt.port)

			ctx, cancel := context.WithTimeout(context.Background(), tt.contextTimeout)
			defer cancel()

			err := srv.runServerMode(ctx)
			if err != nil && !strings.Contains(err.Error(), "context") {
				t.Errorf("runServerMode() unexpected non-context error = %v", err)
			}
		})
	}
}

func TestServer_Run_ContextCancellation(t *testing.T) {
	tests := []struct {
		name string
		mode string
		port int
	}{
		{
			name: "stdio mode context cancellation",
			mode: "stdio",
			port: 8080,
		},
		{
			name: "server mode context cancellation",
			mode: "server",
			port: 18652,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRunTestServer(t, tt.mode, tt.port)

			ctx, cancel := context.WithCancel(context.Background())

			// Run server in goroutine
			errChan := make(chan error, 1)
			go func() {
				errChan <- srv.Run(ctx)
			}()

			// Cancel context after a short delay
			time.Sleep(10 * time.Millisecond)
			cancel()

			// Wait for server to stop
			select {
			case err := <-errChan:
				if err != nil && !strings.Contains(err.Error(), "context") {
					t.Errorf("Run() error = %v, expected context-related error", err)
				}
			case <-time.After(2 * time.Second):
				t.Error("Run() did not return after context cancellation")
			}
		})
	}
}

func TestServer_Run_GracefulShutdown(t *testing.T) {
	srv := newRunTestServer(t, "server", 18653)

	ctx, cancel := context.WithCancel(context.Background())

	// Start server in goroutine
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Run(ctx)
	}()

	// Give the SSE listener time to start
	time.Sleep(50 * time.Millisecond)

	// Cancel context to trigger graceful shutdown
	cancel()

	// Wait for server to shutdown
	select {
	case <-done:
		// Server shut down successfully
	case <-time.After(2 * time.Second):
		t.Error("Server did not shutdown gracefully within timeout")
	}
}

func TestServer_Run_MultipleShutdowns(t *testing.T) {
	srv := newRunTestServer(t, "stdio", 8080)

	// Test multiple rapid shutdowns
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		err := srv.Run(ctx)
		if err != nil && strings.Contains(err.Error(), "panic") {
			t.Errorf("Run() iteration %d should not panic, got error: %v", i, err)
		}
	}
}
