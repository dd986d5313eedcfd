package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/affinidi/did-cache-go/internal/config"
	"github.com/affinidi/did-cache-go/internal/logging"
	"github.com/affinidi/did-cache-go/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values.
type cliFlags struct {
	configPath string
	host       string
	port       int
	wsPath     string
	jsonLogs   bool
	debug      bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&f.host, "host", "", "Override bind host")
	flag.IntVar(&f.port, "port", 0, "Override bind port")
	flag.StringVar(&f.wsPath, "ws-path", "", "Override websocket upgrade path")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return f
}

// applyCLIOverrides applies command-line overrides to the loaded config.
func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.wsPath != "" {
		cfg.Server.WSPath = f.wsPath
	}
	if f.jsonLogs {
		cfg.Logging.Structured = true
	}
	if f.debug {
		cfg.Logging.Level = "DEBUG"
	}
}

func run() error {
	flags := parseFlags()

	configPath := config.ResolveConfigPath(flags.configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyCLIOverrides(cfg, flags)

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: "json",
	})
	logger.Info("did-cache-server starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"ws_path", cfg.Server.WSPath,
		"cache_capacity", cfg.Client.CacheCapacity,
		"cache_ttl_seconds", cfg.Client.CacheTTLSeconds,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv, err := server.New(ctx, server.Config{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		WSPath:   cfg.Server.WSPath,
		Resolver: cfg.Client.ToResolverConfig(),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	logger.Info("resolver server listening", "addr", srv.Addr())

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("did-cache-server stopped")
	return nil
}
