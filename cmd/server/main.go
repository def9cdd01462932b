package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/vinodismyname/mcpcellar/config"
	"github.com/vinodismyname/mcpcellar/internal/datasets"
	"github.com/vinodismyname/mcpcellar/internal/registry"
	"github.com/vinodismyname/mcpcellar/internal/runtime"
	"github.com/vinodismyname/mcpcellar/internal/security"
	"github.com/vinodismyname/mcpcellar/internal/telemetry"
	"github.com/vinodismyname/mcpcellar/pkg/version"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		useStdio        bool
		configPath      string
		clientModel     string
		shutdownTimeout time.Duration
	)

	flag.BoolVar(&useStdio, "stdio", false, "Run server over stdio transport")
	flag.StringVar(&configPath, "config", "", "TOML config file (defaults to $"+config.EnvConfigPath+")")
	flag.StringVar(&clientModel, "client-model", "", "Client model name used to cap page payloads to its context window")
	flag.DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")
	flag.Parse()

	if !useStdio {
		fmt.Fprintln(os.Stderr, "no transport selected; use --stdio to run over stdio")
		os.Exit(2)
	}

	// stdout carries the protocol; logs go to stderr.
	logger := zlog.Output(os.Stderr).With().Str("service", "mcpcellar-server").Logger()
	ctx := logger.WithContext(context.Background())

	if err := config.LoadEnv(); err != nil {
		logger.Warn().Err(err).Msg("config: .env not loaded")
	}
	if configPath == "" {
		configPath = os.Getenv(config.EnvConfigPath)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("config: failed to load")
		os.Exit(1)
	}

	// Security: validate allow-list directories on startup (fail-safe on error)
	secMgr, err := security.NewManagerFromEnv()
	if err != nil {
		logger.Error().Err(err).Msg("security: failed to initialize manager from env")
		fmt.Fprintln(os.Stderr, "invalid security configuration; set "+config.EnvAllowedDirs)
		os.Exit(1)
	}
	if err := secMgr.ValidateConfig(); err != nil {
		logger.Error().Err(err).Msg("security: invalid allow-list configuration")
		fmt.Fprintln(os.Stderr, "no allowed directories configured; set "+config.EnvAllowedDirs)
		os.Exit(1)
	}
	logger.Info().Strs("allowed_dirs", secMgr.AllowedDirectories()).Msg("security allow-list configured")

	limits := runtime.LimitsFromConfig(cfg)
	toolRegistry := registry.New()
	if clientModel != "" {
		limits.MaxPayloadBytes = toolRegistry.PageBudget(clientModel, limits.MaxPayloadBytes)
	}
	runtimeController := runtime.NewController(limits)
	runtimeMW := runtime.NewMiddleware(runtimeController, logger)

	dsMgr := datasets.NewManager(config.DefaultDatasetIdleTTL, config.DefaultDatasetCleanupPeriod, runtimeController, nil)
	dsMgr.SetValidator(secMgr)
	dsMgr.Start()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dsMgr.Close(sctx); err != nil {
			logger.Warn().Err(err).Msg("dataset manager shutdown incomplete")
		}
	}()

	writesEnabled := config.WritesEnabled()
	writeFilter := registry.NewWriteToolFilter(writesEnabled)

	srv := server.NewMCPServer(
		"MCP Wine Cellar Analysis Server",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(telemetry.NewServerHooks(logger)),
		server.WithToolHandlerMiddleware(runtimeMW.ToolMiddleware),
		server.WithToolFilter(func(ctx context.Context, tools []mcp.Tool) []mcp.Tool { return writeFilter.FilterTools(ctx, tools) }),
	)

	registry.RegisterCellarTools(srv, toolRegistry, &registry.Tools{
		Datasets: dsMgr,
		Limits:   limits,
		Config:   cfg,
		Exports:  secMgr,
	})

	logger.Info().
		Ctx(ctx).
		Str("version", version.Version()).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("max_loaded_datasets", limits.MaxLoadedDatasets).
		Int("max_payload_bytes", limits.MaxPayloadBytes).
		Bool("writes_enabled", writesEnabled).
		Msg("server bootstrap configured")

	if err := server.ServeStdio(srv); err != nil {
		// Use stderr for transport errors so clients don't misinterpret output
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
	}
}
