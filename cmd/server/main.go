// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/solconnect/assistants-gw/pkg/adapters/http"
	"github.com/solconnect/assistants-gw/pkg/core/config"
	"github.com/solconnect/assistants-gw/pkg/observability/logging"
	"github.com/solconnect/assistants-gw/pkg/tenant"
	"github.com/solconnect/assistants-gw/pkg/tools"
	"github.com/solconnect/assistants-gw/pkg/websearch"
	"github.com/solconnect/assistants-gw/pkg/workato"
)

var (
	// Version is set via ldflags during build
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	port := flag.Int("port", 8080, "HTTP port to listen on")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	// Print version
	if *version {
		fmt.Printf("Solomon Connect Gateway Server\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.Default()
	}

	// Override port if specified
	if *port != 8080 {
		cfg.Server.Port = *port
	}

	// Initialize logger
	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger.Info("Starting Solomon Connect Gateway Server",
		"version", Version,
		"build_time", BuildTime)

	initCtx := context.Background()

	// Initialize consumer key store
	storeParams := map[string]string{
		"dsn":     cfg.Tenant.DSN,
		"api_key": cfg.Upstream.APIKey,
	}
	resolver, err := tenant.Stores.New(initCtx, cfg.Tenant.Store, storeParams)
	if err != nil {
		logger.Error("Failed to initialize consumer key store", "store", cfg.Tenant.Store, "error", err)
		os.Exit(1)
	}
	defer resolver.Close()
	logger.Info("Initialized consumer key store", "store", cfg.Tenant.Store)

	// Build the tool table. Tools without configuration stay out of it.
	var toolTable []tools.Tool

	if cfg.WebSearch.Provider != "" {
		provider, err := websearch.Providers.New(initCtx, cfg.WebSearch.Provider, map[string]string{
			"api_key": cfg.WebSearch.APIKey,
		})
		if err != nil {
			logger.Error("Failed to initialize web search provider", "provider", cfg.WebSearch.Provider, "error", err)
			os.Exit(1)
		}
		toolTable = append(toolTable, tools.NewWebSearchTool(provider, cfg.WebSearch.MaxResults))
		logger.Info("Initialized web search tool", "provider", cfg.WebSearch.Provider)
	}

	toolTable = append(toolTable, tools.NewFileSearchTool())
	toolTable = append(toolTable, tools.NewStockPriceTool())
	toolTable = append(toolTable, tools.NewAirportTool())

	if cfg.Tools.WeatherAPIKey != "" {
		toolTable = append(toolTable, tools.NewWeatherTool(cfg.Tools.WeatherAPIKey))
		logger.Info("Initialized weather tool")
	}
	if cfg.Tools.Jira.BaseURL != "" {
		toolTable = append(toolTable, tools.NewJiraTool(tools.JiraConfig{
			BaseURL:  cfg.Tools.Jira.BaseURL,
			Email:    cfg.Tools.Jira.Email,
			APIToken: cfg.Tools.Jira.APIToken,
		}))
		logger.Info("Initialized Jira tool", "base_url", cfg.Tools.Jira.BaseURL)
	}
	if cfg.Workato.EndpointURL != "" {
		relay := workato.NewRelay(workato.Config{
			EndpointURL: cfg.Workato.EndpointURL,
			APIToken:    cfg.Workato.APIToken,
		})
		toolTable = append(toolTable, tools.NewWorkatoActionTool(relay))
		logger.Info("Initialized Workato relay tool")
	}

	registry := tools.NewRegistry(logger, toolTable...)
	logger.Info("Initialized tool registry", "tools", registry.Names())

	// Initialize session store and HTTP adapter
	sessions := httpAdapter.NewSessionStore(resolver, registry, logger, cfg.Upstream)
	handler := httpAdapter.New(sessions, logger)
	logger.Info("Initialized HTTP adapter")

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: cfg.Server.Timeout,
		// Streaming responses outlive the request timeout; the run
		// budget bounds them instead.
		WriteTimeout: cfg.Upstream.RunTimeout + cfg.Server.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
