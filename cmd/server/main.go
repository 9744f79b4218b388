// Command server runs the Dataverse MCP server over stdio or HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/FreePeak/dataverse-mcp-server/internal/config"
	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/dataverse"
	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/dataverse-mcp-server/internal/interfaces/mcpserver"
	"github.com/FreePeak/dataverse-mcp-server/internal/usecases/catalog"
	"github.com/FreePeak/dataverse-mcp-server/internal/usecases/uiapp"
	"github.com/FreePeak/dataverse-mcp-server/web"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the configuration file")
	transport := flag.String("transport", "stdio", "transport to serve on: stdio or http")
	flag.Parse()

	if err := run(*configPath, *transport); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, transport string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:       logging.LogLevel(cfg.Logging.Level),
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	org, err := dataverse.NewClient(context.Background(), dataverse.ClientConfig{
		BaseURL:      cfg.Dataverse.URL,
		TenantID:     cfg.Dataverse.TenantID,
		ClientID:     cfg.Dataverse.ClientID,
		ClientSecret: cfg.Dataverse.ClientSecret,
	}, logger)
	if err != nil {
		return err
	}

	tools := catalog.New()
	if err := catalog.NewService(org, logger).Register(tools); err != nil {
		return err
	}

	registry, err := uiapp.NewRegistry(web.UI)
	if err != nil {
		return err
	}

	dispatcher := mcpserver.NewDispatcher(cfg.Server.Name, cfg.Server.Version, tools, registry, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch transport {
	case "stdio":
		logger.Info("serving over stdio", logging.Fields{"server": cfg.Server.Name})
		return mcpserver.NewStdioServer(dispatcher, logger).Serve(ctx, os.Stdin, os.Stdout)
	case "http":
		logger.Info("serving over http", logging.Fields{
			"server": cfg.Server.Name,
			"addr":   cfg.Server.HTTPAddr,
		})
		server := &http.Server{
			Addr:    cfg.Server.HTTPAddr,
			Handler: mcpserver.NewHTTPHandler(dispatcher, logger),
		}
		go func() {
			<-ctx.Done()
			_ = server.Shutdown(context.Background())
		}()
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport %q", transport)
	}
}
