package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/miradorstack/trigger-rca/internal/api"
	"github.com/miradorstack/trigger-rca/internal/config"
	"github.com/miradorstack/trigger-rca/internal/httpapi"
	"github.com/miradorstack/trigger-rca/internal/metrics"
	"github.com/miradorstack/trigger-rca/internal/services"
	"github.com/miradorstack/trigger-rca/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC and HTTP analysis service",
	Long: `Serve the analysis API.

The gRPC service (triggerrca.v1.AnalysisService) listens on server.address and
the HTTP API, /healthz and /metrics on server.httpAddress.

Examples:
  trigger-rca serve --config config.yaml
  TRIGGER_RCA_SOURCE=logbook TRIGGER_RCA_LOGBOOK_URL=http://localhost:8090 trigger-rca serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting trigger-rca",
		slog.String("address", cfg.Server.Address),
		slog.String("http_address", cfg.Server.HTTPAddress),
		slog.String("source", cfg.Source.Kind),
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	source, err := openSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	service := services.NewAnalysisService(logger, newPipeline(cfg, source, logger), requestDefaults(cfg))

	grpcServer, err := api.NewServer(cfg.Server, service, logger)
	if err != nil {
		return fmt.Errorf("create gRPC server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var httpServer *httpapi.Server
	if cfg.Server.HTTPAddress != "" {
		httpServer = httpapi.NewServer(cfg.Server.HTTPAddress, service, logger)
		go func() {
			if err := httpServer.Start(); err != nil {
				logger.Error("http server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		logger.Info("gRPC server listening", slog.String("address", grpcServer.Address()))
		if serveErr := grpcServer.Start(); serveErr != nil {
			logger.Error("gRPC server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grpcServer.GracefulTimeout())
	defer cancel()
	grpcServer.Shutdown(shutdownCtx)
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown", slog.Any("error", err))
		}
	}

	logger.Info("trigger-rca stopped", slog.Duration("p95_latency", service.LatencyP95()))
	return nil
}
