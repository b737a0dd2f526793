// Command reportserver serves the pipeline's reports and analytics tables
// over HTTP until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"housingcli/internal/app"
	"housingcli/internal/config"
	"housingcli/internal/infrastructure"
	"housingcli/pkg/contracts"
)

func main() {
	root := flag.String("root", "", "project root holding data/ and reports/ (defaults to the working directory)")
	configFile := flag.String("config", "", "application config file (defaults to config/app.yaml when present)")
	port := flag.Int("port", 0, "listen port; overrides the configured port")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString("housing-reportserver"))
		return
	}

	if err := serve(*root, *configFile, *port); err != nil {
		slog.Error("report server failed", "error", err)
		os.Exit(1)
	}
}

func serve(root, configFile string, port int) error {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if root == "" {
		root = cfg.Paths.Root
	}

	paths, err := config.GetPaths(root)
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	cfg.Logging.FilePath = paths.Resolve(cfg.Logging.FilePath)
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = infrastructure.CloseLogFile()
	}()
	logger = infrastructure.WithComponent(logger, "reportserver")

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry, paths)
	otelCfg.ServiceName = "housing-reportserver"
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	application, err := app.NewApplication(cfg, paths, logger, providers)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return application.Run(ctx)
}
