// Command pipeline turns a raw property-transfer extract into the cleaned
// table, the monthly analytics tables, the affordability ranking and the
// report charts.
//
// Usage:
//
//	pipeline [-root dir] [-input file] [-config file] [-assumptions file] [-png] [-top n]
//
// Exit status is 0 on success, 2 when no input file exists, 3 when no
// column holds usable dates and 1 for any other failure.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	promclient "github.com/prometheus/client_golang/prometheus"

	"housingcli/internal/affordability"
	"housingcli/internal/charts"
	"housingcli/internal/cli"
	"housingcli/internal/config"
	apperrors "housingcli/internal/errors"
	"housingcli/internal/exporter"
	"housingcli/internal/infrastructure"
	"housingcli/internal/operations"
	"housingcli/internal/validation"
	"housingcli/pkg/contracts"
)

type options struct {
	root        string
	input       string
	configFile  string
	assumptions string
	png         bool
	top         int
	version     bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.root, "root", "", "project root holding data/, config/ and reports/ (defaults to the working directory)")
	fs.StringVar(&opts.input, "input", "", "raw CSV or XLSX file; skips discovery in data/raw")
	fs.StringVar(&opts.configFile, "config", "", "application config file (defaults to config/app.yaml when present)")
	fs.StringVar(&opts.assumptions, "assumptions", "", "financial assumptions file (defaults to config/inputs.yaml)")
	fs.BoolVar(&opts.png, "png", false, "also rasterize the HTML charts to PNG with headless Chrome")
	fs.IntVar(&opts.top, "top", cli.DefaultSummaryRows, "rows shown in the console summary")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.ExitOK
		}
		return config.ExitFailure
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("housing-pipeline"))
		return config.ExitOK
	}

	var cfg *config.Config
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintln(stderr, cli.FormatError(fmt.Sprintf("configuration: %v", err)))
		return config.ExitFailure
	}

	root := opts.root
	if root == "" {
		root = cfg.Paths.Root
	}
	paths, err := config.GetPaths(root)
	if err != nil {
		fmt.Fprintln(stderr, cli.FormatError(err.Error()))
		return config.ExitFailure
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintln(stderr, cli.FormatError(fmt.Sprintf("failed to create project directories: %v", err)))
		return config.ExitFailure
	}

	cfg.Logging.FilePath = paths.Resolve(cfg.Logging.FilePath)
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(stderr, cli.FormatWarning(fmt.Sprintf("logger: %v; using default", err)))
		logger = slog.Default()
	}
	defer func() {
		_ = infrastructure.CloseLogFile()
	}()

	validator := validation.NewFileValidator(logger)
	for _, dir := range []string{paths.CleanDir, paths.AnalyticsDir, paths.ReportsDir} {
		if err := validator.ValidateOutputDirectory(dir); err != nil {
			fmt.Fprintln(stderr, cli.FormatError(err.Error()))
			return config.ExitFailure
		}
	}

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry, paths)
	otelCfg.Registry = promclient.NewRegistry()
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, cli.FormatError(fmt.Sprintf("telemetry: %v", err)))
		return config.ExitFailure
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	runID := uuid.New().String()
	ctx = infrastructure.WithTraceID(ctx, runID)

	assumptionsPath := firstNonEmpty(opts.assumptions, cfg.Paths.AssumptionsFile)
	if assumptionsPath != "" {
		assumptionsPath = paths.Resolve(assumptionsPath)
	} else {
		assumptionsPath = paths.AssumptionsFile
	}
	assumptions, src, err := config.LoadAssumptions(assumptionsPath)
	if err != nil {
		logger.WarnContext(ctx, "assumptions file ignored; using defaults",
			slog.String("path", assumptionsPath),
			slog.String("error", err.Error()))
		fmt.Fprintln(stderr, cli.FormatWarning(fmt.Sprintf("could not read %s; using default assumptions", assumptionsPath)))
	} else if src.Loaded {
		logger.InfoContext(ctx, "assumptions loaded",
			slog.String("path", src.Path),
			slog.Any("overridden", src.Overridden))
	}

	calculator, err := affordability.NewCalculator(assumptions, logger)
	if err != nil {
		logger.ErrorContext(ctx, "invalid financial assumptions", slog.String("error", err.Error()))
		fmt.Fprintln(stderr, cli.FormatError(fmt.Sprintf("invalid financial assumptions: %v", err)))
		return config.ExitFailure
	}

	chartsCfg := cfg.Charts
	var rasterizer charts.Rasterizer
	if opts.png {
		chartsCfg.RenderPNG = true
	}
	if chartsCfg.RenderPNG {
		rasterizer = charts.NewChromeRasterizer(chartsCfg.PNGTimeout)
	}

	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		fmt.Fprintln(stderr, cli.FormatError(err.Error()))
		return config.ExitFailure
	}

	env := &operations.Env{
		Paths:      paths,
		InputFile:  firstNonEmpty(opts.input, cfg.Paths.InputFile),
		Calculator: calculator,
		Writer:     exporter.NewCSVWriter(paths),
		Renderer:   charts.NewRenderer(paths.ReportsDir, chartsCfg, rasterizer, logger),
		Logger:     logger,
	}
	pipeline, err := operations.NewPipeline(operations.DefaultSteps(env), tracer, logger)
	if err != nil {
		fmt.Fprintln(stderr, cli.FormatError(err.Error()))
		return config.ExitFailure
	}

	state := operations.NewRunState(runID)
	runErr := pipeline.Run(ctx, state)
	code := operations.ExitCode(runErr)

	if err := providers.WriteMetricsTextfile(paths.MetricsTextfile); err != nil {
		logger.WarnContext(ctx, "metrics textfile not written", slog.String("error", err.Error()))
	}

	if runErr != nil {
		fmt.Fprintln(stderr, cli.FormatError(failureMessage(runErr, paths)))
		return code
	}

	summary := cli.Summary{
		RunID:    state.ID,
		Input:    relPath(paths.Root, state.Input),
		Rows:     state.Affordability,
		Limit:    opts.top,
		Duration: state.Duration(),
	}
	if state.Snapshot != nil {
		summary.Month = state.Snapshot.Month
		summary.Fallback = state.Snapshot.Fallback
	}
	for _, w := range state.Warnings {
		summary.Warnings = append(summary.Warnings, w.Message)
	}
	for _, t := range state.Tables {
		summary.Outputs = append(summary.Outputs, relPath(paths.Root, t.Path))
	}
	summary.Outputs = append(summary.Outputs,
		relPath(paths.Root, paths.WorkbookXLSX),
		relPath(paths.Root, paths.ManifestJSON))
	if state.Charts != nil {
		for _, f := range state.Charts.Files {
			summary.Outputs = append(summary.Outputs, relPath(paths.Root, f.Path))
		}
	}

	if err := cli.PrintSummary(stdout, summary); err != nil {
		logger.WarnContext(ctx, "summary not printed", slog.String("error", err.Error()))
	}
	return code
}

// failureMessage explains the two expected failures in plain words
func failureMessage(err error, paths *config.Paths) string {
	switch {
	case errors.Is(err, apperrors.ErrNoInputFile):
		return fmt.Sprintf("no CSV or XLSX input found in %s", relPath(paths.Root, paths.RawDir))
	case errors.Is(err, apperrors.ErrNoDates):
		return fmt.Sprintf("no usable dates found in the input; clean table written to %s", relPath(paths.Root, paths.CleanTableCSV))
	default:
		return fmt.Sprintf("pipeline failed: %v", err)
	}
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
