package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// Every path is absolute and derived from a single project root.
type Paths struct {
	Root         string
	RawDir       string
	CleanDir     string
	AnalyticsDir string
	ReportsDir   string
	ConfigDir    string
	LogsDir      string

	// Config files
	AssumptionsFile string

	// Well-known analytical outputs
	CleanTableCSV    string
	MonthlyCSV       string
	MonthlyDeltasCSV string
	AffordabilityCSV string
	WorkbookXLSX     string
	ManifestJSON     string

	// Telemetry outputs
	MetricsTextfile string
	TraceFile       string
}

// GetPaths resolves the project layout. An empty root falls back to the
// working directory.
func GetPaths(root string) (*Paths, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root %s: %w", root, err)
	}

	cleanDir := filepath.Join(abs, DefaultCleanDir)
	analyticsDir := filepath.Join(abs, DefaultAnalyticsDir)
	configDir := filepath.Join(abs, DefaultConfigDir)
	logsDir := filepath.Join(abs, DefaultLogsDir)

	return &Paths{
		Root:         abs,
		RawDir:       filepath.Join(abs, DefaultRawDir),
		CleanDir:     cleanDir,
		AnalyticsDir: analyticsDir,
		ReportsDir:   filepath.Join(abs, DefaultReportsDir),
		ConfigDir:    configDir,
		LogsDir:      logsDir,

		AssumptionsFile: filepath.Join(configDir, AssumptionsFile),

		CleanTableCSV:    filepath.Join(cleanDir, CleanTableFile),
		MonthlyCSV:       filepath.Join(analyticsDir, MonthlyTableFile),
		MonthlyDeltasCSV: filepath.Join(analyticsDir, MonthlyDeltasFile),
		AffordabilityCSV: filepath.Join(analyticsDir, AffordabilityFile),
		WorkbookXLSX:     filepath.Join(analyticsDir, WorkbookFile),
		ManifestJSON:     filepath.Join(analyticsDir, ManifestFile),

		MetricsTextfile: filepath.Join(logsDir, MetricsTextfile),
		TraceFile:       filepath.Join(logsDir, TraceFile),
	}, nil
}

// EnsureDirectories creates all output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.RawDir,
		p.CleanDir,
		p.AnalyticsDir,
		p.ReportsDir,
		p.LogsDir,
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetReportPath returns the full path for a chart artifact
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// Resolve makes a possibly relative path absolute against the project root.
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
