package config

import (
	"time"

	"housingcli/pkg/contracts"
)

// Application constants
const (
	AppName    = "Housing Affordability Pipeline"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. HOUSING_SERVER_PORT.
	EnvPrefix = "HOUSING"
	// ConfigFileEnv overrides the application config file location.
	ConfigFileEnv = "HOUSING_CONFIG"

	// Directory layout relative to the project root
	DefaultRawDir       = "data/raw"
	DefaultCleanDir     = "data/clean"
	DefaultAnalyticsDir = "data/analytics"
	DefaultReportsDir   = "reports"
	DefaultConfigDir    = "config"
	DefaultLogsDir      = "logs"

	// Input
	PreferredInputFile = "Housing_data.csv"
	AssumptionsFile    = "inputs.yaml"
	AppConfigFile      = "app.yaml"

	// Analytical tables
	CleanTableFile       = "clean_housing.csv"
	MonthlyTableFile     = "monthly_by_area.csv"
	MonthlyDeltasFile    = "monthly_by_area_with_deltas.csv"
	AffordabilityFile    = "affordability_latest.csv"
	WorkbookFile         = "housing_report.xlsx"
	ManifestFile         = "manifest.json"
	MetricsTextfile      = "pipeline_metrics.prom"
	TraceFile            = "pipeline_traces.json"
	DefaultLogFile       = "pipeline.log"

	// Charts
	TrendStaticFile  = "trend_top_area.svg"
	TrendHTMLFile    = "trend_top_areas.html"
	TopAreasHTMLFile = "top_areas_lowest_total_monthly.html"
	YoYHeatmapFile   = "yoy_heatmap.html"

	DefaultTopK        = 20
	DefaultTrendAreas  = 5
	DefaultPNGTimeout  = 30 * time.Second
	DefaultChartWorker = 4
)

// Process exit statuses of the pipeline command
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitNoInput = 2
	ExitNoDates = 3
)
