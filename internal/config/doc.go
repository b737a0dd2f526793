// Package config provides configuration, project paths and the financial
// assumptions of the housing pipeline.
//
// # Configuration Sources
//
// Application configuration is loaded in order of precedence:
//
//	1. Environment variables (highest priority), optionally seeded from a .env file
//	2. config/app.yaml, or the file named by HOUSING_CONFIG
//	3. Default values (lowest priority)
//
// All environment variables follow the pattern HOUSING_<SECTION>_<KEY>:
//
//	HOUSING_SERVER_PORT=8080
//	HOUSING_LOGGING_LEVEL=debug
//	HOUSING_PATHS_ROOT=/srv/housing
//	HOUSING_CHARTS_RENDER_PNG=true
//	HOUSING_TELEMETRY_TRACE_EXPORTER=none
//
// # Financial Assumptions
//
// LoadAssumptions reads the defaults block of config/inputs.yaml:
//
//	defaults:
//	  down_payment_pct: 0.10
//	  interest_rate_apy: 0.065
//	  term_years: 30
//
// Keys that are absent keep their built-in values. A missing file is silent;
// a malformed one falls back to the built-in values with a returned error.
//
// # Path Management
//
// Paths derives every input and output location from one project root:
//
//	paths, err := config.GetPaths(cfg.Paths.Root)
//	if err != nil {
//	    return err
//	}
//	if err := paths.EnsureDirectories(); err != nil {
//	    return err
//	}
package config
