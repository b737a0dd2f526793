package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "housingcli/internal/errors"
	"housingcli/pkg/contracts/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, DefaultTopK, cfg.Charts.TopK)
				assert.False(t, cfg.Charts.RenderPNG)
				assert.Equal(t, "file", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "file overrides defaults",
			file: "server:\n  port: 9090\n  read_timeout: 5s\ncharts:\n  top_k: 10\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
				assert.Equal(t, 10, cfg.Charts.TopK)
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env:  map[string]string{"HOUSING_SERVER_PORT": "7070", "HOUSING_CHARTS_RENDER_PNG": "true"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.True(t, cfg.Charts.RenderPNG)
			},
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"HOUSING_LOGGING_LEVEL": "loud"},
			wantErr: true,
		},
		{
			name:    "invalid port",
			file:    "server:\n  port: 70000\n",
			wantErr: true,
		},
		{
			name:    "malformed file",
			file:    "server: [unterminated\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, t.TempDir(), "app.yaml", tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoadAssumptions(t *testing.T) {
	tests := []struct {
		name       string
		content    *string
		wantErr    bool
		wantLoaded bool
		check      func(*testing.T, domain.FinancialAssumptions)
	}{
		{
			name:       "missing file",
			content:    nil,
			wantLoaded: false,
			check: func(t *testing.T, a domain.FinancialAssumptions) {
				assert.Equal(t, domain.DefaultAssumptions(), a)
			},
		},
		{
			name:       "partial overrides",
			content:    strPtr("defaults:\n  interest_rate_apy: 0.07\n  term_years: 15\n  gross_monthly_income: 12000\n"),
			wantLoaded: true,
			check: func(t *testing.T, a domain.FinancialAssumptions) {
				assert.Equal(t, 0.07, a.InterestRateAPY)
				assert.Equal(t, 15, a.TermYears)
				assert.Equal(t, 12000.0, a.GrossMonthlyIncome)
				assert.Equal(t, 0.10, a.DownPaymentPct, "absent keys keep defaults")
			},
		},
		{
			name:       "fractional term truncates",
			content:    strPtr("defaults:\n  term_years: 30.0\n"),
			wantLoaded: true,
			check: func(t *testing.T, a domain.FinancialAssumptions) {
				assert.Equal(t, 30, a.TermYears)
			},
		},
		{
			name:       "no defaults block",
			content:    strPtr("other:\n  key: 1\n"),
			wantLoaded: true,
			check: func(t *testing.T, a domain.FinancialAssumptions) {
				assert.Equal(t, domain.DefaultAssumptions(), a)
			},
		},
		{
			name:    "malformed yaml falls back",
			content: strPtr("defaults: [1, 2\n"),
			wantErr: true,
			check: func(t *testing.T, a domain.FinancialAssumptions) {
				assert.Equal(t, domain.DefaultAssumptions(), a)
			},
		},
		{
			name:    "wrong value type falls back",
			content: strPtr("defaults:\n  down_payment_pct: lots\n"),
			wantErr: true,
			check: func(t *testing.T, a domain.FinancialAssumptions) {
				assert.Equal(t, domain.DefaultAssumptions(), a)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), AssumptionsFile)
			if tt.content != nil {
				writeFile(t, filepath.Dir(path), AssumptionsFile, *tt.content)
			}

			a, src, err := LoadAssumptions(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantLoaded, src.Loaded)
			tt.check(t, a)
		})
	}
}

func TestLoadAssumptions_ReportsOverriddenKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), AssumptionsFile, "defaults:\n  hoa_monthly_usd_sfh: 100\n  dti_backend_max: 0.43\n")
	_, src, err := LoadAssumptions(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hoa_monthly_usd_sfh", "dti_backend_max"}, src.Overridden)
}

func TestGetPaths(t *testing.T) {
	root := t.TempDir()
	paths, err := GetPaths(root)
	require.NoError(t, err)

	assert.Equal(t, root, paths.Root)
	assert.Equal(t, filepath.Join(root, "data", "raw"), paths.RawDir)
	assert.Equal(t, filepath.Join(root, "data", "clean", CleanTableFile), paths.CleanTableCSV)
	assert.Equal(t, filepath.Join(root, "data", "analytics", AffordabilityFile), paths.AffordabilityCSV)
	assert.Equal(t, filepath.Join(root, "config", AssumptionsFile), paths.AssumptionsFile)
	assert.Equal(t, filepath.Join(root, "reports", YoYHeatmapFile), paths.GetReportPath(YoYHeatmapFile))
	assert.Equal(t, filepath.Join(root, "x.csv"), paths.Resolve("x.csv"))
	assert.Equal(t, "/abs/x.csv", paths.Resolve("/abs/x.csv"))

	require.NoError(t, paths.EnsureDirectories())
	for _, dir := range []string{paths.RawDir, paths.CleanDir, paths.AnalyticsDir, paths.ReportsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.True(t, FileExists(paths.RawDir))
	assert.False(t, FileExists(paths.CleanTableCSV))
}

func strPtr(s string) *string { return &s }
