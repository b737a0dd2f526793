package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housingcli/internal/config"
	"housingcli/internal/infrastructure"
)

// newProject creates a project root; rows > 0 seeds data/raw with a dated extract.
func newProject(t *testing.T, name string, rows int, dated bool) string {
	t.Helper()
	t.Setenv("HOUSING_LOGGING_OUTPUT", "file")
	t.Setenv("HOUSING_TELEMETRY_TRACE_EXPORTER", "none")
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	root := t.TempDir()
	if rows == 0 {
		return root
	}

	var b strings.Builder
	b.WriteString("Serial Number,List Year,Date Recorded,Town,Address,Assessed Value,Sale Amount,Sales Ratio,Property Type,Residential Type\n")
	for i := 0; i < rows; i++ {
		town := "Ashford"
		if i%3 == 0 {
			town = "Bethel"
		}
		date := fmt.Sprintf("%02d/10/2022", i%12+1)
		if !dated {
			date = "n/a"
		}
		fmt.Fprintf(&b, "%d,2021,%s,%s,%d Oak Rd,%d,%d,0.7,Residential,Condo\n",
			i+1, date, town, i, 120000+i*100, 190000+i*750)
	}
	raw := filepath.Join(root, config.DefaultRawDir)
	require.NoError(t, os.MkdirAll(raw, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(raw, name), []byte(b.String()), 0644))
	return root
}

func runPipeline(t *testing.T, root string, extra ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args := append([]string{"-root", root, "-config", filepath.Join(root, "config", "absent.yaml")}, extra...)
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Success(t *testing.T) {
	root := newProject(t, "Housing_data.csv", 72, true)

	code, stdout, stderr := runPipeline(t, root, "-top", "3")
	require.Equal(t, config.ExitOK, code, stderr)

	assert.Contains(t, stdout, "Housing affordability")
	assert.Contains(t, stdout, "data/raw/Housing_data.csv")
	assert.Contains(t, stdout, "2022-12")
	assert.Contains(t, stdout, "Ashford")
	assert.Contains(t, stdout, "data/analytics/manifest.json")

	paths, err := config.GetPaths(root)
	require.NoError(t, err)
	for _, p := range []string{
		paths.CleanTableCSV, paths.MonthlyCSV, paths.MonthlyDeltasCSV,
		paths.AffordabilityCSV, paths.WorkbookXLSX, paths.ManifestJSON,
		paths.GetReportPath(config.TopAreasHTMLFile),
		paths.GetReportPath(config.YoYHeatmapFile),
	} {
		assert.FileExists(t, p)
	}

	metrics, err := os.ReadFile(paths.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "pipeline_runs_total")
	assert.Contains(t, string(metrics), "pipeline_steps_total")

	logs, err := os.ReadFile(paths.GetLogPath(config.DefaultLogFile))
	require.NoError(t, err)
	assert.Contains(t, string(logs), "all_steps_completed")
}

func TestRun_ExplicitInput(t *testing.T) {
	root := newProject(t, "other.csv", 60, true)
	code, _, stderr := runPipeline(t, root, "-input", "data/raw/other.csv")
	assert.Equal(t, config.ExitOK, code, stderr)
}

func TestRun_NoInput(t *testing.T) {
	root := newProject(t, "", 0, true)
	code, stdout, stderr := runPipeline(t, root)
	assert.Equal(t, config.ExitNoInput, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no CSV or XLSX input found in data/raw")
}

func TestRun_NoDates(t *testing.T) {
	root := newProject(t, "Housing_data.csv", 60, false)
	code, _, stderr := runPipeline(t, root)
	assert.Equal(t, config.ExitNoDates, code)
	assert.Contains(t, stderr, "no usable dates")
	assert.FileExists(t, filepath.Join(root, config.DefaultCleanDir, config.CleanTableFile))
}

func TestRun_Assumptions(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode int
		wantErr  string
	}{
		{"override", "defaults:\n  gross_monthly_income: 12000\n", config.ExitOK, ""},
		{"malformed", "defaults: [unclosed\n", config.ExitOK, "using default assumptions"},
		{"invalid value", "defaults:\n  down_payment_pct: 1.5\n", config.ExitFailure, "invalid financial assumptions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newProject(t, "Housing_data.csv", 60, true)
			path := filepath.Join(root, config.DefaultConfigDir, config.AssumptionsFile)
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			code, _, stderr := runPipeline(t, root)
			assert.Equal(t, tt.wantCode, code, stderr)
			if tt.wantErr != "" {
				assert.Contains(t, stderr, tt.wantErr)
			}
		})
	}
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, config.ExitFailure, run(context.Background(), []string{"-bogus"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "flag provided but not defined")
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, config.ExitOK, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "housing-pipeline v"))
	assert.Empty(t, stderr.String())
}
