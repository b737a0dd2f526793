package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housingcli/internal/config"
	"housingcli/internal/exporter"
	"housingcli/internal/infrastructure"
	"housingcli/pkg/contracts/domain"
)

func newTestApp(t *testing.T, seed bool) (*Application, *config.Paths) {
	t.Helper()
	paths, err := config.GetPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	if seed {
		w := exporter.NewCSVWriter(paths)
		rows := []domain.AffordabilityRow{
			{Area: "Ashford", MedianPrice: 180000, SalesCount: 4, TotalMonthly: 1700, FrontEndRatio: domain.Float(0.21), BackEndRatio: domain.Float(0.21), PassesDTI: true},
			{Area: "Bethel", MedianPrice: 420000, SalesCount: 6, TotalMonthly: 3600, FrontEndRatio: domain.Float(0.45), BackEndRatio: domain.Float(0.45)},
		}
		require.NoError(t, w.WriteAffordability(paths.AffordabilityCSV, rows))
		series := []domain.MonthlySummary{
			{MonthKey: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Area: "Ashford", SalesCount: 2, MedianSaleAmount: domain.Float(175000)},
			{MonthKey: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), Area: "Ashford", SalesCount: 4, MedianSaleAmount: domain.Float(180000), MoM: domain.Float(0.5)},
		}
		require.NoError(t, w.WriteMonthly(paths.MonthlyDeltasCSV, series, true))

		entries, err := exporter.BuildEntries(paths.Root,
			exporter.TableFile{Name: "affordability_latest", Path: paths.AffordabilityCSV, Rows: 2})
		require.NoError(t, err)
		m := &exporter.Manifest{RunID: "run-1", GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Tables: entries}
		require.NoError(t, m.SaveToFile(paths.ManifestJSON))

		require.NoError(t, os.WriteFile(filepath.Join(paths.ReportsDir, config.YoYHeatmapFile), []byte("<html>yoy</html>"), 0644))
	}

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.EnableTracing = false
	otelCfg.Registry = promclient.NewRegistry()
	logger := infrastructure.NewJSONLogger(&bytes.Buffer{}, "error")
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Server.RateLimit.Enabled = false
	app, err := NewApplication(cfg, paths, logger, providers)
	require.NoError(t, err)
	return app, paths
}

func get(t *testing.T, app *Application, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t, true)
	rec := get(t, app, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, config.AppVersion, body["version"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAffordabilityEndpoint(t *testing.T) {
	app, _ := newTestApp(t, true)

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantCount float64
	}{
		{"all", "/api/v1/affordability", http.StatusOK, 2},
		{"passing", "/api/v1/affordability?passing=true", http.StatusOK, 1},
		{"limit", "/api/v1/affordability?limit=1", http.StatusOK, 1},
		{"bad passing", "/api/v1/affordability?passing=maybe", http.StatusBadRequest, 0},
		{"bad limit", "/api/v1/affordability?limit=-3", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, app, tt.target)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			body := decode(t, rec)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantCount, body["count"])
				return
			}
			assert.Equal(t, false, body["success"])
			apiErr := body["error"].(map[string]interface{})
			assert.Equal(t, "INVALID_PARAMETER", apiErr["error_code"])
		})
	}

	rec := get(t, app, "/api/v1/affordability?limit=1")
	data := decode(t, rec)["data"].([]interface{})
	first := data[0].(map[string]interface{})
	assert.Equal(t, "Ashford", first["area"])
	assert.Equal(t, true, first["passes_dti"])
	assert.InDelta(t, 0.21, first["front_end_ratio"], 1e-9)
}

func TestAreaMonthlyEndpoint(t *testing.T) {
	app, _ := newTestApp(t, true)

	rec := get(t, app, "/api/v1/areas/ashford/monthly")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Ashford", body["area"])
	months := body["months"].([]interface{})
	require.Len(t, months, 2)
	assert.Equal(t, "2023-01", months[0].(map[string]interface{})["month"])
	assert.Nil(t, months[0].(map[string]interface{})["mom"])
	assert.Equal(t, 0.5, months[1].(map[string]interface{})["mom"])

	rec = get(t, app, "/api/v1/areas/Nowhere/monthly")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, app, "/api/v1/areas")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"Ashford"}, decode(t, rec)["data"])
}

func TestManifestEndpoint(t *testing.T) {
	app, _ := newTestApp(t, true)
	rec := get(t, app, "/api/v1/manifest")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "run-1", body["run_id"])
	assert.Len(t, body["tables"], 1)
	assert.NotEmpty(t, rec.Header().Get("Last-Modified"))
}

func TestEndpointsBeforeFirstRun(t *testing.T) {
	app, _ := newTestApp(t, false)

	for _, target := range []string{"/api/v1/affordability", "/api/v1/manifest", "/api/v1/areas/Ashford/monthly"} {
		rec := get(t, app, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		apiErr := decode(t, rec)["error"].(map[string]interface{})
		assert.Equal(t, "ARTIFACT_NOT_FOUND", apiErr["error_code"], target)
	}

	rec := get(t, app, "/healthz")
	assert.Equal(t, "degraded", decode(t, rec)["status"])
}

func TestReportsAndMetrics(t *testing.T) {
	app, _ := newTestApp(t, true)

	rec := get(t, app, "/reports/"+config.YoYHeatmapFile)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>yoy</html>", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, app, "/reports/missing.html").Code)
	assert.Equal(t, http.StatusNotFound, get(t, app, "/nope").Code)

	rec = get(t, app, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRunStopsOnCancel(t *testing.T) {
	app, _ := newTestApp(t, false)
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
