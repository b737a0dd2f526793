package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"housingcli/internal/config"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Artifacts map[string]bool        `json:"artifacts,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck reports liveness and which pipeline artifacts exist. The
// server is "ok" even before the first run; a missing manifest only
// degrades the status.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
		Artifacts: map[string]bool{
			"affordability": exists(hs.paths.AffordabilityCSV),
			"monthly":       exists(hs.paths.MonthlyDeltasCSV),
			"manifest":      exists(hs.paths.ManifestJSON),
			"workbook":      exists(hs.paths.WorkbookXLSX),
		},
	}
	if !status.Artifacts["manifest"] {
		status.Status = "degraded"
	}

	hs.logger.DebugContext(ctx, "health check",
		slog.String("status", status.Status))
	return status
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
