package http

import (
	"context"

	"housingcli/internal/exporter"
	"housingcli/internal/services"
	"housingcli/pkg/contracts/domain"
)

// ArtifactReader is the read model the artifact handlers serve
type ArtifactReader interface {
	Affordability(ctx context.Context, q services.AffordabilityQuery) ([]domain.AffordabilityRow, error)
	Areas(ctx context.Context) ([]string, error)
	AreaMonthly(ctx context.Context, area string) ([]domain.MonthlySummary, error)
	Manifest(ctx context.Context) (*exporter.Manifest, error)
}

// HealthChecker reports server health
type HealthChecker interface {
	HealthCheck(ctx context.Context) services.HealthStatus
}
