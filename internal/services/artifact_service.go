package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"housingcli/internal/config"
	apperrors "housingcli/internal/errors"
	"housingcli/internal/exporter"
	"housingcli/pkg/contracts/domain"
)

// ArtifactService reads the pipeline's analytics tables
type ArtifactService struct {
	paths  *config.Paths
	logger *slog.Logger
}

// AffordabilityQuery filters the ranked affordability table
type AffordabilityQuery struct {
	PassingOnly bool
	// Limit keeps the first rows by rank; zero keeps all.
	Limit int
}

// NewArtifactService creates an artifact service over the project paths
func NewArtifactService(paths *config.Paths, logger *slog.Logger) *ArtifactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactService{
		paths:  paths,
		logger: logger.With(slog.String("service", "artifacts")),
	}
}

// Affordability returns the ranked affordability rows matching q
func (s *ArtifactService) Affordability(ctx context.Context, q AffordabilityQuery) ([]domain.AffordabilityRow, error) {
	if q.Limit < 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := exporter.LoadAffordability(s.paths.AffordabilityCSV)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AffordabilityRow, 0, len(rows))
	for _, r := range rows {
		if q.PassingOnly && !r.PassesDTI {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}

	s.logger.DebugContext(ctx, "affordability served",
		slog.Int("rows", len(out)),
		slog.Bool("passing_only", q.PassingOnly),
		slog.Int("limit", q.Limit))
	return out, nil
}

// Areas lists the distinct areas of the monthly table in name order
func (s *ArtifactService) Areas(ctx context.Context) ([]string, error) {
	series, err := exporter.LoadMonthly(s.paths.MonthlyDeltasCSV)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	areas := make([]string, 0)
	for _, m := range series {
		if m.Area == "" || seen[m.Area] {
			continue
		}
		seen[m.Area] = true
		areas = append(areas, m.Area)
	}
	sort.Strings(areas)
	return areas, nil
}

// AreaMonthly returns one area's monthly series with deltas, oldest month
// first. Area names match case-insensitively.
func (s *ArtifactService) AreaMonthly(ctx context.Context, area string) ([]domain.MonthlySummary, error) {
	series, err := exporter.LoadMonthly(s.paths.MonthlyDeltasCSV)
	if err != nil {
		return nil, err
	}

	var out []domain.MonthlySummary
	for _, m := range series {
		if strings.EqualFold(m.Area, area) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("area %q", area), ErrAreaNotFound)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MonthKey.Before(out[j].MonthKey)
	})
	return out, nil
}

// Manifest returns the manifest of the last successful run
func (s *ArtifactService) Manifest(ctx context.Context) (*exporter.Manifest, error) {
	return exporter.LoadManifestFromFile(s.paths.ManifestJSON)
}
