package charts

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"housingcli/internal/affordability"
	"housingcli/internal/config"
	"housingcli/pkg/contracts/domain"
)

// Input is everything the charts are drawn from.
type Input struct {
	Series        []domain.MonthlySummary
	Snapshot      []domain.SnapshotRow
	Affordability []domain.AffordabilityRow
}

// ChartFile is one written artifact.
type ChartFile struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Placeholder bool   `json:"placeholder"`
}

// Report lists the files a render produced.
type Report struct {
	Files      []ChartFile
	TrendAreas []string
	StrictDTI  bool
	// Skipped names charts that were intentionally not written.
	Skipped []string
	// Warnings holds rasterization failures.
	Warnings []string
}

// Renderer writes all charts of a run into the reports directory.
type Renderer struct {
	dir        string
	cfg        config.ChartsConfig
	rasterizer Rasterizer
	logger     *slog.Logger
}

// NewRenderer creates a renderer writing into dir. rasterizer may be nil,
// in which case no PNG copies are made regardless of cfg.RenderPNG.
func NewRenderer(dir string, cfg config.ChartsConfig, rasterizer Rasterizer, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Renderer{dir: dir, cfg: cfg, rasterizer: rasterizer, logger: logger}
}

type chartJob struct {
	name  string
	html  bool
	write func(path string) (bool, error)
}

// Render writes the trend, top areas and heatmap charts concurrently. Each
// chart owns its file, so the first write error cancels the rest.
func (r *Renderer) Render(ctx context.Context, in Input) (*Report, error) {
	report := &Report{
		TrendAreas: TrendAreas(in.Snapshot, in.Series, r.cfg.TrendAreas),
		StrictDTI:  affordability.AnyPasses(in.Affordability),
	}

	jobs := []chartJob{
		{
			name: config.TrendHTMLFile,
			html: true,
			write: func(path string) (bool, error) {
				return TrendHTML(in.Series, report.TrendAreas, path)
			},
		},
		{
			name: config.TopAreasHTMLFile,
			html: true,
			write: func(path string) (bool, error) {
				return TopAreasBar(in.Affordability, r.cfg.TopK, report.StrictDTI, path)
			},
		},
		{
			name: config.YoYHeatmapFile,
			html: true,
			write: func(path string) (bool, error) {
				return YoYHeatmap(in.Series, path)
			},
		},
	}
	if len(report.TrendAreas) > 0 {
		top := report.TrendAreas[0]
		jobs = append(jobs, chartJob{
			name: config.TrendStaticFile,
			write: func(path string) (bool, error) {
				return TrendSVG(in.Series, top, path)
			},
		})
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(r.dir, job.name)
			plotted, err := job.write(path)
			if err != nil {
				return err
			}

			mu.Lock()
			if job.html || plotted {
				report.Files = append(report.Files, ChartFile{Name: job.name, Path: path, Placeholder: job.html && !plotted})
			} else {
				report.Skipped = append(report.Skipped, job.name)
			}
			mu.Unlock()

			if job.html && r.cfg.RenderPNG && r.rasterizer != nil {
				r.rasterize(gctx, path, report, &mu)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Name < report.Files[j].Name })
	sort.Strings(report.Skipped)
	sort.Strings(report.Warnings)
	return report, nil
}

func (r *Renderer) rasterize(ctx context.Context, htmlPath string, report *Report, mu *sync.Mutex) {
	pngPath := PNGPath(htmlPath)
	if err := r.rasterizer.Rasterize(ctx, htmlPath, pngPath); err != nil {
		r.logger.WarnContext(ctx, "PNG rasterization failed",
			slog.String("chart", filepath.Base(htmlPath)),
			slog.String("error", err.Error()))
		mu.Lock()
		report.Warnings = append(report.Warnings, filepath.Base(pngPath)+": "+err.Error())
		mu.Unlock()
		return
	}

	mu.Lock()
	report.Files = append(report.Files, ChartFile{Name: filepath.Base(pngPath), Path: pngPath})
	mu.Unlock()
}
