package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"housingcli/internal/affordability"
	"housingcli/internal/charts"
	"housingcli/internal/config"
	"housingcli/internal/dataprocessing"
	apperrors "housingcli/internal/errors"
	"housingcli/internal/exporter"
	"housingcli/internal/files"
	"housingcli/internal/validation"
)

// Env holds the collaborators shared by the pipeline steps
type Env struct {
	Paths *config.Paths
	// InputFile overrides raw input discovery when set.
	InputFile  string
	Calculator *affordability.Calculator
	Writer     *exporter.CSVWriter
	Renderer   *charts.Renderer
	Logger     *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// DefaultSteps returns the pipeline steps in execution order
func DefaultSteps(env *Env) []Step {
	return []Step{
		NewDiscoverStep(env),
		NewLoadStep(env),
		NewNormalizeStep(env),
		NewAggregateStep(env),
		NewDeltasStep(env),
		NewSnapshotStep(env),
		NewAffordabilityStep(env),
		NewChartsStep(env),
		NewPublishStep(env),
	}
}

// DiscoverStep picks the raw input file
type DiscoverStep struct {
	BaseStage
	env *Env
}

// NewDiscoverStep creates the input discovery step
func NewDiscoverStep(env *Env) *DiscoverStep {
	return &DiscoverStep{BaseStage: NewBaseStage(StepIDDiscover, StepNameDiscover), env: env}
}

// Execute sets state.Input, honoring an explicit input over discovery
func (s *DiscoverStep) Execute(ctx context.Context, state *RunState) error {
	explicit := state.Input
	if explicit == "" {
		explicit = s.env.InputFile
	}

	if explicit != "" {
		path := s.env.Paths.Resolve(explicit)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return apperrors.NewNotFoundError(path, apperrors.ErrNoInputFile)
		}
		state.Input = path
	} else {
		found, err := files.NewDiscovery(s.env.Paths.Root).FindRawInput(s.env.Paths.RawDir)
		if err != nil {
			return err
		}
		state.Input = found.Path
	}

	if err := validation.NewFileValidator(s.env.logger()).ValidateRawInput(state.Input); err != nil {
		return err
	}

	state.GetStep(s.ID()).SetMetadata("input", state.Input)
	s.env.logger().InfoContext(ctx, "raw input selected",
		slog.String("path", state.Input),
		slog.Bool("explicit", explicit != ""))
	return nil
}

// LoadStep reads the raw table
type LoadStep struct {
	BaseStage
	env *Env
}

// NewLoadStep creates the raw table load step
func NewLoadStep(env *Env) *LoadStep {
	return &LoadStep{BaseStage: NewBaseStage(StepIDLoad, StepNameLoad), env: env}
}

// Validate requires a discovered input
func (s *LoadStep) Validate(state *RunState) error {
	if state.Input == "" {
		return NewValidationError(s.ID(), "no input file selected")
	}
	return nil
}

// Execute reads the CSV or XLSX input into state.Raw
func (s *LoadStep) Execute(ctx context.Context, state *RunState) error {
	raw, err := dataprocessing.ReadFile(state.Input)
	if err != nil {
		return err
	}
	state.Raw = raw
	state.GetStep(s.ID()).Report(raw.Len(), fmt.Sprintf("%d rows, %d columns", raw.Len(), len(raw.Headers)))

	s.env.logger().InfoContext(ctx, "raw table loaded",
		slog.Int("rows", raw.Len()),
		slog.Int("columns", len(raw.Headers)))
	return nil
}

// NormalizeStep builds and writes the canonical table
type NormalizeStep struct {
	BaseStage
	env *Env
}

// NewNormalizeStep creates the schema normalization step
func NewNormalizeStep(env *Env) *NormalizeStep {
	return &NormalizeStep{BaseStage: NewBaseStage(StepIDNormalize, StepNameNormalize), env: env}
}

// Validate requires a loaded raw table
func (s *NormalizeStep) Validate(state *RunState) error {
	if state.Raw == nil {
		return NewValidationError(s.ID(), "raw table not loaded")
	}
	return nil
}

// Execute writes the clean table before checking for dates, so a run with
// no usable dates still leaves the clean table behind for inspection.
func (s *NormalizeStep) Execute(ctx context.Context, state *RunState) error {
	table := dataprocessing.Normalize(state.Raw)
	state.Table = table

	path := s.env.Paths.CleanTableCSV
	rows, err := s.env.Writer.WriteCleanTable(path, table)
	if err != nil {
		return err
	}
	state.AddTable(TableClean, path, rows)

	dated := table.DatedRows()
	step := state.GetStep(s.ID())
	step.Report(rows, fmt.Sprintf("wrote %s (%d rows)", filepath.Base(path), rows))
	step.SetMetadata("date_column", table.DateColumn)
	step.SetMetadata("dated_rows", dated)

	s.env.logger().InfoContext(ctx, "clean table written",
		slog.String("path", path),
		slog.Int("rows", rows),
		slog.Any("columns", table.Columns),
		slog.String("date_column", table.DateColumn),
		slog.Int("dated_rows", dated))

	if dated == 0 {
		return fmt.Errorf("%w: fix the date column header or content of %s", apperrors.ErrNoDates, filepath.Base(state.Input))
	}
	return nil
}

// AggregateStep builds the monthly summary per area
type AggregateStep struct {
	BaseStage
	env *Env
}

// NewAggregateStep creates the monthly aggregation step
func NewAggregateStep(env *Env) *AggregateStep {
	return &AggregateStep{BaseStage: NewBaseStage(StepIDAggregate, StepNameAggregate), env: env}
}

// Validate requires a canonical table
func (s *AggregateStep) Validate(state *RunState) error {
	if state.Table == nil {
		return NewValidationError(s.ID(), "canonical table missing")
	}
	return nil
}

// Execute aggregates and writes the monthly table
func (s *AggregateStep) Execute(ctx context.Context, state *RunState) error {
	monthly, err := dataprocessing.MonthlyByArea(state.Table)
	if err != nil {
		return err
	}
	state.Monthly = monthly

	path := s.env.Paths.MonthlyCSV
	if err := s.env.Writer.WriteMonthly(path, monthly, false); err != nil {
		return err
	}
	state.AddTable(TableMonthly, path, len(monthly))
	state.GetStep(s.ID()).Report(len(monthly), fmt.Sprintf("wrote %s (%d rows)", filepath.Base(path), len(monthly)))

	s.env.logger().InfoContext(ctx, "monthly table written",
		slog.String("path", path),
		slog.Int("rows", len(monthly)))
	return nil
}

// DeltasStep adds month-over-month and year-over-year changes
type DeltasStep struct {
	BaseStage
	env *Env
}

// NewDeltasStep creates the delta calculation step
func NewDeltasStep(env *Env) *DeltasStep {
	return &DeltasStep{BaseStage: NewBaseStage(StepIDDeltas, StepNameDeltas), env: env}
}

// Execute computes and writes the deltas table
func (s *DeltasStep) Execute(ctx context.Context, state *RunState) error {
	deltas := dataprocessing.AddDeltas(state.Monthly)
	state.Deltas = deltas

	path := s.env.Paths.MonthlyDeltasCSV
	if err := s.env.Writer.WriteMonthly(path, deltas, true); err != nil {
		return err
	}
	state.AddTable(TableDeltas, path, len(deltas))
	state.GetStep(s.ID()).Report(len(deltas), fmt.Sprintf("wrote %s (%d rows)", filepath.Base(path), len(deltas)))

	s.env.logger().InfoContext(ctx, "deltas table written",
		slog.String("path", path),
		slog.Int("rows", len(deltas)))
	return nil
}

// SnapshotStep selects the price point per area
type SnapshotStep struct {
	BaseStage
	env *Env
}

// NewSnapshotStep creates the snapshot selection step
func NewSnapshotStep(env *Env) *SnapshotStep {
	return &SnapshotStep{BaseStage: NewBaseStage(StepIDSnapshot, StepNameSnapshot), env: env}
}

// Execute selects the snapshot, warning when the fallback was used
func (s *SnapshotStep) Execute(ctx context.Context, state *RunState) error {
	snap := dataprocessing.SelectSnapshot(state.Deltas)
	state.Snapshot = &snap

	step := state.GetStep(s.ID())
	step.Report(len(snap.Rows), fmt.Sprintf("snapshot rows: %d", len(snap.Rows)))
	step.SetMetadata("fallback", snap.Fallback)
	if !snap.Month.IsZero() {
		step.SetMetadata("month", snap.Month.Format("2006-01"))
	}

	if snap.Fallback {
		state.AddWarning(s.ID(), WarningSnapshotFallback,
			"latest-month snapshot empty; using each area's most recent busiest month")
	}
	s.env.logger().InfoContext(ctx, "snapshot selected",
		slog.Int("rows", len(snap.Rows)),
		slog.Bool("fallback", snap.Fallback),
		slog.Time("month", snap.Month))
	return nil
}

// AffordabilityStep prices the snapshot
type AffordabilityStep struct {
	BaseStage
	env *Env
}

// NewAffordabilityStep creates the affordability step
func NewAffordabilityStep(env *Env) *AffordabilityStep {
	return &AffordabilityStep{BaseStage: NewBaseStage(StepIDAffordability, StepNameAffordability), env: env}
}

// Validate requires a snapshot and a calculator
func (s *AffordabilityStep) Validate(state *RunState) error {
	if state.Snapshot == nil {
		return NewValidationError(s.ID(), "snapshot not selected")
	}
	if s.env.Calculator == nil {
		return NewValidationError(s.ID(), "no affordability calculator configured")
	}
	return nil
}

// Execute computes, ranks and writes the affordability table
func (s *AffordabilityStep) Execute(ctx context.Context, state *RunState) error {
	state.Assumptions = s.env.Calculator.Assumptions()
	rows := s.env.Calculator.Calculate(ctx, state.Snapshot.Rows)
	state.Affordability = rows

	if state.Assumptions.GrossMonthlyIncome == 0 {
		state.AddWarning(s.ID(), WarningZeroIncome, "gross monthly income is zero; no area can pass the DTI caps")
	}

	path := s.env.Paths.AffordabilityCSV
	if err := s.env.Writer.WriteAffordability(path, rows); err != nil {
		return err
	}
	state.AddTable(TableAffordability, path, len(rows))
	state.GetStep(s.ID()).Report(len(rows), fmt.Sprintf("wrote %s (%d rows)", filepath.Base(path), len(rows)))
	return nil
}

// ChartsStep renders the report charts
type ChartsStep struct {
	BaseStage
	env *Env
}

// NewChartsStep creates the chart rendering step
func NewChartsStep(env *Env) *ChartsStep {
	return &ChartsStep{BaseStage: NewBaseStage(StepIDCharts, StepNameCharts), env: env}
}

// Validate requires a renderer
func (s *ChartsStep) Validate(state *RunState) error {
	if s.env.Renderer == nil {
		return NewValidationError(s.ID(), "no chart renderer configured")
	}
	return nil
}

// Execute renders every chart; rasterization problems become warnings
func (s *ChartsStep) Execute(ctx context.Context, state *RunState) error {
	in := charts.Input{Series: state.Deltas, Affordability: state.Affordability}
	if state.Snapshot != nil {
		in.Snapshot = state.Snapshot.Rows
	}

	report, err := s.env.Renderer.Render(ctx, in)
	if err != nil {
		return err
	}
	state.Charts = report

	for _, name := range report.Skipped {
		state.AddWarning(s.ID(), WarningTrendSkipped,
			fmt.Sprintf("%s not written: fewer than %d months for the top area", name, charts.MinTrendPoints))
	}
	for _, w := range report.Warnings {
		state.AddWarning(s.ID(), WarningRasterization, w)
	}

	names := make([]string, 0, len(report.Files))
	for _, f := range report.Files {
		names = append(names, f.Name)
	}
	step := state.GetStep(s.ID())
	step.Report(len(report.Files), fmt.Sprintf("%d report files", len(report.Files)))
	step.SetMetadata("trend_areas", report.TrendAreas)
	step.SetMetadata("strict_dti", report.StrictDTI)

	s.env.logger().InfoContext(ctx, "charts rendered",
		slog.String("reports_dir", s.env.Paths.ReportsDir),
		slog.Any("trend_areas", report.TrendAreas),
		slog.Bool("strict_dti", report.StrictDTI),
		slog.Any("files", names))
	return nil
}

// PublishStep writes the workbook and the manifest
type PublishStep struct {
	BaseStage
	env *Env
}

// NewPublishStep creates the publish step
func NewPublishStep(env *Env) *PublishStep {
	return &PublishStep{BaseStage: NewBaseStage(StepIDPublish, StepNamePublish), env: env}
}

// Execute bundles the analytics tables and checksums every written table
func (s *PublishStep) Execute(ctx context.Context, state *RunState) error {
	if err := exporter.WriteWorkbook(s.env.Paths.WorkbookXLSX, exporter.WorkbookData{
		Monthly:       state.Monthly,
		Deltas:        state.Deltas,
		Affordability: state.Affordability,
	}); err != nil {
		return err
	}

	entries, err := exporter.BuildEntries(s.env.Paths.Root, state.Tables...)
	if err != nil {
		return err
	}

	input := state.Input
	if rel, err := filepath.Rel(s.env.Paths.Root, input); err == nil {
		input = filepath.ToSlash(rel)
	}
	manifest := &exporter.Manifest{
		RunID:       state.ID,
		GeneratedAt: time.Now().UTC(),
		Input:       input,
		Tables:      entries,
	}
	if state.Table != nil {
		manifest.DateColumn = state.Table.DateColumn
	}
	if state.Snapshot != nil {
		manifest.Fallback = state.Snapshot.Fallback
	}

	if err := manifest.SaveToFile(s.env.Paths.ManifestJSON); err != nil {
		return err
	}
	state.Manifest = manifest
	state.GetStep(s.ID()).Report(len(entries), fmt.Sprintf("manifest lists %d tables", len(entries)))

	s.env.logger().InfoContext(ctx, "workbook and manifest written",
		slog.String("workbook", s.env.Paths.WorkbookXLSX),
		slog.String("manifest", s.env.Paths.ManifestJSON))
	return nil
}
