package operations

// Step identifiers in execution order
const (
	StepIDDiscover      = "discover"
	StepIDLoad          = "load"
	StepIDNormalize     = "normalize"
	StepIDAggregate     = "aggregate"
	StepIDDeltas        = "deltas"
	StepIDSnapshot      = "snapshot"
	StepIDAffordability = "affordability"
	StepIDCharts        = "charts"
	StepIDPublish       = "publish"
)

// Step names
const (
	StepNameDiscover      = "Input Discovery"
	StepNameLoad          = "Raw Table Load"
	StepNameNormalize     = "Schema Normalization"
	StepNameAggregate     = "Monthly Aggregation"
	StepNameDeltas        = "Delta Calculation"
	StepNameSnapshot      = "Snapshot Selection"
	StepNameAffordability = "Affordability Model"
	StepNameCharts        = "Chart Rendering"
	StepNamePublish       = "Workbook and Manifest"
)

// Manifest table names
const (
	TableClean         = "clean"
	TableMonthly       = "monthly_by_area"
	TableDeltas        = "monthly_by_area_with_deltas"
	TableAffordability = "affordability_latest"
)

// Warning kinds recorded on the run
const (
	WarningSnapshotFallback = "snapshot_fallback"
	WarningZeroIncome       = "zero_income"
	WarningRasterization    = "rasterization"
	WarningTrendSkipped     = "trend_skipped"
)
