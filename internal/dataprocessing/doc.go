// Package dataprocessing turns a raw property-transfer extract into monthly
// price metrics per area.
//
// # Stages
//
//	RawTable → Normalize → CanonicalTable → MonthlyByArea → AddDeltas → SelectSnapshot
//
// Normalize lowercases headers, maps source columns onto the canonical schema,
// detects the date column and coerces numbers, ratios and timestamps. Cells
// that do not parse become nil; they never fail the run.
//
// MonthlyByArea groups records by (month, area) and returns an AppError of type
// SCHEMA when a required column is absent. AddDeltas fills month-over-month and
// year-over-year changes of the median sale amount using positional lags.
// SelectSnapshot picks the latest month's medians, falling back to each area's
// most recent busy month when the latest month is empty.
//
// # Readers
//
// ReadFile accepts CSV and XLSX extracts. Ragged rows are allowed; missing
// trailing cells read as empty strings.
//
// All functions in this package are pure with respect to logging; callers in
// internal/operations report counts and warnings.
package dataprocessing
