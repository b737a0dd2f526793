// Package exporter writes and reads the pipeline's tabular outputs.
//
// CSVWriter writes the four analytical tables (clean transfers, monthly by
// area, monthly with deltas, latest affordability). Unknown values are empty
// cells, floats use the shortest form that round-trips and dates are written
// as YYYY-MM-DD, so re-running on the same input produces identical bytes.
//
// WriteWorkbook bundles the analytics tables into one XLSX file and
// BuildManifest records row counts and BLAKE2b-256 checksums of every table.
// LoadMonthly and LoadAffordability read the CSV tables back for the report
// server.
package exporter
