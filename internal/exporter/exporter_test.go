package exporter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"housingcli/internal/config"
	apperrors "housingcli/internal/errors"
	"housingcli/pkg/contracts/domain"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func sampleSeries() []domain.MonthlySummary {
	return []domain.MonthlySummary{
		{
			MonthKey:         month(2023, time.January),
			Area:             "Ashford",
			SalesCount:       3,
			MedianSaleAmount: domain.Float(250000),
			AvgAssessedValue: domain.Float(175000.5),
			AvgSalesRatio:    domain.Float(0.7),
		},
		{
			MonthKey:         month(2023, time.February),
			Area:             "Ashford",
			SalesCount:       0,
			MedianSaleAmount: nil,
			AvgAssessedValue: domain.Float(180000),
			AvgSalesRatio:    nil,
			MoM:              nil,
		},
		{
			MonthKey:         month(2023, time.January),
			Area:             "Bethel, North",
			SalesCount:       1,
			MedianSaleAmount: domain.Float(410000),
			MoM:              domain.Float(0.05),
			YoY:              domain.Float(-0.125),
		},
	}
}

func sampleAffordability() []domain.AffordabilityRow {
	return []domain.AffordabilityRow{
		{
			Area: "Ashford", MedianPrice: 250000, SalesCount: 3,
			PaymentPI: 1422.15, TaxesMonthly: 250, InsuranceMonthly: 125, HOAMonthly: 0,
			TotalMonthly: 1797.15, CashToClose: 32500,
			FrontEndRatio: domain.Float(0.2246), BackEndRatio: domain.Float(0.2246), PassesDTI: true,
		},
		{
			Area: "Bethel, North", MedianPrice: 410000, SalesCount: 1,
			PaymentPI: 2332.33, TaxesMonthly: 410, InsuranceMonthly: 125,
			TotalMonthly: 2867.33, CashToClose: 53300,
		},
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0.1", formatFloat(0.1))
	assert.Equal(t, "250000", formatFloat(250000))
	assert.Equal(t, "0.0000001", formatFloat(1e-7))
	assert.Equal(t, "", formatFloatPtr(nil))
	assert.Equal(t, "2023-04-01", formatDate(month(2023, time.April)))
	assert.Equal(t, "2023-04-01 13:45:00", formatDate(time.Date(2023, 4, 1, 13, 45, 0, 0, time.UTC)))
	assert.Equal(t, "", formatDatePtr(nil))
	assert.Equal(t, "true", formatBool(true))

	parsed, err := parseDate("2023-04-01 13:45:00")
	require.NoError(t, err)
	assert.Equal(t, 13, parsed.Hour())
}

func TestWriteCleanTable(t *testing.T) {
	dir := t.TempDir()
	paths, err := config.GetPaths(dir)
	require.NoError(t, err)
	w := NewCSVWriter(paths)

	recorded := time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC)
	mk := month(2023, time.March)
	table := &domain.CanonicalTable{
		Columns: []string{domain.ColDateRecorded, domain.ColMonthKey, domain.ColArea, domain.ColSaleAmount},
		Records: []domain.CanonicalRecord{
			{DateRecorded: &recorded, MonthKey: &mk, Area: "Ashford", SaleAmount: domain.Float(1234.5)},
			{Area: "Bethel, North"},
		},
	}

	rows, err := w.WriteCleanTable(filepath.Join("data", "clean", "clean.csv"), table)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	content, err := os.ReadFile(filepath.Join(dir, "data", "clean", "clean.csv"))
	require.NoError(t, err)
	expected := "date_recorded,month_key,area,sale_amount\n" +
		"2023-03-14,2023-03-01,Ashford,1234.5\n" +
		",,\"Bethel, North\",\n"
	assert.Equal(t, expected, string(content))
}

func TestMonthlyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(nil)
	series := sampleSeries()

	plain := filepath.Join(dir, "monthly.csv")
	require.NoError(t, w.WriteMonthly(plain, series, false))
	deltas := filepath.Join(dir, "deltas.csv")
	require.NoError(t, w.WriteMonthly(deltas, series, true))

	header, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(header), strings.Join(MonthlyHeaders, ",")+"\n"))

	loaded, err := LoadMonthly(deltas)
	require.NoError(t, err)
	assert.Equal(t, series, loaded)

	loadedPlain, err := LoadMonthly(plain)
	require.NoError(t, err)
	require.Len(t, loadedPlain, 3)
	assert.Nil(t, loadedPlain[2].MoM)
	assert.Nil(t, loadedPlain[2].YoY)
}

func TestWriteMonthly_Idempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(nil)
	path := filepath.Join(dir, "deltas.csv")

	require.NoError(t, w.WriteMonthly(path, sampleSeries(), true))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteMonthly(path, sampleSeries(), true))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAffordabilityRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aff.csv")
	rows := sampleAffordability()

	require.NoError(t, NewCSVWriter(nil).WriteAffordability(path, rows))
	loaded, err := LoadAffordability(path)
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadMonthly(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	noArea := filepath.Join(dir, "no_area.csv")
	require.NoError(t, os.WriteFile(noArea, []byte("month_key,sales_count\n2023-01-01,1\n"), 0644))
	_, err = LoadMonthly(noArea)
	assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))

	badNumber := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(badNumber, []byte("area,median_price\nAshford,abc\n"), 0644))
	_, err = LoadAffordability(badNumber)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	rows, err := LoadAffordability(empty)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics", "report.xlsx")
	series := sampleSeries()

	require.NoError(t, WriteWorkbook(path, WorkbookData{
		Monthly:       series,
		Deltas:        series,
		Affordability: sampleAffordability(),
	}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetAffordability, SheetMonthly, SheetDeltas}, f.GetSheetList())

	rows, err := f.GetRows(SheetAffordability)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, AffordabilityHeaders, rows[0])
	assert.Equal(t, "Ashford", rows[1][0])
	assert.Equal(t, "250000", rows[1][1])

	deltaRows, err := f.GetRows(SheetDeltas)
	require.NoError(t, err)
	assert.Equal(t, DeltaHeaders, deltaRows[0])
	assert.Equal(t, "2023-01-01", deltaRows[1][0])
}

func TestManifest(t *testing.T) {
	root := t.TempDir()
	w := NewCSVWriter(nil)
	path := filepath.Join(root, "data", "analytics", "aff.csv")
	require.NoError(t, w.WriteAffordability(path, sampleAffordability()))

	entries, err := BuildEntries(root, TableFile{Name: "affordability", Path: path, Rows: 2})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data/analytics/aff.csv", entries[0].Path)
	assert.Len(t, entries[0].Checksum, 64)

	again, err := BuildEntries(root, TableFile{Name: "affordability", Path: path, Rows: 2})
	require.NoError(t, err)
	assert.Equal(t, entries[0].Checksum, again[0].Checksum)

	m := &Manifest{RunID: "run-1", GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Tables: entries}
	manifestPath := filepath.Join(root, "data", "analytics", "manifest.json")
	require.NoError(t, m.SaveToFile(manifestPath))

	loaded, err := LoadManifestFromFile(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	entry, ok := loaded.Entry("affordability")
	assert.True(t, ok)
	assert.Equal(t, 2, entry.Rows)
	_, ok = loaded.Entry("missing")
	assert.False(t, ok)

	_, err = BuildEntries(root, TableFile{Name: "gone", Path: filepath.Join(root, "gone.csv")})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
