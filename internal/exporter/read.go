package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "housingcli/internal/errors"
	"housingcli/pkg/contracts/domain"
)

// readTable loads a CSV written by CSVWriter and indexes its header.
func readTable(path string) (map[string]int, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, apperrors.NewNotFoundError(path, err)
		}
		return nil, nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return map[string]int{}, nil, nil
	}
	if err != nil {
		return nil, nil, apperrors.NewParsingError(fmt.Sprintf("failed to read header of %s", path), err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, apperrors.NewParsingError(fmt.Sprintf("failed to read %s", path), err)
	}
	return index, rows, nil
}

type rowReader struct {
	index map[string]int
	row   []string
	err   error
}

func (r *rowReader) cell(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.row) {
		return ""
	}
	return r.row[i]
}

func (r *rowReader) float(col string) float64 {
	v, err := parseFloat(r.cell(col))
	r.fail(col, err)
	return v
}

func (r *rowReader) floatPtr(col string) *float64 {
	v, err := parseFloatPtr(r.cell(col))
	r.fail(col, err)
	return v
}

func (r *rowReader) int(col string) int {
	v, err := parseInt(r.cell(col))
	r.fail(col, err)
	return v
}

func (r *rowReader) fail(col string, err error) {
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
	}
}

// LoadMonthly reads a monthly table written by WriteMonthly. The mom and yoy
// columns are optional.
func LoadMonthly(path string) ([]domain.MonthlySummary, error) {
	index, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{"month_key", "area"} {
		if _, ok := index[col]; !ok && len(rows) > 0 {
			return nil, apperrors.NewSchemaError(col)
		}
	}

	out := make([]domain.MonthlySummary, 0, len(rows))
	for i, row := range rows {
		r := &rowReader{index: index, row: row}
		month, err := parseDate(r.cell("month_key"))
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s row %d: invalid month_key", path, i+1), err)
		}
		s := domain.MonthlySummary{
			MonthKey:         month,
			Area:             r.cell("area"),
			SalesCount:       r.int("sales_count"),
			MedianSaleAmount: r.floatPtr("median_sale_amount"),
			AvgAssessedValue: r.floatPtr("avg_assessed_value"),
			AvgSalesRatio:    r.floatPtr("avg_sales_ratio"),
			MoM:              r.floatPtr("mom"),
			YoY:              r.floatPtr("yoy"),
		}
		if r.err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s row %d", path, i+1), r.err)
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadAffordability reads the table written by WriteAffordability, keeping its order.
func LoadAffordability(path string) ([]domain.AffordabilityRow, error) {
	index, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if _, ok := index["area"]; !ok && len(rows) > 0 {
		return nil, apperrors.NewSchemaError("area")
	}

	out := make([]domain.AffordabilityRow, 0, len(rows))
	for i, row := range rows {
		r := &rowReader{index: index, row: row}
		a := domain.AffordabilityRow{
			Area:             r.cell("area"),
			MedianPrice:      r.float("median_price"),
			SalesCount:       r.int("sales_count"),
			PaymentPI:        r.float("pmt_pi"),
			TaxesMonthly:     r.float("taxes_monthly"),
			InsuranceMonthly: r.float("insurance_monthly"),
			HOAMonthly:       r.float("hoa_monthly"),
			TotalMonthly:     r.float("total_monthly"),
			CashToClose:      r.float("cash_to_close"),
			FrontEndRatio:    r.floatPtr("front_end_ratio"),
			BackEndRatio:     r.floatPtr("back_end_ratio"),
			PassesDTI:        strings.EqualFold(r.cell("passes_dti"), "true"),
		}
		if r.err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s row %d", path, i+1), r.err)
		}
		out = append(out, a)
	}
	return out, nil
}
