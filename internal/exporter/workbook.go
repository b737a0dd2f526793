package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "housingcli/internal/errors"
	"housingcli/pkg/contracts/domain"
)

// Sheet names of the report workbook.
const (
	SheetAffordability = "affordability"
	SheetMonthly       = "monthly_by_area"
	SheetDeltas        = "monthly_with_deltas"
)

// WorkbookData is the content of the report workbook.
type WorkbookData struct {
	Monthly       []domain.MonthlySummary
	Deltas        []domain.MonthlySummary
	Affordability []domain.AffordabilityRow
}

// WriteWorkbook saves the analytics tables as sheets of a single XLSX file.
// Unknown values are left as blank cells and numbers stay numeric.
func WriteWorkbook(path string, data WorkbookData) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewStorageError("failed to create header style", err)
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{SheetAffordability, AffordabilityHeaders, affordabilityCells(data.Affordability)},
		{SheetMonthly, MonthlyHeaders, monthlyCells(data.Monthly, false)},
		{SheetDeltas, DeltaHeaders, monthlyCells(data.Deltas, true)},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return apperrors.NewStorageError("failed to rename sheet", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to add sheet %s", sheet.name), err)
		}
		if err := writeSheet(f, sheet.name, sheet.headers, sheet.rows, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to save workbook %s", path), err)
	}

	slog.Debug("Wrote workbook",
		slog.String("path", path),
		slog.Int("affordability_rows", len(data.Affordability)),
		slog.Int("monthly_rows", len(data.Monthly)))
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s header", sheet), err)
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return apperrors.NewStorageError("invalid header range", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to style %s header", sheet), err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("invalid row", err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write %s row %d", sheet, i+1), err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to freeze %s header", sheet), err)
	}
	return nil
}

func cellValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func monthlyCells(series []domain.MonthlySummary, withDeltas bool) [][]interface{} {
	rows := make([][]interface{}, 0, len(series))
	for _, s := range series {
		row := []interface{}{
			formatDate(s.MonthKey),
			s.Area,
			s.SalesCount,
			cellValue(s.MedianSaleAmount),
			cellValue(s.AvgAssessedValue),
			cellValue(s.AvgSalesRatio),
		}
		if withDeltas {
			row = append(row, cellValue(s.MoM), cellValue(s.YoY))
		}
		rows = append(rows, row)
	}
	return rows
}

func affordabilityCells(aff []domain.AffordabilityRow) [][]interface{} {
	rows := make([][]interface{}, 0, len(aff))
	for _, r := range aff {
		rows = append(rows, []interface{}{
			r.Area,
			r.MedianPrice,
			r.SalesCount,
			r.PaymentPI,
			r.TaxesMonthly,
			r.InsuranceMonthly,
			r.HOAMonthly,
			r.TotalMonthly,
			r.CashToClose,
			cellValue(r.FrontEndRatio),
			cellValue(r.BackEndRatio),
			r.PassesDTI,
		})
	}
	return rows
}
