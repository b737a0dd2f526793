package exporter

import (
	"fmt"

	"housingcli/pkg/contracts/domain"
)

// Column headers of the analytics tables.
var (
	MonthlyHeaders = []string{
		"month_key", "area", "sales_count",
		"median_sale_amount", "avg_assessed_value", "avg_sales_ratio",
	}
	DeltaHeaders = append(append([]string{}, MonthlyHeaders...), "mom", "yoy")

	AffordabilityHeaders = []string{
		"area", "median_price", "sales_count",
		"pmt_pi", "taxes_monthly", "insurance_monthly", "hoa_monthly",
		"total_monthly", "cash_to_close",
		"front_end_ratio", "back_end_ratio", "passes_dti",
	}
)

// WriteCleanTable streams the normalized transfers, one column per
// canonical column present in the table.
func (w *CSVWriter) WriteCleanTable(filePath string, table *domain.CanonicalTable) (int, error) {
	stream, err := w.CreateStreamWriter(filePath, table.Columns)
	if err != nil {
		return 0, err
	}

	for i := range table.Records {
		if err := stream.WriteRecord(cleanRecord(&table.Records[i], table.Columns)); err != nil {
			stream.Close()
			return stream.Rows(), fmt.Errorf("failed to write clean row %d: %w", i, err)
		}
	}
	return stream.Rows(), stream.Close()
}

func cleanRecord(r *domain.CanonicalRecord, columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		switch col {
		case domain.ColSerialNumber:
			out[i] = r.SerialNumber
		case domain.ColListYear:
			out[i] = r.ListYear
		case domain.ColDateRecorded:
			out[i] = formatDatePtr(r.DateRecorded)
		case domain.ColMonthKey:
			out[i] = formatDatePtr(r.MonthKey)
		case domain.ColArea:
			out[i] = r.Area
		case domain.ColAddress:
			out[i] = r.Address
		case domain.ColAssessedValue:
			out[i] = formatFloatPtr(r.AssessedValue)
		case domain.ColSaleAmount:
			out[i] = formatFloatPtr(r.SaleAmount)
		case domain.ColSalesRatio:
			out[i] = formatFloatPtr(r.SalesRatio)
		case domain.ColPropertyType:
			out[i] = r.PropertyType
		case domain.ColResidentialType:
			out[i] = r.ResidentialType
		}
	}
	return out
}

// WriteMonthly writes the monthly summary table, including the mom and yoy
// columns when withDeltas is set.
func (w *CSVWriter) WriteMonthly(filePath string, series []domain.MonthlySummary, withDeltas bool) error {
	headers := MonthlyHeaders
	if withDeltas {
		headers = DeltaHeaders
	}

	records := make([][]string, 0, len(series))
	for _, s := range series {
		row := []string{
			formatDate(s.MonthKey),
			s.Area,
			formatInt(s.SalesCount),
			formatFloatPtr(s.MedianSaleAmount),
			formatFloatPtr(s.AvgAssessedValue),
			formatFloatPtr(s.AvgSalesRatio),
		}
		if withDeltas {
			row = append(row, formatFloatPtr(s.MoM), formatFloatPtr(s.YoY))
		}
		records = append(records, row)
	}

	return w.WriteCSV(filePath, WriteOptions{Headers: headers, Records: records})
}

// WriteAffordability writes the ranked affordability table in the given order.
func (w *CSVWriter) WriteAffordability(filePath string, rows []domain.AffordabilityRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Area,
			formatFloat(r.MedianPrice),
			formatInt(r.SalesCount),
			formatFloat(r.PaymentPI),
			formatFloat(r.TaxesMonthly),
			formatFloat(r.InsuranceMonthly),
			formatFloat(r.HOAMonthly),
			formatFloat(r.TotalMonthly),
			formatFloat(r.CashToClose),
			formatFloatPtr(r.FrontEndRatio),
			formatFloatPtr(r.BackEndRatio),
			formatBool(r.PassesDTI),
		})
	}

	return w.WriteCSV(filePath, WriteOptions{Headers: AffordabilityHeaders, Records: records})
}
