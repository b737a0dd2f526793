package dataprocessing

import (
	"sort"
	"time"

	apperrors "housingcli/internal/errors"
	"housingcli/pkg/contracts/domain"
)

type groupKey struct {
	month time.Time
	area  string
}

type groupValues struct {
	sales    []float64
	assessed []float64
	ratios   []float64
}

// MonthlyByArea summarizes sales per (month, area). Records without a month
// or an area are skipped. The result is ordered by area, then month.
func MonthlyByArea(table *domain.CanonicalTable) ([]domain.MonthlySummary, error) {
	for _, col := range []string{domain.ColMonthKey, domain.ColArea, domain.ColSaleAmount} {
		if !table.Has(col) {
			return nil, apperrors.NewSchemaError(col)
		}
	}

	groups := make(map[groupKey]*groupValues)
	for i := range table.Records {
		rec := &table.Records[i]
		if rec.MonthKey == nil || rec.Area == "" {
			continue
		}
		key := groupKey{month: *rec.MonthKey, area: rec.Area}
		g, ok := groups[key]
		if !ok {
			g = &groupValues{}
			groups[key] = g
		}
		if rec.SaleAmount != nil {
			g.sales = append(g.sales, *rec.SaleAmount)
		}
		if rec.AssessedValue != nil {
			g.assessed = append(g.assessed, *rec.AssessedValue)
		}
		if rec.SalesRatio != nil {
			g.ratios = append(g.ratios, *rec.SalesRatio)
		}
	}

	out := make([]domain.MonthlySummary, 0, len(groups))
	for key, g := range groups {
		out = append(out, domain.MonthlySummary{
			MonthKey:         key.month,
			Area:             key.area,
			SalesCount:       len(g.sales),
			MedianSaleAmount: median(g.sales),
			AvgAssessedValue: mean(g.assessed),
			AvgSalesRatio:    mean(g.ratios),
		})
	}
	sortByAreaMonth(out)
	return out, nil
}

func sortByAreaMonth(rows []domain.MonthlySummary) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Area != rows[j].Area {
			return rows[i].Area < rows[j].Area
		}
		return rows[i].MonthKey.Before(rows[j].MonthKey)
	})
}

func median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	m := sorted[mid]
	if len(sorted)%2 == 0 {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}
