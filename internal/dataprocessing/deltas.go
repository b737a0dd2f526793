package dataprocessing

import (
	"math"

	"housingcli/pkg/contracts/domain"
)

const (
	momLag = 1
	yoyLag = 12
)

// AddDeltas returns a copy of series with MoM and YoY median changes filled.
// Lags are positional within each area: the previous row and the row twelve
// rows earlier, regardless of gaps in the calendar.
func AddDeltas(series []domain.MonthlySummary) []domain.MonthlySummary {
	out := make([]domain.MonthlySummary, len(series))
	copy(out, series)
	sortByAreaMonth(out)

	for start := 0; start < len(out); {
		end := start
		for end < len(out) && out[end].Area == out[start].Area {
			end++
		}
		group := out[start:end]
		for i := range group {
			group[i].MoM = nil
			group[i].YoY = nil
			if i >= momLag {
				group[i].MoM = pctChange(group[i].MedianSaleAmount, group[i-momLag].MedianSaleAmount)
			}
			if i >= yoyLag {
				group[i].YoY = pctChange(group[i].MedianSaleAmount, group[i-yoyLag].MedianSaleAmount)
			}
		}
		start = end
	}
	return out
}

// pctChange is cur/prev - 1, nil when either side is unknown or prev is zero.
func pctChange(cur, prev *float64) *float64 {
	if cur == nil || prev == nil || *prev == 0 {
		return nil
	}
	v := *cur / *prev - 1
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
