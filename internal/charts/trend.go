package charts

import (
	"sort"

	"housingcli/pkg/contracts/domain"
)

// MinTrendPoints is the number of months an area needs before its static trend is drawn.
const MinTrendPoints = 3

// areaSeries returns the rows of area ordered by month.
func areaSeries(series []domain.MonthlySummary, area string) []domain.MonthlySummary {
	var out []domain.MonthlySummary
	for _, s := range series {
		if s.Area == area {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MonthKey.Before(out[j].MonthKey)
	})
	return out
}

// TrendHTML writes a line chart of the monthly median sale amount, one line
// per area. It returns false when none of the areas has rows and a
// placeholder was written instead.
func TrendHTML(series []domain.MonthlySummary, areas []string, path string) (bool, error) {
	selected := make([]string, 0, len(areas))
	seen := make(map[string]bool, len(areas))
	for _, a := range areas {
		if !seen[a] {
			seen[a] = true
			selected = append(selected, a)
		}
	}
	sort.Strings(selected)

	var traces []Trace
	for _, area := range selected {
		rows := areaSeries(series, area)
		if len(rows) == 0 {
			continue
		}
		x := make([]string, len(rows))
		y := make([]*float64, len(rows))
		for i, r := range rows {
			x[i] = r.MonthKey.Format("2006-01-02")
			y[i] = r.MedianSaleAmount
		}
		traces = append(traces, Trace{
			Type: "scatter",
			Mode: "lines",
			Name: area,
			X:    x,
			Y:    y,
		})
	}

	if len(traces) == 0 {
		return false, WritePlaceholder(path, NoTrendDataTitle)
	}

	return true, WriteFigure(path, Figure{
		Data: traces,
		Layout: Layout{
			Title:     Title{Text: trendTitle},
			HoverMode: "x unified",
			XAxis:     &Axis{Title: &Title{Text: "month_key"}, Type: "date"},
			YAxis:     &Axis{Title: &Title{Text: "median_sale_amount"}, TickPrefix: "$"},
		},
	})
}

// TrendAreas picks the areas for the trend charts: the n snapshot areas with
// the most sales, or when the snapshot is empty the n areas with the most
// sales over the whole series.
func TrendAreas(snapshot []domain.SnapshotRow, series []domain.MonthlySummary, n int) []string {
	type areaCount struct {
		area  string
		sales int
	}
	var counts []areaCount

	if len(snapshot) > 0 {
		for _, r := range snapshot {
			counts = append(counts, areaCount{r.Area, r.SalesCount})
		}
	} else {
		totals := make(map[string]int)
		var order []string
		for _, s := range series {
			if _, ok := totals[s.Area]; !ok {
				order = append(order, s.Area)
			}
			totals[s.Area] += s.SalesCount
		}
		sort.Strings(order)
		for _, a := range order {
			counts = append(counts, areaCount{a, totals[a]})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].sales > counts[j].sales
	})
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}

	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.area
	}
	return out
}
