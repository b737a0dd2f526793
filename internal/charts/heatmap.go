package charts

import (
	"sort"
	"time"

	"housingcli/pkg/contracts/domain"
)

// YoYHeatmap writes an area by month heatmap of year-over-year change.
// Areas without a single YoY value are left out; months are the union of
// months seen in the series. It returns false when no area has YoY data.
func YoYHeatmap(series []domain.MonthlySummary, path string) (bool, error) {
	cells := make(map[string]map[time.Time]float64)
	monthSet := make(map[time.Time]bool)

	for _, s := range series {
		if s.YoY == nil {
			continue
		}
		byMonth, ok := cells[s.Area]
		if !ok {
			byMonth = make(map[time.Time]float64)
			cells[s.Area] = byMonth
		}
		byMonth[s.MonthKey] = *s.YoY
		monthSet[s.MonthKey] = true
	}

	if len(cells) == 0 {
		return false, WritePlaceholder(path, NoYoYDataTitle)
	}

	areas := make([]string, 0, len(cells))
	for a := range cells {
		areas = append(areas, a)
	}
	sort.Strings(areas)

	months := make([]time.Time, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	x := make([]string, len(months))
	for i, m := range months {
		x[i] = m.Format("2006-01-02")
	}

	z := make([][]*float64, len(areas))
	for i, a := range areas {
		row := make([]*float64, len(months))
		for j, m := range months {
			if v, ok := cells[a][m]; ok {
				row[j] = domain.Float(v)
			}
		}
		z[i] = row
	}

	return true, WriteFigure(path, Figure{
		Data: []Trace{{
			Type:     "heatmap",
			X:        x,
			Y:        areas,
			Z:        z,
			ColorBar: &ColorBar{Title: Title{Text: heatmapColorBar}},
		}},
		Layout: Layout{
			Title: Title{Text: heatmapTitle},
			YAxis: &Axis{Type: "category"},
		},
	})
}
