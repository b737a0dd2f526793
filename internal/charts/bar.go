package charts

import (
	"fmt"
	"sort"

	"housingcli/pkg/contracts/domain"
)

// TopAreasBar writes a horizontal bar chart of the k areas with the lowest
// total monthly cost. With strictDTI only areas passing the DTI caps are
// eligible. It returns false when nothing qualified and a placeholder was
// written instead.
func TopAreasBar(rows []domain.AffordabilityRow, k int, strictDTI bool, path string) (bool, error) {
	selected := make([]domain.AffordabilityRow, 0, len(rows))
	for _, r := range rows {
		if strictDTI && !r.PassesDTI {
			continue
		}
		selected = append(selected, r)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].TotalMonthly < selected[j].TotalMonthly
	})
	if k >= 0 && len(selected) > k {
		selected = selected[:k]
	}

	if len(selected) == 0 {
		return false, WritePlaceholder(path, NoAreasTitle)
	}

	x := make([]float64, len(selected))
	y := make([]string, len(selected))
	for i, r := range selected {
		x[i] = r.TotalMonthly
		y[i] = r.Area
	}

	return true, WriteFigure(path, Figure{
		Data: []Trace{{
			Type:        "bar",
			Orientation: "h",
			X:           x,
			Y:           y,
		}},
		Layout: Layout{
			Title: Title{Text: BarTitle(k, strictDTI)},
			XAxis: &Axis{Title: &Title{Text: "total_monthly"}, TickPrefix: "$"},
			YAxis: &Axis{Title: &Title{Text: "area"}, CategoryOrder: "total ascending"},
		},
	})
}

// BarTitle names the bar chart after its filter.
func BarTitle(k int, strictDTI bool) string {
	if strictDTI {
		return fmt.Sprintf("Top %d areas by lowest total monthly (DTI-compliant)", k)
	}
	return fmt.Sprintf("Top %d areas by lowest total monthly (no DTI filter)", k)
}
