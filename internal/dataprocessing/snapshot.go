package dataprocessing

import (
	"sort"
	"time"

	"housingcli/pkg/contracts/domain"
)

// Snapshot is the price point per area used by the affordability model.
type Snapshot struct {
	// Month is the latest month present in the series.
	Month time.Time
	Rows  []domain.SnapshotRow
	// Fallback is set when the latest month had no usable medians and each
	// area's most recent, busiest month was used instead.
	Fallback bool
}

// SelectSnapshot takes the rows of the latest month that carry a median.
func SelectSnapshot(series []domain.MonthlySummary) Snapshot {
	var snap Snapshot
	for i := range series {
		if series[i].MonthKey.After(snap.Month) {
			snap.Month = series[i].MonthKey
		}
	}

	for i := range series {
		s := &series[i]
		if s.MonthKey.Equal(snap.Month) && s.MedianSaleAmount != nil {
			snap.Rows = append(snap.Rows, toSnapshotRow(s))
		}
	}
	if len(snap.Rows) > 0 {
		return snap
	}

	snap.Fallback = true
	ordered := make([]domain.MonthlySummary, len(series))
	copy(ordered, series)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].MonthKey.Equal(ordered[j].MonthKey) {
			return ordered[i].MonthKey.After(ordered[j].MonthKey)
		}
		return ordered[i].SalesCount > ordered[j].SalesCount
	})

	seen := make(map[string]bool)
	for i := range ordered {
		s := &ordered[i]
		if s.MedianSaleAmount == nil || seen[s.Area] {
			continue
		}
		seen[s.Area] = true
		snap.Rows = append(snap.Rows, toSnapshotRow(s))
	}
	return snap
}

func toSnapshotRow(s *domain.MonthlySummary) domain.SnapshotRow {
	return domain.SnapshotRow{
		Area:        s.Area,
		MedianPrice: s.MedianSaleAmount,
		SalesCount:  s.SalesCount,
	}
}
