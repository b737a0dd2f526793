package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ratioPercentThreshold separates fractional ratios from ratios expressed in percent.
const ratioPercentThreshold = 1.2

// numberReplacer strips thousands separators and currency symbols.
var numberReplacer = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", "")

// timestampLayouts are tried in order; the first successful parse wins.
var timestampLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"2006/1/2 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1-2-2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2006-01",
}

// NormalizeHeader trims and lowercases a column name.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// ParseNumber converts a raw cell into a float, ignoring thousands
// separators and currency symbols. Unparseable input yields nil.
func ParseNumber(s string) *float64 {
	cleaned := numberReplacer.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseRatio converts a sales ratio to a fraction. A trailing percent sign
// always divides by 100; bare values above 1.2 are read as percentages.
func ParseRatio(s string) *float64 {
	trimmed := strings.TrimSpace(s)
	if strings.HasSuffix(trimmed, "%") {
		v := ParseNumber(strings.TrimSuffix(trimmed, "%"))
		if v == nil {
			return nil
		}
		r := *v / 100
		return &r
	}
	v := ParseNumber(trimmed)
	if v == nil {
		return nil
	}
	if *v > ratioPercentThreshold {
		r := *v / 100
		return &r
	}
	return v
}

// ParseTimestamp parses a date or date-time cell. Unparseable input yields nil.
func ParseTimestamp(s string) *time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// MonthStart truncates t to midnight UTC on the first of its month.
func MonthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}
