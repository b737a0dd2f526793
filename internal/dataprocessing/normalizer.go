package dataprocessing

import (
	"math"
	"strings"

	"housingcli/pkg/contracts/domain"
)

const (
	minDatedRows       = 50
	namedDateFraction  = 0.01
	anyColDateFraction = 0.02
)

// knownDateHeaders are checked in this order before any other column.
var knownDateHeaders = []string{
	"date recorded",
	"recording date",
	"sale date",
	"date",
	"transfer date",
}

// fieldAliases maps canonical fields to normalized source headers, most specific first.
var fieldAliases = map[string][]string{
	domain.ColSerialNumber:    {"serial number", "serial_number", "serial no", "serial"},
	domain.ColListYear:        {"list year", "list_year", "listing year"},
	domain.ColArea:            {"town", "area", "city", "municipality", "locality"},
	domain.ColAddress:         {"address", "property address", "street address"},
	domain.ColAssessedValue:   {"assessed value", "assessed_value", "assessment"},
	domain.ColSaleAmount:      {"sale amount", "sale_amount", "sale price", "sales price"},
	domain.ColSalesRatio:      {"sales ratio", "sales_ratio", "sale ratio"},
	domain.ColPropertyType:    {"property type", "property_type"},
	domain.ColResidentialType: {"residential type", "residential_type"},
}

// DetectDateColumn picks the column holding transaction dates.
// It returns the column index and its normalized header, or ok=false when
// no column parses often enough.
func DetectDateColumn(raw *RawTable) (col int, name string, ok bool) {
	if raw == nil || len(raw.Headers) == 0 {
		return -1, "", false
	}
	headers := normalizeHeaders(raw.Headers)
	index := headerIndex(headers)
	rows := raw.Len()

	counts := make(map[int]int, len(headers))
	parsed := func(c int) int {
		if n, seen := counts[c]; seen {
			return n
		}
		n := 0
		for r := 0; r < rows; r++ {
			if ParseTimestamp(raw.Cell(r, c)) != nil {
				n++
			}
		}
		counts[c] = n
		return n
	}

	named := dateThreshold(rows, namedDateFraction)
	for _, h := range knownDateHeaders {
		if c, found := index[h]; found && float64(parsed(c)) > named {
			return c, headers[c], true
		}
	}

	best, bestCount := -1, -1
	for c, h := range headers {
		if !strings.Contains(h, "date") {
			continue
		}
		if n := parsed(c); n > bestCount {
			best, bestCount = c, n
		}
	}
	if best >= 0 && float64(bestCount) > named {
		return best, headers[best], true
	}

	anyCol := dateThreshold(rows, anyColDateFraction)
	for c := range headers {
		if float64(parsed(c)) > anyCol {
			return c, headers[c], true
		}
	}
	return -1, "", false
}

// Normalize maps a raw extract onto the canonical schema. Values that do
// not parse become nil; negative money amounts are treated as unknown.
func Normalize(raw *RawTable) *domain.CanonicalTable {
	table := &domain.CanonicalTable{}
	if raw == nil {
		raw = &RawTable{}
	}

	headers := normalizeHeaders(raw.Headers)
	index := headerIndex(headers)

	source := make(map[string]int, len(fieldAliases))
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			if c, ok := index[alias]; ok {
				source[field] = c
				break
			}
		}
	}

	dateCol, dateName, hasDate := DetectDateColumn(raw)
	if hasDate {
		table.DateColumn = dateName
	}

	for _, col := range domain.CanonicalColumns {
		if col == domain.ColDateRecorded || col == domain.ColMonthKey {
			table.Columns = append(table.Columns, col)
			continue
		}
		if _, ok := source[col]; ok {
			table.Columns = append(table.Columns, col)
		}
	}

	text := func(row int, field string) string {
		c, ok := source[field]
		if !ok {
			return ""
		}
		return strings.TrimSpace(raw.Cell(row, c))
	}
	number := func(row int, field string) *float64 {
		c, ok := source[field]
		if !ok {
			return nil
		}
		v := ParseNumber(raw.Cell(row, c))
		if v != nil && *v < 0 {
			return nil
		}
		return v
	}

	table.Records = make([]domain.CanonicalRecord, raw.Len())
	for r := range table.Records {
		rec := domain.CanonicalRecord{
			SerialNumber:    text(r, domain.ColSerialNumber),
			ListYear:        text(r, domain.ColListYear),
			Area:            text(r, domain.ColArea),
			Address:         text(r, domain.ColAddress),
			AssessedValue:   number(r, domain.ColAssessedValue),
			SaleAmount:      number(r, domain.ColSaleAmount),
			PropertyType:    text(r, domain.ColPropertyType),
			ResidentialType: text(r, domain.ColResidentialType),
		}
		if c, ok := source[domain.ColSalesRatio]; ok {
			rec.SalesRatio = ParseRatio(raw.Cell(r, c))
		}
		if hasDate {
			if ts := ParseTimestamp(raw.Cell(r, dateCol)); ts != nil {
				month := MonthStart(*ts)
				rec.DateRecorded = ts
				rec.MonthKey = &month
			}
		}
		table.Records[r] = rec
	}
	return table
}

func dateThreshold(rows int, fraction float64) float64 {
	return math.Max(minDatedRows, fraction*float64(rows))
}

func normalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// headerIndex maps each header to its first position.
func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	return index
}
