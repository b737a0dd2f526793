package domain

import (
	"time"
)

// Canonical column names of the cleaned transaction table, in output order.
const (
	ColSerialNumber    = "serial_number"
	ColListYear        = "list_year"
	ColDateRecorded    = "date_recorded"
	ColMonthKey        = "month_key"
	ColArea            = "area"
	ColAddress         = "address"
	ColAssessedValue   = "assessed_value"
	ColSaleAmount      = "sale_amount"
	ColSalesRatio      = "sales_ratio"
	ColPropertyType    = "property_type"
	ColResidentialType = "residential_type"
)

// CanonicalColumns is the allow-list of columns a cleaned table may carry.
var CanonicalColumns = []string{
	ColSerialNumber,
	ColListYear,
	ColDateRecorded,
	ColMonthKey,
	ColArea,
	ColAddress,
	ColAssessedValue,
	ColSaleAmount,
	ColSalesRatio,
	ColPropertyType,
	ColResidentialType,
}

// CanonicalRecord is one cleaned property transfer.
// Empty strings and nil pointers mean the value is unknown.
type CanonicalRecord struct {
	SerialNumber    string     `json:"serial_number,omitempty"`
	ListYear        string     `json:"list_year,omitempty"`
	DateRecorded    *time.Time `json:"date_recorded,omitempty"`
	MonthKey        *time.Time `json:"month_key,omitempty"`
	Area            string     `json:"area,omitempty"`
	Address         string     `json:"address,omitempty"`
	AssessedValue   *float64   `json:"assessed_value,omitempty"`
	SaleAmount      *float64   `json:"sale_amount,omitempty"`
	SalesRatio      *float64   `json:"sales_ratio,omitempty"`
	PropertyType    string     `json:"property_type,omitempty"`
	ResidentialType string     `json:"residential_type,omitempty"`
}

// CanonicalTable is the output of schema normalization.
type CanonicalTable struct {
	// Columns lists the canonical columns present, in CanonicalColumns order.
	Columns []string
	Records []CanonicalRecord
	// DateColumn is the normalized source header used for dates, empty when none qualified.
	DateColumn string
}

// Has reports whether the table carries the canonical column.
func (t *CanonicalTable) Has(col string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// DatedRows counts records with a month key.
func (t *CanonicalTable) DatedRows() int {
	if t == nil {
		return 0
	}
	n := 0
	for i := range t.Records {
		if t.Records[i].MonthKey != nil {
			n++
		}
	}
	return n
}

// MonthlySummary aggregates the transfers of one area in one month.
// MoM and YoY are filled by the delta calculation and are nil before it.
type MonthlySummary struct {
	MonthKey         time.Time `json:"month_key"`
	Area             string    `json:"area"`
	SalesCount       int       `json:"sales_count"`
	MedianSaleAmount *float64  `json:"median_sale_amount"`
	AvgAssessedValue *float64  `json:"avg_assessed_value"`
	AvgSalesRatio    *float64  `json:"avg_sales_ratio"`
	MoM              *float64  `json:"mom"`
	YoY              *float64  `json:"yoy"`
}

// SnapshotRow is one area's price point in the latest month.
type SnapshotRow struct {
	Area        string   `json:"area"`
	MedianPrice *float64 `json:"median_price"`
	SalesCount  int      `json:"sales_count"`
}

// AffordabilityRow is the cost of owning a median-priced home in one area.
type AffordabilityRow struct {
	Area             string   `json:"area"`
	MedianPrice      float64  `json:"median_price"`
	SalesCount       int      `json:"sales_count"`
	PaymentPI        float64  `json:"pmt_pi"`
	TaxesMonthly     float64  `json:"taxes_monthly"`
	InsuranceMonthly float64  `json:"insurance_monthly"`
	HOAMonthly       float64  `json:"hoa_monthly"`
	TotalMonthly     float64  `json:"total_monthly"`
	CashToClose      float64  `json:"cash_to_close"`
	FrontEndRatio    *float64 `json:"front_end_ratio"`
	BackEndRatio     *float64 `json:"back_end_ratio"`
	PassesDTI        bool     `json:"passes_dti"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
