package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v2"

	apperrors "housingcli/internal/errors"
	"housingcli/pkg/contracts/domain"
)

// assumptionsDocument mirrors inputs.yaml; only the defaults block is read.
type assumptionsDocument struct {
	Defaults *assumptionOverrides `yaml:"defaults"`
}

type assumptionOverrides struct {
	DownPaymentPct     *float64 `yaml:"down_payment_pct"`
	InterestRateAPY    *float64 `yaml:"interest_rate_apy"`
	TermYears          *float64 `yaml:"term_years"`
	ClosingCostPct     *float64 `yaml:"closing_cost_pct"`
	PropertyTaxRate    *float64 `yaml:"property_tax_rate"`
	InsuranceAnnualUSD *float64 `yaml:"insurance_annual_usd"`
	HOAMonthlyCondo    *float64 `yaml:"hoa_monthly_usd_condo"`
	HOAMonthlySFH      *float64 `yaml:"hoa_monthly_usd_sfh"`
	GrossMonthlyIncome *float64 `yaml:"gross_monthly_income"`
	DTIFrontEndMax     *float64 `yaml:"dti_frontend_max"`
	DTIBackEndMax      *float64 `yaml:"dti_backend_max"`
}

// AssumptionsSource describes where the financial assumptions came from.
type AssumptionsSource struct {
	Path string
	// Loaded is true when the file existed and parsed.
	Loaded bool
	// Overridden lists the keys the file set.
	Overridden []string
}

// LoadAssumptions reads the defaults block of an assumptions file over the
// built-in defaults. A missing file yields the defaults and no error. An
// unreadable or malformed file also yields the defaults, together with a
// CONFIG error the caller is expected to report as a warning.
func LoadAssumptions(path string) (domain.FinancialAssumptions, AssumptionsSource, error) {
	a := domain.DefaultAssumptions()
	src := AssumptionsSource{Path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return a, src, nil
	}
	if err != nil {
		return a, src, apperrors.NewConfigError("read assumptions file", err).WithContext("path", path)
	}

	var doc assumptionsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return a, src, apperrors.NewConfigError("parse assumptions file", err).WithContext("path", path)
	}

	src.Loaded = true
	if doc.Defaults == nil {
		return a, src, nil
	}

	o := doc.Defaults
	apply := func(key string, v *float64, dst *float64) {
		if v != nil {
			*dst = *v
			src.Overridden = append(src.Overridden, key)
		}
	}
	apply("down_payment_pct", o.DownPaymentPct, &a.DownPaymentPct)
	apply("interest_rate_apy", o.InterestRateAPY, &a.InterestRateAPY)
	if o.TermYears != nil {
		a.TermYears = int(*o.TermYears)
		src.Overridden = append(src.Overridden, "term_years")
	}
	apply("closing_cost_pct", o.ClosingCostPct, &a.ClosingCostPct)
	apply("property_tax_rate", o.PropertyTaxRate, &a.PropertyTaxRate)
	apply("insurance_annual_usd", o.InsuranceAnnualUSD, &a.InsuranceAnnualUSD)
	apply("hoa_monthly_usd_condo", o.HOAMonthlyCondo, &a.HOAMonthlyCondo)
	apply("hoa_monthly_usd_sfh", o.HOAMonthlySFH, &a.HOAMonthlySFH)
	apply("gross_monthly_income", o.GrossMonthlyIncome, &a.GrossMonthlyIncome)
	apply("dti_frontend_max", o.DTIFrontEndMax, &a.DTIFrontEndMax)
	apply("dti_backend_max", o.DTIBackEndMax, &a.DTIBackEndMax)

	return a, src, nil
}
