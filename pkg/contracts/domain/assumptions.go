package domain

// FinancialAssumptions parameterizes the affordability model.
type FinancialAssumptions struct {
	DownPaymentPct     float64 `json:"down_payment_pct" yaml:"down_payment_pct" validate:"gte=0,lte=1"`
	InterestRateAPY    float64 `json:"interest_rate_apy" yaml:"interest_rate_apy" validate:"gte=0,lte=1"`
	TermYears          int     `json:"term_years" yaml:"term_years" validate:"gte=0,lte=100"`
	ClosingCostPct     float64 `json:"closing_cost_pct" yaml:"closing_cost_pct" validate:"gte=0,lte=1"`
	PropertyTaxRate    float64 `json:"property_tax_rate" yaml:"property_tax_rate" validate:"gte=0,lte=1"`
	InsuranceAnnualUSD float64 `json:"insurance_annual_usd" yaml:"insurance_annual_usd" validate:"gte=0"`
	HOAMonthlyCondo    float64 `json:"hoa_monthly_usd_condo" yaml:"hoa_monthly_usd_condo" validate:"gte=0"`
	HOAMonthlySFH      float64 `json:"hoa_monthly_usd_sfh" yaml:"hoa_monthly_usd_sfh" validate:"gte=0"`
	GrossMonthlyIncome float64 `json:"gross_monthly_income" yaml:"gross_monthly_income" validate:"gte=0"`
	DTIFrontEndMax     float64 `json:"dti_frontend_max" yaml:"dti_frontend_max" validate:"gte=0"`
	DTIBackEndMax      float64 `json:"dti_backend_max" yaml:"dti_backend_max" validate:"gte=0"`
}

// DefaultAssumptions returns the assumptions used when no configuration overrides them.
func DefaultAssumptions() FinancialAssumptions {
	return FinancialAssumptions{
		DownPaymentPct:     0.10,
		InterestRateAPY:    0.065,
		TermYears:          30,
		ClosingCostPct:     0.03,
		PropertyTaxRate:    0.012,
		InsuranceAnnualUSD: 1500,
		HOAMonthlyCondo:    250,
		HOAMonthlySFH:      0,
		GrossMonthlyIncome: 8000,
		DTIFrontEndMax:     0.28,
		DTIBackEndMax:      0.36,
	}
}
