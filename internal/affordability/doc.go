// Package affordability turns a per-area price snapshot into the monthly cost
// of owning a median-priced home and a debt-to-income verdict.
//
// For each area with a known median price:
//
//	down payment   = price × down_payment_pct
//	P&I payment    = MonthlyPayment(price − down payment, interest_rate_apy, term_years)
//	taxes          = price × property_tax_rate / 12
//	insurance      = insurance_annual_usd / 12
//	HOA            = min(hoa_monthly_usd_condo, hoa_monthly_usd_sfh)
//	total monthly  = P&I + taxes + insurance + HOA
//	cash to close  = down payment + price × closing_cost_pct
//	front/back DTI = total monthly / gross_monthly_income
//
// Both DTI ratios are currently the same figure because no other debts are
// modeled. With zero income the ratios are empty and the area does not pass.
package affordability
