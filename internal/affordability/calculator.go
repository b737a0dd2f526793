package affordability

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"

	apperrors "housingcli/internal/errors"
	"housingcli/pkg/contracts/domain"
)

// Compute prices monthly ownership cost for every snapshot row with a known
// median and ranks the result: passing areas first, then by total monthly
// cost, then by price.
func Compute(rows []domain.SnapshotRow, a domain.FinancialAssumptions) []domain.AffordabilityRow {
	hoa := math.Min(a.HOAMonthlyCondo, a.HOAMonthlySFH)
	insurance := a.InsuranceAnnualUSD / monthsPerYear

	out := make([]domain.AffordabilityRow, 0, len(rows))
	for _, row := range rows {
		if row.MedianPrice == nil {
			continue
		}
		price := *row.MedianPrice
		down := a.DownPaymentPct * price
		loan := math.Max(price-down, 0)

		res := domain.AffordabilityRow{
			Area:             row.Area,
			MedianPrice:      price,
			SalesCount:       row.SalesCount,
			PaymentPI:        MonthlyPayment(loan, a.InterestRateAPY, a.TermYears),
			TaxesMonthly:     price * a.PropertyTaxRate / monthsPerYear,
			InsuranceMonthly: insurance,
			HOAMonthly:       hoa,
			CashToClose:      down + a.ClosingCostPct*price,
		}
		res.TotalMonthly = res.PaymentPI + res.TaxesMonthly + res.InsuranceMonthly + res.HOAMonthly

		if a.GrossMonthlyIncome != 0 {
			ratio := res.TotalMonthly / a.GrossMonthlyIncome
			front, back := ratio, ratio
			res.FrontEndRatio = &front
			res.BackEndRatio = &back
			res.PassesDTI = front <= a.DTIFrontEndMax && back <= a.DTIBackEndMax
		}
		out = append(out, res)
	}

	Rank(out)
	return out
}

// Rank orders rows by DTI verdict, total monthly cost and price. Equal rows keep their order.
func Rank(rows []domain.AffordabilityRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PassesDTI != rows[j].PassesDTI {
			return rows[i].PassesDTI
		}
		if rows[i].TotalMonthly != rows[j].TotalMonthly {
			return rows[i].TotalMonthly < rows[j].TotalMonthly
		}
		return rows[i].MedianPrice < rows[j].MedianPrice
	})
}

// AnyPasses reports whether at least one area meets both DTI caps.
func AnyPasses(rows []domain.AffordabilityRow) bool {
	for i := range rows {
		if rows[i].PassesDTI {
			return true
		}
	}
	return false
}

// Calculator validates assumptions once and prices snapshots against them.
type Calculator struct {
	assumptions domain.FinancialAssumptions
	logger      *slog.Logger
}

// NewCalculator creates a calculator after validating the assumptions.
func NewCalculator(a domain.FinancialAssumptions, logger *slog.Logger) (*Calculator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := Validate(a); err != nil {
		return nil, err
	}
	return &Calculator{assumptions: a, logger: logger}, nil
}

// Assumptions returns the assumptions the calculator prices with.
func (c *Calculator) Assumptions() domain.FinancialAssumptions {
	return c.assumptions
}

// Calculate prices the snapshot and logs how many areas qualify.
func (c *Calculator) Calculate(ctx context.Context, rows []domain.SnapshotRow) []domain.AffordabilityRow {
	out := Compute(rows, c.assumptions)

	passing := 0
	for i := range out {
		if out[i].PassesDTI {
			passing++
		}
	}
	c.logger.InfoContext(ctx, "affordability computed",
		slog.Int("snapshot_rows", len(rows)),
		slog.Int("priced_rows", len(out)),
		slog.Int("passing_rows", passing),
		slog.Float64("gross_monthly_income", c.assumptions.GrossMonthlyIncome))
	if c.assumptions.GrossMonthlyIncome == 0 {
		c.logger.WarnContext(ctx, "gross monthly income is zero; DTI ratios left empty")
	}
	return out
}

var validate = validator.New()

// Validate checks assumption ranges.
func Validate(a domain.FinancialAssumptions) error {
	if err := validate.Struct(a); err != nil {
		return apperrors.NewConfigError("invalid financial assumptions", err)
	}
	return nil
}
