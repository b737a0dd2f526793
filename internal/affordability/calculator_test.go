package affordability

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "housingcli/internal/errors"
	"housingcli/pkg/contracts/domain"
)

func price(v float64) *float64 { return &v }

func TestMonthlyPayment(t *testing.T) {
	r := 0.065 / 12
	n := 360.0
	want := 270000 * r * math.Pow(1+r, n) / (math.Pow(1+r, n) - 1)

	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
		want      float64
	}{
		{name: "amortizing", principal: 270000, rate: 0.065, years: 30, want: want},
		{name: "zero rate", principal: 120000, rate: 0, years: 10, want: 1000},
		{name: "zero term", principal: 120000, rate: 0.05, years: 0, want: 0},
		{name: "zero rate and term", principal: 120000, rate: 0, years: 0, want: 0},
		{name: "zero principal", principal: 0, rate: 0.05, years: 30, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MonthlyPayment(tt.principal, tt.rate, tt.years), 1e-9)
		})
	}

	assert.InDelta(t, 1706.58, MonthlyPayment(270000, 0.065, 30), 0.01)
}

func TestCompute_SingleRow(t *testing.T) {
	a := domain.DefaultAssumptions()
	rows := Compute([]domain.SnapshotRow{{Area: "Avon", MedianPrice: price(300000), SalesCount: 12}}, a)
	require.Len(t, rows, 1)

	got := rows[0]
	assert.Equal(t, "Avon", got.Area)
	assert.Equal(t, 12, got.SalesCount)
	assert.InDelta(t, MonthlyPayment(270000, 0.065, 30), got.PaymentPI, 1e-9)
	assert.InDelta(t, 300, got.TaxesMonthly, 1e-9)
	assert.InDelta(t, 125, got.InsuranceMonthly, 1e-9)
	assert.InDelta(t, 0, got.HOAMonthly, 1e-9, "min of condo and sfh HOA")
	assert.InDelta(t, got.PaymentPI+425, got.TotalMonthly, 1e-9)
	assert.InDelta(t, 39000, got.CashToClose, 1e-9)

	require.NotNil(t, got.FrontEndRatio)
	require.NotNil(t, got.BackEndRatio)
	assert.InDelta(t, got.TotalMonthly/8000, *got.FrontEndRatio, 1e-12)
	assert.Equal(t, *got.FrontEndRatio, *got.BackEndRatio)
	assert.True(t, got.PassesDTI, "about 0.266 of income is under both caps")
}

func TestCompute_ZeroIncome(t *testing.T) {
	a := domain.DefaultAssumptions()
	a.GrossMonthlyIncome = 0
	rows := Compute([]domain.SnapshotRow{{Area: "Avon", MedianPrice: price(100000)}}, a)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].FrontEndRatio)
	assert.Nil(t, rows[0].BackEndRatio)
	assert.False(t, rows[0].PassesDTI)
}

func TestCompute_DropsUnknownPrices(t *testing.T) {
	rows := Compute([]domain.SnapshotRow{
		{Area: "Avon", MedianPrice: nil},
		{Area: "Berlin", MedianPrice: price(200000)},
	}, domain.DefaultAssumptions())
	require.Len(t, rows, 1)
	assert.Equal(t, "Berlin", rows[0].Area)
}

func TestCompute_Ranking(t *testing.T) {
	a := domain.DefaultAssumptions()
	a.GrossMonthlyIncome = 10000

	rows := Compute([]domain.SnapshotRow{
		{Area: "Pricey", MedianPrice: price(900000)},
		{Area: "Mid", MedianPrice: price(400000)},
		{Area: "Cheap", MedianPrice: price(150000)},
		{Area: "AlsoCheap", MedianPrice: price(150000)},
		{Area: "Luxury", MedianPrice: price(2000000)},
	}, a)
	require.Len(t, rows, 5)

	areas := make([]string, len(rows))
	for i, r := range rows {
		areas[i] = r.Area
	}
	assert.Equal(t, []string{"Cheap", "AlsoCheap", "Mid", "Pricey", "Luxury"}, areas)

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if prev.PassesDTI == cur.PassesDTI {
			assert.LessOrEqual(t, prev.TotalMonthly, cur.TotalMonthly)
		} else {
			assert.True(t, prev.PassesDTI, "passing rows come first")
		}
	}
	assert.True(t, AnyPasses(rows))
}

func TestRank_PassingBeforeCheaper(t *testing.T) {
	rows := []domain.AffordabilityRow{
		{Area: "fails-cheap", TotalMonthly: 100, MedianPrice: 1},
		{Area: "passes-dear", TotalMonthly: 900, MedianPrice: 9, PassesDTI: true},
		{Area: "passes-same-total-cheaper", TotalMonthly: 900, MedianPrice: 5, PassesDTI: true},
	}
	Rank(rows)
	assert.Equal(t, "passes-same-total-cheaper", rows[0].Area)
	assert.Equal(t, "passes-dear", rows[1].Area)
	assert.Equal(t, "fails-cheap", rows[2].Area)
	assert.False(t, AnyPasses(rows[2:]))
}

func TestNewCalculator(t *testing.T) {
	calc, err := NewCalculator(domain.DefaultAssumptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAssumptions(), calc.Assumptions())

	out := calc.Calculate(context.Background(), []domain.SnapshotRow{{Area: "Avon", MedianPrice: price(250000)}})
	assert.Len(t, out, 1)

	bad := domain.DefaultAssumptions()
	bad.DownPaymentPct = 1.5
	_, err = NewCalculator(bad, nil)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
}
