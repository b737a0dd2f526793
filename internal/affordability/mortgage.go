package affordability

import "math"

const monthsPerYear = 12

// MonthlyPayment returns the level principal-and-interest payment of a fully
// amortizing loan. With a zero rate the principal is spread evenly; with no
// periods the payment is zero.
func MonthlyPayment(principal, annualRate float64, years int) float64 {
	r := annualRate / monthsPerYear
	n := years * monthsPerYear
	if r == 0 || n == 0 {
		if n == 0 {
			return 0
		}
		return principal / float64(n)
	}
	growth := math.Pow(1+r, float64(n))
	return principal * r * growth / (growth - 1)
}
