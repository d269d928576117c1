package service

import "github.com/shopspring/decimal"

// monthlyPayment computes the fixed payment M = ceil(P·r·(1+r)^n / ((1+r)^n − 1))
// for principal P, monthly rate r and term n. Rounding up guarantees the
// loan amortizes fully within n payments.
func monthlyPayment(principal int64, annualRatePercent decimal.Decimal, termMonths int32) int64 {
	hundred := decimal.NewFromInt(100)
	twelve := decimal.NewFromInt(12)
	one := decimal.NewFromInt(1)

	r := annualRatePercent.Div(hundred).Div(twelve)
	p := decimal.NewFromInt(principal)
	n := decimal.NewFromInt(int64(termMonths))

	if r.IsZero() {
		return p.Div(n).Ceil().IntPart()
	}

	growth := one.Add(r).Pow(n)
	m := p.Mul(r).Mul(growth).Div(growth.Sub(one))
	return m.Ceil().IntPart()
}
