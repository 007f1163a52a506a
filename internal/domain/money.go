package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds to cents, half away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Round2Bank rounds to cents, half to even.
func Round2Bank(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).RoundBank(2).Float64()
	return f
}

// PositiveRate accepts v only if it is finite and strictly greater than zero.
func PositiveRate(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}
