package propagate

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// The functions in this file compute nominal values at a working precision of
// prec bits and round the result to float64 once. A precision below that of
// float64 selects package math instead. Callers check domains first; these
// functions assume finite arguments inside the domain.

// bigMin is the smallest precision that is computed with bigfloat.
const bigMin = 53

// bigExpLimit bounds the arguments passed to bigfloat.Exp. Beyond it the
// float64 result is 0 or +Inf anyway.
const bigExpLimit = 1000

func bigOf(x float64, prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetFloat64(x)
}

func round(z *big.Float) float64 {
	f, _ := z.Float64()
	return f
}

func preciseExp(x float64, prec uint) float64 {
	if prec < bigMin || math.Abs(x) > bigExpLimit {
		return math.Exp(x)
	}
	z := new(big.Float).SetPrec(prec)
	return round(bigfloat.Exp(z, bigOf(x, prec)))
}

// preciseLog computes the natural logarithm of x > 0.
func preciseLog(x float64, prec uint) float64 {
	if prec < bigMin {
		return math.Log(x)
	}
	z := new(big.Float).SetPrec(prec)
	return round(bigfloat.Log(z, bigOf(x, prec)))
}

// preciseLogBase computes the logarithm of x > 0 in base b > 0, b != 1. The
// quotient is taken before rounding.
func preciseLogBase(x, b float64, prec uint) float64 {
	if prec < bigMin {
		return math.Log(x) / math.Log(b)
	}
	n := bigfloat.Log(new(big.Float).SetPrec(prec), bigOf(x, prec))
	d := bigfloat.Log(new(big.Float).SetPrec(prec), bigOf(b, prec))
	return round(n.Quo(n, d))
}

// precisePow computes x**y. bigfloat handles only positive bases, so other
// bases use math.Pow, which is exact for the integral exponents those cases
// are limited to.
func precisePow(x, y float64, prec uint) float64 {
	if prec < bigMin || x <= 0 || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return math.Pow(x, y)
	}
	if y == 0 || x == 1 {
		return 1
	}
	// Keep the intermediate exponent within big.Float's range.
	if math.Abs(y*math.Log2(x)) > 2*bigExpLimit {
		return math.Pow(x, y)
	}
	z := new(big.Float).SetPrec(prec)
	return round(bigfloat.Pow(z, bigOf(x, prec), bigOf(y, prec)))
}

// preciseSqrt computes the square root of x >= 0.
func preciseSqrt(x float64, prec uint) float64 {
	if prec < bigMin || x == 0 || math.IsInf(x, 0) {
		return math.Sqrt(x)
	}
	z := new(big.Float).SetPrec(prec)
	return round(z.Sqrt(bigOf(x, prec)))
}
