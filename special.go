package propagate

import "math"

// digamma computes ψ(x), the logarithmic derivative of the gamma function.
// It is NaN at poles.
func digamma(x float64) float64 {
	if x <= 0 && x == math.Floor(x) {
		return math.NaN()
	}
	var r float64
	if x < 0 {
		// Reflection: ψ(1-x) - ψ(x) = π cot(πx).
		r = -math.Pi / math.Tan(math.Pi*x)
		x = 1 - x
	}
	for x < 6 {
		r -= 1 / x
		x++
	}
	// Asymptotic series in 1/x².
	f := 1 / (x * x)
	t := f * (-1.0/12 + f*(1.0/120+f*(-1.0/252+f*(1.0/240+f*(-1.0/132)))))
	return r + math.Log(x) - 0.5/x + t
}

// isPole reports whether x is a pole of the gamma function.
func isPole(x float64) bool {
	return x <= 0 && x == math.Floor(x)
}

// factorial computes n! for integral 0 <= n.
func factorial(n float64) float64 {
	r := 1.0
	for k := 2.0; k <= n && !math.IsInf(r, 1); k++ {
		r *= k
	}
	return r
}
