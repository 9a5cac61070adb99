package propagate

import (
	"math"
	"strconv"
)

// Number is a value with a first-order model of its uncertainty. It records
// the partial derivatives of its value with respect to each independent
// source that contributed to it, so that a source used more than once in an
// expression is correlated with itself: x - x is exactly 0±0.
//
// The zero Number is an exact zero. Numbers are immutable; every operation
// returns a new Number.
type Number struct {
	v float64
	d []partial
}

// partial is the derivative of a Number with respect to one source. Partials
// are kept sorted by src.
type partial struct {
	src   int
	sigma float64
	d     float64
}

// Exact returns a Number with no uncertainty.
func Exact(v float64) Number {
	return Number{v: v}
}

// Value returns the nominal value of x.
func (x Number) Value() float64 {
	return x.v
}

// Std returns the propagated standard uncertainty of x, the square root of
// the sum of squares of derivative-weighted source uncertainties. Sources with
// zero uncertainty contribute nothing, even with infinite derivatives.
func (x Number) Std() float64 {
	var s float64
	for _, p := range x.d {
		if p.sigma == 0 || p.d == 0 {
			continue
		}
		t := p.d * p.sigma
		s += t * t
	}
	return math.Sqrt(s)
}

// String formats x as value+/-uncertainty.
func (x Number) String() string {
	return formatPair(x.v, x.Std())
}

func formatPair(v, u float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64) + "+/-" + strconv.FormatFloat(u, 'g', -1, 64)
}

// Derive returns a Number with nominal value v which depends on x with
// derivative dx. It is the building block for functions of one argument:
// for f(x), use Derive(f(x.Value()), x, f'(x.Value())).
func Derive(v float64, x Number, dx float64) Number {
	r := Number{v: v}
	if len(x.d) == 0 {
		return r
	}
	r.d = make([]partial, len(x.d))
	for i, p := range x.d {
		p.d *= dx
		r.d[i] = p
	}
	return r
}

// Derive2 returns a Number with nominal value v which depends on x and y
// with derivatives dx and dy respectively.
func Derive2(v float64, x Number, dx float64, y Number, dy float64) Number {
	r := Number{v: v}
	if len(x.d) == 0 {
		return Derive(v, y, dy)
	}
	if len(y.d) == 0 {
		return Derive(v, x, dx)
	}
	r.d = make([]partial, 0, len(x.d)+len(y.d))
	i, j := 0, 0
	for i < len(x.d) && j < len(y.d) {
		p, q := x.d[i], y.d[j]
		switch {
		case p.src < q.src:
			p.d *= dx
			r.d = append(r.d, p)
			i++
		case p.src > q.src:
			q.d *= dy
			r.d = append(r.d, q)
			j++
		default:
			p.d = p.d*dx + q.d*dy
			r.d = append(r.d, p)
			i++
			j++
		}
	}
	for ; i < len(x.d); i++ {
		p := x.d[i]
		p.d *= dx
		r.d = append(r.d, p)
	}
	for ; j < len(y.d); j++ {
		q := y.d[j]
		q.d *= dy
		r.d = append(r.d, q)
	}
	return r
}

// Neg returns -x.
func (x Number) Neg() Number {
	return Derive(-x.v, x, -1)
}

// Add returns x + y.
func (x Number) Add(y Number) Number {
	return Derive2(x.v+y.v, x, 1, y, 1)
}

// Sub returns x - y.
func (x Number) Sub(y Number) Number {
	return Derive2(x.v-y.v, x, 1, y, -1)
}

// Mul returns x * y.
func (x Number) Mul(y Number) Number {
	return Derive2(x.v*y.v, x, y.v, y, x.v)
}

// Quo returns x / y. The caller must ensure y is nonzero.
func (x Number) Quo(y Number) Number {
	return Derive2(x.v/y.v, x, 1/y.v, y, -x.v/(y.v*y.v))
}
