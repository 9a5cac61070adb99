package propagate

import (
	"math"
	"strconv"
)

// Func is a function from uncertain reals to an uncertain real.
type Func interface {
	// Call evaluates the function. The function arguments are passed in
	// invoc, which has a length for which CanCall returned true. Call must
	// propagate uncertainty, normally with Derive or Derive2, and must return
	// a *DomainError for arguments outside the function's domain.
	Call(ctx *Context, invoc []Number) (Number, error)

	// CanCall returns whether the function can be called with n arguments.
	// The parser rejects calls with any other number of arguments.
	CanCall(n int) bool
}

type monadic struct {
	name string
	// in reports whether x is in the domain. nil means everywhere.
	in func(x float64) bool
	f  func(ctx *Context, x float64) float64
	// df is the derivative at x, given fx = f(x).
	df func(x, fx float64) float64
}

func (m *monadic) Call(ctx *Context, invoc []Number) (Number, error) {
	x := invoc[0]
	if m.in != nil && !m.in(x.v) {
		return Number{}, &DomainError{X: x.v, Arg: 1, Func: m.name}
	}
	v := m.f(ctx, x.v)
	if err := checkResult(m.name, v, x.v); err != nil {
		return Number{}, err
	}
	return Derive(v, x, m.df(x.v, v)), nil
}

func (m *monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable and its derivative into a Func.
// name is used in error messages. A NaN result from f is reported as a
// *DomainError, and an infinite result from a finite argument as a
// *RangeError.
func Monadic(name string, f, df func(float64) float64) Func {
	return &monadic{
		name: name,
		f:    func(_ *Context, x float64) float64 { return f(x) },
		df:   func(x, _ float64) float64 { return df(x) },
	}
}

type dyadic struct {
	name string
	// in reports the 1-based index of the first argument outside the domain,
	// or 0 if both are inside. nil means everywhere.
	in func(x, y float64) int
	f  func(ctx *Context, x, y float64) float64
	// df gives the partial derivatives at (x, y), given fxy = f(x, y).
	df func(x, y, fxy float64) (dx, dy float64)
}

func (m *dyadic) Call(ctx *Context, invoc []Number) (Number, error) {
	x, y := invoc[0], invoc[1]
	if m.in != nil {
		if k := m.in(x.v, y.v); k != 0 {
			return Number{}, &DomainError{X: invoc[k-1].v, Arg: k, Func: m.name}
		}
	}
	v := m.f(ctx, x.v, y.v)
	if err := checkResult(m.name, v, x.v, y.v); err != nil {
		return Number{}, err
	}
	dx, dy := m.df(x.v, y.v, v)
	return Derive2(v, x, dx, y, dy), nil
}

func (m *dyadic) CanCall(n int) bool {
	return n == 2
}

// Dyadic wraps a function of two variables and its partial derivatives into a
// Func, with the same error conventions as Monadic.
func Dyadic(name string, f func(x, y float64) float64, df func(x, y float64) (dx, dy float64)) Func {
	return &dyadic{
		name: name,
		f:    func(_ *Context, x, y float64) float64 { return f(x, y) },
		df:   func(x, y, _ float64) (float64, float64) { return df(x, y) },
	}
}

// logFunc is the natural logarithm with one argument and the logarithm to a
// given base with two.
type logFunc struct{}

func (logFunc) Call(ctx *Context, invoc []Number) (Number, error) {
	x := invoc[0]
	if x.v <= 0 {
		return Number{}, &DomainError{X: x.v, Arg: 1, Func: "log"}
	}
	if len(invoc) == 1 {
		v := preciseLog(x.v, ctx.prec)
		if err := checkResult("log", v, x.v); err != nil {
			return Number{}, err
		}
		return Derive(v, x, 1/x.v), nil
	}
	b := invoc[1]
	if b.v <= 0 || b.v == 1 {
		return Number{}, &DomainError{X: b.v, Arg: 2, Func: "log"}
	}
	v := preciseLogBase(x.v, b.v, ctx.prec)
	if err := checkResult("log", v, x.v, b.v); err != nil {
		return Number{}, err
	}
	lb := math.Log(b.v)
	return Derive2(v, x, 1/(x.v*lb), b, -v/(b.v*lb)), nil
}

func (logFunc) CanCall(n int) bool {
	return n == 1 || n == 2
}

// pow computes x**y for both the operator and the function.
func pow(ctx *Context, x, y Number) (Number, error) {
	switch {
	case x.v == 0 && y.v < 0:
		return Number{}, &DomainError{X: y.v, Arg: 2, Func: "**"}
	case x.v < 0 && (y.v != math.Trunc(y.v) || y.Std() != 0):
		// An uncertain exponent ranges over non-integers.
		return Number{}, &DomainError{X: x.v, Arg: 1, Func: "**"}
	}
	v := precisePow(x.v, y.v, ctx.prec)
	if err := checkResult("**", v, x.v, y.v); err != nil {
		return Number{}, err
	}
	var dx, dy float64
	if y.v != 0 {
		dx = y.v * precisePow(x.v, y.v-1, ctx.prec)
	}
	if x.v > 0 {
		// Negative bases only get here with exact exponents.
		dy = v * math.Log(x.v)
	}
	return Derive2(v, x, dx, y, dy), nil
}

type powFunc struct{}

func (powFunc) Call(ctx *Context, invoc []Number) (Number, error) {
	r, err := pow(ctx, invoc[0], invoc[1])
	if d, ok := err.(*DomainError); ok {
		d.Func = "pow"
	}
	return r, err
}

func (powFunc) CanCall(n int) bool {
	return n == 2
}

// checkResult reports NaN results from non-NaN arguments as domain errors and
// infinite results from finite arguments as range errors.
func checkResult(name string, v float64, args ...float64) error {
	switch {
	case math.IsNaN(v):
		for _, x := range args {
			if math.IsNaN(x) {
				return nil
			}
		}
		return &DomainError{X: args[0], Func: name}
	case math.IsInf(v, 0):
		for _, x := range args {
			if math.IsInf(x, 0) || math.IsNaN(x) {
				return nil
			}
		}
		return &RangeError{Func: name, X: args[0]}
	}
	return nil
}

func unit(x float64) bool     { return -1 <= x && x <= 1 }
func zero(_, _ float64) float64 { return 0 }

func signum(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

func unary(f func(float64) float64) func(*Context, float64) float64 {
	return func(_ *Context, x float64) float64 { return f(x) }
}

// DefaultFuncs returns the functions of the default vocabulary.
func DefaultFuncs() []FuncInfo {
	return []FuncInfo{
		{"acos", "acos(x)", "Arc cosine of x, in radians.", &monadic{
			name: "acos", in: unit, f: unary(math.Acos),
			df: func(x, _ float64) float64 { return -1 / math.Sqrt(1-x*x) },
		}},
		{"acosh", "acosh(x)", "Inverse hyperbolic cosine of x.", &monadic{
			name: "acosh", in: func(x float64) bool { return x >= 1 }, f: unary(math.Acosh),
			df: func(x, _ float64) float64 { return 1 / math.Sqrt(x*x-1) },
		}},
		{"asin", "asin(x)", "Arc sine of x, in radians.", &monadic{
			name: "asin", in: unit, f: unary(math.Asin),
			df: func(x, _ float64) float64 { return 1 / math.Sqrt(1-x*x) },
		}},
		{"asinh", "asinh(x)", "Inverse hyperbolic sine of x.", &monadic{
			name: "asinh", f: unary(math.Asinh),
			df: func(x, _ float64) float64 { return 1 / math.Sqrt(x*x+1) },
		}},
		{"atan", "atan(x)", "Arc tangent of x, in radians.", &monadic{
			name: "atan", f: unary(math.Atan),
			df: func(x, _ float64) float64 { return 1 / (1 + x*x) },
		}},
		{"atanh", "atanh(x)", "Inverse hyperbolic tangent of x.", &monadic{
			name: "atanh", in: func(x float64) bool { return -1 < x && x < 1 }, f: unary(math.Atanh),
			df: func(x, _ float64) float64 { return 1 / (1 - x*x) },
		}},
		{"ceil", "ceil(x)", "Smallest integer greater than or equal to x.", &monadic{
			name: "ceil", f: unary(math.Ceil), df: zero,
		}},
		{"cos", "cos(x)", "Cosine of x, in radians.", &monadic{
			name: "cos", f: unary(math.Cos),
			df: func(x, _ float64) float64 { return -math.Sin(x) },
		}},
		{"cosh", "cosh(x)", "Hyperbolic cosine of x.", &monadic{
			name: "cosh", f: unary(math.Cosh),
			df: func(x, _ float64) float64 { return math.Sinh(x) },
		}},
		{"erf", "erf(x)", "Error function at x.", &monadic{
			name: "erf", f: unary(math.Erf),
			df: func(x, _ float64) float64 { return 2 / math.SqrtPi * math.Exp(-x*x) },
		}},
		{"erfc", "erfc(x)", "Complementary error function at x.", &monadic{
			name: "erfc", f: unary(math.Erfc),
			df: func(x, _ float64) float64 { return -2 / math.SqrtPi * math.Exp(-x*x) },
		}},
		{"exp", "exp(x)", "e raised to the power of x.", &monadic{
			name: "exp",
			f:    func(ctx *Context, x float64) float64 { return preciseExp(x, ctx.prec) },
			df:   func(_, fx float64) float64 { return fx },
		}},
		{"fabs", "fabs(x)", "Absolute value of x.", &monadic{
			name: "fabs", f: unary(math.Abs),
			df: func(x, _ float64) float64 { return signum(x) },
		}},
		{"factorial", "factorial(x)", "x! for a non-negative integer x.", &monadic{
			name: "factorial",
			in:   func(x float64) bool { return x >= 0 && x == math.Trunc(x) },
			f:    unary(factorial), df: zero,
		}},
		{"floor", "floor(x)", "Largest integer less than or equal to x.", &monadic{
			name: "floor", f: unary(math.Floor), df: zero,
		}},
		{"gamma", "gamma(x)", "Gamma function at x.", &monadic{
			name: "gamma", in: func(x float64) bool { return !isPole(x) }, f: unary(math.Gamma),
			df: func(x, fx float64) float64 { return fx * digamma(x) },
		}},
		{"hypot", "hypot(x, y)", "Euclidean distance from the origin to the point (x, y).", &dyadic{
			name: "hypot",
			f:    func(_ *Context, x, y float64) float64 { return math.Hypot(x, y) },
			df: func(x, y, h float64) (float64, float64) {
				if h == 0 {
					return 0, 0
				}
				return x / h, y / h
			},
		}},
		{"lgamma", "lgamma(x)", "Natural logarithm of the absolute value of the gamma function at x.", &monadic{
			name: "lgamma", in: func(x float64) bool { return !isPole(x) },
			f: unary(func(x float64) float64 {
				v, _ := math.Lgamma(x)
				return v
			}),
			df: func(x, _ float64) float64 { return digamma(x) },
		}},
		{"log", "log(x[, base])", "Logarithm of x to the given base, or the natural logarithm if no base is given.", logFunc{}},
		{"modf", "modf(x)", "Fractional part of x, carrying the sign of x.", &monadic{
			name: "modf",
			f: unary(func(x float64) float64 {
				_, frac := math.Modf(x)
				return frac
			}),
			df: func(_, _ float64) float64 { return 1 },
		}},
		{"pow", "pow(x, y)", "x raised to the power of y.", powFunc{}},
		{"sin", "sin(x)", "Sine of x, in radians.", &monadic{
			name: "sin", f: unary(math.Sin),
			df: func(x, _ float64) float64 { return math.Cos(x) },
		}},
		{"sinh", "sinh(x)", "Hyperbolic sine of x.", &monadic{
			name: "sinh", f: unary(math.Sinh),
			df: func(x, _ float64) float64 { return math.Cosh(x) },
		}},
		{"sqrt", "sqrt(x)", "Square root of x.", &monadic{
			name: "sqrt", in: func(x float64) bool { return x >= 0 },
			f:  func(ctx *Context, x float64) float64 { return preciseSqrt(x, ctx.prec) },
			df: func(_, fx float64) float64 { return 0.5 / fx },
		}},
		{"tan", "tan(x)", "Tangent of x, in radians.", &monadic{
			name: "tan", f: unary(math.Tan),
			df: func(_, fx float64) float64 { return 1 + fx*fx },
		}},
		{"tanh", "tanh(x)", "Hyperbolic tangent of x.", &monadic{
			name: "tanh", f: unary(math.Tanh),
			df: func(_, fx float64) float64 { return 1 - fx*fx },
		}},
		{"trunc", "trunc(x)", "x truncated toward zero to an integer.", &monadic{
			name: "trunc", f: unary(math.Trunc), df: zero,
		}},
	}
}

// DomainError is an error returned when a function or operator is applied to
// arguments outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X float64
	// Arg is the 1-based index of the argument, or 0 if unknown.
	Arg int
	// Func is a name identifying the function or operator.
	Func string
}

func (err *DomainError) Error() string {
	r := strconv.FormatFloat(err.X, 'g', -1, 64) + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

// RangeError is an error returned when a function of finite arguments has a
// result too large to represent.
type RangeError struct {
	// Func is a name identifying the function or operator.
	Func string
	// X is the first argument.
	X float64
}

func (err *RangeError) Error() string {
	return "result of " + err.Func + " at " + strconv.FormatFloat(err.X, 'g', -1, 64) + " out of range"
}
