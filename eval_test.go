package propagate

import (
	"errors"
	"math"
	"testing"
)

type binding struct {
	name  string
	v     float64
	sigma float64
}

// evalString parses and evaluates src with the given bindings.
func evalString(src string, prec uint, vars ...binding) (Number, error) {
	n, _, err := parse(src, DefaultVocabulary(), DefaultMaxDepth)
	if err != nil {
		return Number{}, err
	}
	ctx := newContext(prec, len(vars))
	for _, b := range vars {
		ctx.bind(b.name, b.v, b.sigma)
	}
	return ctx.eval(n)
}

func TestEval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		vars []binding
		v    float64
		std  float64
	}{
		{"num", "1", nil, 1, 0},
		{"ident", "x", []binding{{"x", 4, 0.5}}, 4, 0.5},
		{"plus", "+x", []binding{{"x", 4, 0.5}}, 4, 0.5},
		{"neg", "-x", []binding{{"x", 4, 0.5}}, -4, 0.5},
		{"add", "4+5+6", nil, 15, 0},
		{"sub", "4-5-6", nil, -7, 0},
		{"mul", "4*5*6", nil, 120, 0},
		{"div", "4/5/8", nil, 0.1, 0},
		{"pow", "4**3**2", nil, 262144, 0},
		{"negpow", "-2**2", nil, -4, 0},
		{"powneg", "2**-1", nil, 0.5, 0},
		{"intpow", "(-2)**3", nil, -8, 0},
		{"sumsq", "x+y**2", []binding{{"x", 0, 0.5}, {"y", 3, 0.4}}, 9, math.Sqrt(0.25 + 2.4*2.4)},
		{"cancel", "x-x", []binding{{"x", 3, 0.7}}, 0, 0},
		{"ratio", "x/x", []binding{{"x", 3, 0.7}}, 1, 0},
		{"product", "x*y", []binding{{"x", 2, 0.1}, {"y", 5, 0.2}}, 10, math.Hypot(5*0.1, 2*0.2)},
		{"log", "log(1000,10)", nil, 3, 0},
		{"logvar", "log(x)", []binding{{"x", 2, 0.1}}, math.Ln2, 0.05},
		{"sqrt", "sqrt(x)", []binding{{"x", 4, 0.4}}, 2, 0.1},
		{"exp", "exp(x)", []binding{{"x", 1, 0.1}}, math.E, 0.1 * math.E},
		{"hypot", "hypot(x,y)", []binding{{"x", 3, 0.1}, {"y", 4, 0}}, 5, 0.06},
		{"powfunc", "pow(x,2)", []binding{{"x", 3, 0.1}}, 9, 0.6},
		{"floor", "floor(x)", []binding{{"x", 2.5, 0.1}}, 2, 0},
		{"nested", "sin(x)**2+cos(x)**2", []binding{{"x", 0.7, 0.3}}, 1, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, prec := range []uint{0, DefaultPrec, 256} {
				r, err := evalString(c.src, prec, c.vars...)
				if err != nil {
					t.Fatalf("prec %d: evaluation error: %v", prec, err)
				}
				if !closeTo(r.Value(), c.v, 1e-12) {
					t.Errorf("prec %d: wrong value: want %g, got %g", prec, c.v, r.Value())
				}
				if !closeTo(r.Std(), c.std, 1e-9) {
					t.Errorf("prec %d: wrong uncertainty: want %g, got %g", prec, c.std, r.Std())
				}
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		vars []binding
		err  error
	}{
		{"divzero", "1/0", nil, &DomainError{X: 0, Arg: 2, Func: "/"}},
		{"divvar", "x/y", []binding{{"x", 1, 0}, {"y", 0, 0.1}}, &DomainError{X: 0, Arg: 2, Func: "/"}},
		{"zeropow", "0**-1", nil, &DomainError{X: -1, Arg: 2, Func: "**"}},
		{"rootneg", "(-8)**0.5", nil, &DomainError{X: -8, Arg: 1, Func: "**"}},
		{"powfunc", "pow(-8,0.5)", nil, &DomainError{X: -8, Arg: 1, Func: "pow"}},
		{"sqrt", "sqrt(-1)", nil, &DomainError{X: -1, Arg: 1, Func: "sqrt"}},
		{"log", "log(0)", nil, &DomainError{X: 0, Arg: 1, Func: "log"}},
		{"logbase", "log(2,1)", nil, &DomainError{X: 1, Arg: 2, Func: "log"}},
		{"exp", "exp(1000)", nil, &RangeError{Func: "exp", X: 1000}},
		{"pow", "10**400", nil, &RangeError{Func: "**", X: 10}},
		{"addover", "x+y", []binding{{"x", 1e308, 0}, {"y", 1e308, 0}}, &RangeError{Func: "+", X: 1e308}},
		{"subover", "x-y", []binding{{"x", -1e308, 0}, {"y", 1e308, 0}}, &RangeError{Func: "-", X: -1e308}},
		{"mulover", "x*y", []binding{{"x", 1e200, 1}, {"y", 1e200, 1}}, &RangeError{Func: "*", X: 1e200}},
		{"divover", "x/y", []binding{{"x", 1e300, 0}, {"y", 1e-300, 0}}, &RangeError{Func: "/", X: 1e300}},
		{"negover", "-x*10", []binding{{"x", 1e308, 0}}, &RangeError{Func: "*", X: -1e308}},
		{"undef", "x", nil, &NameError{Name: "x"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := evalString(c.src, DefaultPrec, c.vars...)
			if err == nil {
				t.Fatalf("no error from %q", c.src)
			}
			switch want := c.err.(type) {
			case *DomainError:
				var got *DomainError
				if !errors.As(err, &got) || *got != *want {
					t.Errorf("wrong error: want %v, got %v", want, err)
				}
			case *RangeError:
				var got *RangeError
				if !errors.As(err, &got) || *got != *want {
					t.Errorf("wrong error: want %v, got %v", want, err)
				}
			case *NameError:
				var got *NameError
				if !errors.As(err, &got) || *got != *want {
					t.Errorf("wrong error: want %v, got %v", want, err)
				}
			}
		})
	}
}

func TestEvalDeterministic(t *testing.T) {
	vars := []binding{{"x", 0.3, 0.01}, {"y", 1.7, 0.2}, {"z", -2, 0.5}}
	src := "exp(x)*log(y)/sqrt(y**2+z**2)-atan(z)*x"
	want, err := evalString(src, DefaultPrec, vars...)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		got, err := evalString(src, DefaultPrec, vars...)
		if err != nil {
			t.Fatal(err)
		}
		if math.Float64bits(got.Value()) != math.Float64bits(want.Value()) || math.Float64bits(got.Std()) != math.Float64bits(want.Std()) {
			t.Fatalf("evaluation %d differs: %v, first was %v", i, got, want)
		}
	}
}

func BenchmarkEval(b *testing.B) {
	n, _, err := parse("sqrt(x**2+y**2)/(a*sin(t)+b*cos(t))-log(x,2)", DefaultVocabulary(), DefaultMaxDepth)
	if err != nil {
		b.Fatal(err)
	}
	vars := []binding{{"x", 3, 0.1}, {"y", 4, 0.1}, {"a", 1, 0.01}, {"b", 2, 0.02}, {"t", 0.5, 0.05}}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ctx := newContext(DefaultPrec, len(vars))
		for _, v := range vars {
			ctx.bind(v.name, v.v, v.sigma)
		}
		if _, err := ctx.eval(n); err != nil {
			b.Fatal(err)
		}
	}
}
