package propagate

import (
	"math"
	"strconv"

	"github.com/rs/zerolog"
)

// DefaultMaxVariables is the default limit on the number of distinct variables
// in an expression.
const DefaultMaxVariables = 200

// DefaultMaxDepth is the default limit on how deeply an expression may nest.
const DefaultMaxDepth = 1000

// DefaultPrec is the default working precision in bits.
const DefaultPrec = 64

// Option is an option for New.
type Option interface {
	option(*config)
}

type config struct {
	vocab    *Vocabulary
	maxVars  int
	maxDepth int
	prec     uint
	log      zerolog.Logger
}

type (
	vocabopt    struct{ v *Vocabulary }
	maxvarsopt  int
	maxdepthopt int
	precopt     uint
	logopt      struct{ l zerolog.Logger }
)

func (o vocabopt) option(c *config)    { c.vocab = o.v }
func (o maxvarsopt) option(c *config)  { c.maxVars = int(o) }
func (o maxdepthopt) option(c *config) { c.maxDepth = int(o) }
func (o precopt) option(c *config)     { c.prec = uint(o) }
func (o logopt) option(c *config)      { c.log = o.l }

// WithVocabulary sets the functions and operators that the expression may use.
// The default is DefaultVocabulary().
func WithVocabulary(v *Vocabulary) Option {
	return vocabopt{v}
}

// MaxVariables sets the limit on the number of distinct variables. A negative
// limit disables the check.
func MaxVariables(n int) Option {
	return maxvarsopt(n)
}

// MaxDepth sets the limit on nesting: the number of operators, calls and
// brackets enclosing any term, counting each operand of a chain like x+x+x
// as nested in the next. A negative limit disables the check.
func MaxDepth(n int) Option {
	return maxdepthopt(n)
}

// WithLogger sets a logger which receives a debug event for each rejected
// expression. The default discards them.
func WithLogger(l zerolog.Logger) Option {
	return logopt{l}
}

// Prec sets the working precision in bits for exponentials, logarithms, powers
// and square roots. Results are always rounded to float64; precisions below 53
// compute in float64 throughout.
func Prec(bits uint) Option {
	return precopt(bits)
}

// Expression is a validated expression ready for evaluation. An Expression is
// immutable and safe for concurrent use.
type Expression struct {
	text   string
	norm   string
	idents []string
	chars  []rune
	vars   []string
	root   *node
	prec   uint
}

// New validates an expression. The checks run in order and the first failure
// is returned:
//
//	1. Every identifier of more than one letter names a function
//	   (*IdentifierError).
//	2. Every other character is permitted (*OperatorError).
//	3. Brackets are properly nested (*BracketError).
//	4. There are not too many variables (*TooManyVariablesError).
//	5. The expression is not nested too deeply (*TooDeepError).
//	6. The expression parses and evaluates with every variable set to 0±0
//	   (*InvalidExpressionError).
//
// Whitespace is removed before any checks.
func New(text string, opts ...Option) (*Expression, error) {
	c := config{
		vocab:    DefaultVocabulary(),
		maxVars:  DefaultMaxVariables,
		maxDepth: DefaultMaxDepth,
		prec:     DefaultPrec,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt.option(&c)
		}
	}
	e := Expression{text: stripSpace(text), prec: c.prec}
	t := scanText(e.text)
	e.idents, e.chars = t.idents, t.chars
	if err := checkIdentifiers(&t, c.vocab); err != nil {
		return nil, c.reject(e.text, err)
	}
	if err := checkChars(&t, c.vocab); err != nil {
		return nil, c.reject(e.text, err)
	}
	if err := checkBalance(e.text); err != nil {
		return nil, c.reject(e.text, err)
	}
	e.vars = variables(e.idents, c.vocab)
	if c.maxVars >= 0 && len(e.vars) > c.maxVars {
		return nil, c.reject(e.text, &TooManyVariablesError{Count: len(e.vars), Max: c.maxVars})
	}
	e.norm = normalize(e.text)
	root, names, err := parse(e.norm, c.vocab, c.maxDepth)
	if deep, ok := err.(*TooDeepError); ok {
		return nil, c.reject(e.text, deep)
	}
	if err != nil {
		return nil, c.reject(e.text, &InvalidExpressionError{Text: e.text, Err: err})
	}
	for _, name := range names {
		// Names like x2 or a_b are not letter runs, so nothing binds them.
		if e.index(name) < 0 {
			return nil, c.reject(e.text, &InvalidExpressionError{Text: e.text, Err: &NameError{Name: name}})
		}
	}
	e.root = root
	if err := e.selfCheck(); err != nil {
		return nil, c.reject(e.text, &InvalidExpressionError{Text: e.text, Err: err})
	}
	return &e, nil
}

func (c *config) reject(text string, err error) error {
	c.log.Debug().Str("expression", text).Err(err).Msg("expression rejected")
	return err
}

// selfCheck evaluates the expression with every variable bound to 0±0.
func (e *Expression) selfCheck() error {
	ctx := newContext(e.prec, len(e.vars))
	for _, v := range e.vars {
		ctx.bind(v, 0, 0)
	}
	_, err := ctx.eval(e.root)
	return err
}

// MustNew is like New but panics if the expression is invalid.
func MustNew(text string, opts ...Option) *Expression {
	e, err := New(text, opts...)
	if err != nil {
		panic("propagate: " + err.Error())
	}
	return e
}

// Text returns the expression text with whitespace removed.
func (e *Expression) Text() string {
	return e.text
}

// Normalized returns the text that is evaluated: brackets are all
// parentheses and ^ is written as **.
func (e *Expression) Normalized() string {
	return e.norm
}

// Identifiers returns the distinct runs of letters in the expression in order
// of first occurrence.
func (e *Expression) Identifiers() []string {
	return append([]string(nil), e.idents...)
}

// Chars returns the distinct characters other than letters and underscores in
// order of first occurrence.
func (e *Expression) Chars() []rune {
	return append([]rune(nil), e.chars...)
}

// Variables returns the expression's variables in order of first occurrence.
// Rows passed to PropagateRow and PropagateTable are in this order.
func (e *Expression) Variables() []string {
	return append([]string(nil), e.vars...)
}

// String returns the expression text.
func (e *Expression) String() string {
	return e.text
}

// Tree returns the parsed form of the expression, with alternating round and
// square brackets grouping each term.
func (e *Expression) Tree() string {
	return e.root.String()
}

// Propagate evaluates the expression with a measurement for each variable. The
// measurements may be in any order, but there must be exactly one for each
// variable.
func (e *Expression) Propagate(ms []Measurement) (Result, error) {
	row := make([]Pair, len(e.vars))
	have := make(map[string]bool, len(ms))
	for _, m := range ms {
		k := e.index(m.Name)
		switch {
		case k < 0:
			return Result{}, &MeasurementError{Name: m.Name, Reason: "not a variable of the expression"}
		case have[m.Name]:
			return Result{}, &MeasurementError{Name: m.Name, Reason: "measured more than once"}
		}
		have[m.Name] = true
		row[k] = Pair{Value: m.Value, Uncertainty: m.Uncertainty}
	}
	for _, v := range e.vars {
		if !have[v] {
			return Result{}, &MeasurementError{Name: v, Reason: "missing"}
		}
	}
	return e.PropagateRow(row)
}

func (e *Expression) index(name string) int {
	for i, v := range e.vars {
		if v == name {
			return i
		}
	}
	return -1
}

// PropagateRow evaluates the expression with one measurement per variable,
// in the order given by Variables. Every measurement is checked before
// evaluation begins.
func (e *Expression) PropagateRow(row []Pair) (Result, error) {
	if len(row) != len(e.vars) {
		return Result{}, &MeasurementError{Reason: "got " + strconv.Itoa(len(row)) + " measurements for " + strconv.Itoa(len(e.vars)) + " variables"}
	}
	ctx := newContext(e.prec, len(e.vars))
	for i, v := range e.vars {
		val, unc, err := measure(v, row[i])
		if err != nil {
			return Result{}, err
		}
		ctx.bind(v, val, unc)
	}
	x, err := ctx.eval(e.root)
	if err != nil {
		return Result{}, err
	}
	r := Result{Value: x.Value(), Uncertainty: x.Std()}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) || math.IsNaN(r.Uncertainty) || math.IsInf(r.Uncertainty, 0) {
		return Result{}, &NonFiniteError{Value: r.Value, Uncertainty: r.Uncertainty}
	}
	return r, nil
}

// PropagateTable evaluates the expression for each row in order. The first
// failing row stops evaluation and is reported as a *RowError.
func (e *Expression) PropagateTable(rows [][]Pair) ([]Result, error) {
	rs := make([]Result, 0, len(rows))
	for i, row := range rows {
		r, err := e.PropagateRow(row)
		if err != nil {
			return nil, &RowError{Row: i, Err: err}
		}
		rs = append(rs, r)
	}
	return rs, nil
}
