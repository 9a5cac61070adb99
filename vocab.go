package propagate

import (
	"sort"
	"strings"
	"unicode"
)

// Operators contains the operator and grouping runes permitted by the default
// vocabulary, in documentation order.
const Operators = "+-*/^()[]{}"

// Numerals contains the runes, other than operators, which are always
// permitted so that numeric literals and multi-argument calls can be written.
const Numerals = "0123456789.,"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// A bracket in byte position k in OpenBrackets is matched with the bracket in
// byte position k in CloseBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

// FuncInfo describes a function that expressions may call.
type FuncInfo struct {
	// Name is the identifier used to call the function.
	Name string
	// Signature is the call form shown to users, e.g. "log(x[, base])".
	Signature string
	// Description is a one-sentence explanation of the function.
	Description string
	// Fn evaluates the function.
	Fn Func
}

// Vocabulary is the set of functions and operators that expressions may use.
// A Vocabulary is immutable and safe for concurrent use.
type Vocabulary struct {
	funcs map[string]FuncInfo
	names []string
	ops   string
}

// NewVocabulary creates a vocabulary from a string of permitted operator runes
// and a list of functions. Functions named by fewer than two letters or
// containing non-letters can never be written in an expression, so they
// cause a panic, as does a function with a nil Fn.
func NewVocabulary(operators string, funcs ...FuncInfo) *Vocabulary {
	v := Vocabulary{
		funcs: make(map[string]FuncInfo, len(funcs)),
		names: make([]string, 0, len(funcs)),
		ops:   operators,
	}
	for _, f := range funcs {
		if !isFuncName(f.Name) {
			panic("propagate: invalid function name " + f.Name)
		}
		if f.Fn == nil {
			panic("propagate: nil Fn for " + f.Name)
		}
		if _, ok := v.funcs[f.Name]; !ok {
			v.names = append(v.names, f.Name)
		}
		v.funcs[f.Name] = f
	}
	sort.Strings(v.names)
	return &v
}

func isFuncName(s string) bool {
	n := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
		n++
	}
	return n > 1
}

// DefaultVocabulary returns the standard vocabulary: the Operators and the
// functions listed by DefaultFuncs.
func DefaultVocabulary() *Vocabulary {
	return defaultVocab
}

var defaultVocab = NewVocabulary(Operators, DefaultFuncs()...)

// Lookup returns the function with the given name.
func (v *Vocabulary) Lookup(name string) (FuncInfo, bool) {
	f, ok := v.funcs[name]
	return f, ok
}

// Funcs returns the vocabulary's functions sorted by name. The slice is a
// copy.
func (v *Vocabulary) Funcs() []FuncInfo {
	r := make([]FuncInfo, len(v.names))
	for i, name := range v.names {
		r[i] = v.funcs[name]
	}
	return r
}

// Operators returns the permitted operator runes in the order they were
// given.
func (v *Vocabulary) Operators() string {
	return v.ops
}

// Permits reports whether r may appear outside an identifier.
func (v *Vocabulary) Permits(r rune) bool {
	return strings.ContainsRune(v.ops, r) || strings.ContainsRune(Numerals, r)
}
