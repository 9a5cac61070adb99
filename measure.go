package propagate

import (
	"strconv"
	"strings"
)

// Measurement is a value with its uncertainty for one variable, as text.
type Measurement struct {
	Name        string
	Value       string
	Uncertainty string
}

// Pair is a value and uncertainty for a variable identified by position.
type Pair struct {
	Value       string
	Uncertainty string
}

// Result is the outcome of propagating uncertainty through an expression.
type Result struct {
	// Value is the nominal value.
	Value float64
	// Uncertainty is the propagated standard uncertainty. It is never
	// negative.
	Uncertainty float64
}

// String formats r as value+/-uncertainty.
func (r Result) String() string {
	return formatPair(r.Value, r.Uncertainty)
}

// ParsePair parses text of the form value+/-uncertainty, as produced by
// Result.String and accepted on command lines. Surrounding whitespace is
// ignored. The parts are not checked; use them in a Measurement.
func ParsePair(s string) (Pair, bool) {
	v, u, ok := strings.Cut(s, "+/-")
	if !ok {
		return Pair{}, false
	}
	return Pair{Value: strings.TrimSpace(v), Uncertainty: strings.TrimSpace(u)}, true
}

// measure converts the text of a measurement of name into a value and an
// uncertainty.
func measure(name string, p Pair) (v, u float64, err error) {
	if !isNumeral(p.Value, true) {
		return 0, 0, &MeasurementError{Name: name, Field: "value", Text: p.Value, Reason: "not a decimal numeral"}
	}
	if strings.HasPrefix(p.Uncertainty, "-") && isNumeral(p.Uncertainty, true) {
		return 0, 0, &MeasurementError{Name: name, Field: "uncertainty", Text: p.Uncertainty, Reason: "negative"}
	}
	if !isNumeral(p.Uncertainty, false) {
		return 0, 0, &MeasurementError{Name: name, Field: "uncertainty", Text: p.Uncertainty, Reason: "not a decimal numeral"}
	}
	if v, err = parseNumeral(name, "value", p.Value); err != nil {
		return 0, 0, err
	}
	if u, err = parseNumeral(name, "uncertainty", p.Uncertainty); err != nil {
		return 0, 0, err
	}
	return v, u, nil
}

// parseNumeral parses a string for which isNumeral is true. The only possible
// failure is overflow.
func parseNumeral(name, field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &MeasurementError{Name: name, Field: field, Text: s, Reason: "out of range"}
	}
	return v, nil
}
