package propagate

import "strconv"

// IdentifierError indicates a name of more than one letter that is not a
// function in the vocabulary. It implements InputError.
type IdentifierError struct {
	// Col is the position of the first occurrence of the identifier.
	Col int
	// Ident is the unrecognized identifier.
	Ident string
}

func (err *IdentifierError) Error() string {
	return errpos(err.Col, "unknown function "+strconv.Quote(err.Ident))
}

func (err *IdentifierError) Pos() int {
	return err.Col
}

// OperatorError indicates a character that is neither a letter nor permitted
// by the vocabulary. It implements InputError.
type OperatorError struct {
	// Col is the position of the first occurrence of the character.
	Col int
	// Operator is the illegal character.
	Operator rune
}

func (err *OperatorError) Error() string {
	return errpos(err.Col, "illegal operator "+strconv.QuoteRune(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// TooManyVariablesError indicates an expression with more distinct variables
// than allowed.
type TooManyVariablesError struct {
	// Count is the number of variables in the expression.
	Count int
	// Max is the limit that was exceeded.
	Max int
}

func (err *TooManyVariablesError) Error() string {
	return "expression has " + strconv.Itoa(err.Count) + " variables; at most " + strconv.Itoa(err.Max) + " are allowed"
}

// TooDeepError indicates an expression nested more deeply than allowed.
type TooDeepError struct {
	// Max is the limit that was exceeded.
	Max int
}

func (err *TooDeepError) Error() string {
	return "expression is nested more than " + strconv.Itoa(err.Max) + " levels deep"
}

// InvalidExpressionError indicates an expression that passed the character
// checks but could not be parsed or evaluated with every variable set to
// zero. Err is the underlying cause; positions in it refer to the normalized
// text.
type InvalidExpressionError struct {
	// Text is the expression text, without whitespace.
	Text string
	// Err is the cause.
	Err error
}

func (err *InvalidExpressionError) Error() string {
	return "invalid expression " + strconv.Quote(err.Text) + ": " + err.Err.Error()
}

func (err *InvalidExpressionError) Unwrap() error {
	return err.Err
}

// MeasurementError indicates a measurement that cannot be used: a value or
// uncertainty that is not a decimal numeral, a negative uncertainty, or a
// name that does not match the expression's variables.
type MeasurementError struct {
	// Name is the variable the measurement is for.
	Name string
	// Field is "value" or "uncertainty", or empty for errors about the name.
	Field string
	// Text is the offending text.
	Text string
	// Reason describes the problem.
	Reason string
}

func (err *MeasurementError) Error() string {
	if err.Name == "" {
		return "measurements: " + err.Reason
	}
	s := "measurement of " + strconv.Quote(err.Name)
	if err.Field != "" {
		s += ": " + err.Field + " " + strconv.Quote(err.Text)
	}
	return s + ": " + err.Reason
}

// RowError indicates a failure evaluating one row of a table.
type RowError struct {
	// Row is the 0-based index of the row.
	Row int
	// Err is the cause.
	Err error
}

func (err *RowError) Error() string {
	return "row " + strconv.Itoa(err.Row) + ": " + err.Err.Error()
}

func (err *RowError) Unwrap() error {
	return err.Err
}

// NonFiniteError indicates an evaluation whose value or propagated
// uncertainty is not a finite number. Typically the expression is not
// differentiable at the measured values, as sqrt(x) at x=0 with uncertainty,
// or an uncertainty too large to represent.
type NonFiniteError struct {
	Value       float64
	Uncertainty float64
}

func (err *NonFiniteError) Error() string {
	return "result " + formatPair(err.Value, err.Uncertainty) + " is not finite"
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}
