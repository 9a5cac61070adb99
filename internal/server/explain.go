package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	propagate "github.com/fredc1/propagate-uncertainty-project"
	"github.com/fredc1/propagate-uncertainty-project/table"
)

// Explain turns an error from validation or evaluation into a message for
// the person who wrote the expression or the measurements.
func Explain(err error) string {
	var (
		row   *propagate.RowError
		ident *propagate.IdentifierError
		op    *propagate.OperatorError
		br    *propagate.BracketError
		many  *propagate.TooManyVariablesError
		deep  *propagate.TooDeepError
		inf   *propagate.NonFiniteError
		inv   *propagate.InvalidExpressionError
		meas  *propagate.MeasurementError
		dom   *propagate.DomainError
		rng   *propagate.RangeError
		col   *table.ColumnError
		big   *http.MaxBytesError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &row):
		// The header is line 1 of the file.
		return fmt.Sprintf("Line %d: %s", row.Row+2, Explain(row.Err))
	case errors.As(err, &ident):
		return fmt.Sprintf("%q is not a function. Variables must be single letters; the available functions are %s.",
			ident.Ident, strings.Join(funcNames(), ", "))
	case errors.As(err, &op):
		return fmt.Sprintf("The character %q is not allowed. Use numbers, single-letter variables, functions and the operators %s.",
			op.Operator, propagate.DefaultVocabulary().Operators())
	case errors.As(err, &br):
		return "The brackets do not match: " + br.Error() + "."
	case errors.As(err, &many):
		return fmt.Sprintf("The expression has %d variables, but at most %d are allowed.", many.Count, many.Max)
	case errors.As(err, &deep):
		return fmt.Sprintf("The expression is nested too deeply. At most %d levels of operators, functions and brackets are allowed.", deep.Max)
	case errors.As(err, &inv):
		return "The expression cannot be evaluated. Check that every operator has operands and every function has the right number of arguments."
	case errors.As(err, &meas):
		if meas.Field != "" {
			return fmt.Sprintf("The %s %q given for %s is not usable: %s.", meas.Field, meas.Text, meas.Name, meas.Reason)
		}
		if meas.Name != "" {
			return fmt.Sprintf("The measurement of %s is %s.", meas.Name, meas.Reason)
		}
		return "The measurements do not match the expression: " + meas.Reason + "."
	case errors.As(err, &dom):
		return fmt.Sprintf("The expression is undefined for these measurements: %s is not defined at %g.", dom.Func, dom.X)
	case errors.As(err, &inf):
		return fmt.Sprintf("The uncertainty cannot be propagated for these measurements: the result %s is not finite. The expression may not be differentiable there.", propagate.Result{Value: inf.Value, Uncertainty: inf.Uncertainty})
	case errors.As(err, &rng):
		return fmt.Sprintf("The result of %s is too large to represent.", rng.Func)
	case errors.As(err, &col):
		return "The table columns must be " + strings.Join(col.Want, ",") + "."
	case errors.As(err, &big):
		return fmt.Sprintf("The upload is larger than the limit of %d bytes.", big.Limit)
	}
	return "Something went wrong: " + err.Error()
}

func funcNames() []string {
	fs := propagate.DefaultVocabulary().Funcs()
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}
