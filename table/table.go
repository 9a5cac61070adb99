// Package table reads and writes the CSV tables used to evaluate an
// expression for many measurements at once.
//
// An input table has two columns per variable, in the order of the
// expression's variables: the value, headed by the variable name, and the
// uncertainty, headed by UncertaintyLabel of the name. The output table
// repeats the input columns and appends the result and its uncertainty.
package table

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	propagate "github.com/fredc1/propagate-uncertainty-project"
)

// ResultUncertaintyLabel heads the output column holding the propagated
// uncertainty of the expression.
const ResultUncertaintyLabel = "expression_uncertainty"

// UncertaintyLabel returns the header of the uncertainty column for a
// variable.
func UncertaintyLabel(name string) string {
	return name + "_uncertainty"
}

// Header returns the header expected for a table of measurements of vars.
func Header(vars []string) []string {
	h := make([]string, 0, 2*len(vars))
	for _, v := range vars {
		h = append(h, v, UncertaintyLabel(v))
	}
	return h
}

// Table is a table of measurements.
type Table struct {
	// Vars is the variable names, in column order.
	Vars []string
	// Rows holds one Pair per variable for each row.
	Rows [][]propagate.Pair
}

// Read reads a table of measurements of vars. The header must match Header
// exactly, and every row must have one value and one uncertainty for each
// variable; otherwise the error is a *ColumnError. Fields are not checked as
// numerals; evaluation does that.
func Read(r io.Reader, vars []string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	want := Header(vars)
	got, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ColumnError{Row: 0, Want: want}
		}
		return nil, err
	}
	trim(got)
	if !equal(got, want) {
		return nil, &ColumnError{Row: 0, Want: want, Got: got}
	}
	t := Table{Vars: append([]string(nil), vars...)}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if len(rec) != len(want) {
			return nil, &ColumnError{Row: row, Want: want, Got: rec}
		}
		trim(rec)
		pairs := make([]propagate.Pair, len(vars))
		for i := range pairs {
			pairs[i] = propagate.Pair{Value: rec[2*i], Uncertainty: rec[2*i+1]}
		}
		t.Rows = append(t.Rows, pairs)
	}
	return &t, nil
}

func trim(rec []string) {
	for i, s := range rec {
		rec[i] = strings.TrimSpace(s)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Write writes the results of evaluating e over t. rs must have one result
// for each row of t. The header is Header(t.Vars) followed by the expression
// text and ResultUncertaintyLabel; each row repeats the input text followed
// by the result value and uncertainty.
func Write(w io.Writer, e *propagate.Expression, t *Table, rs []propagate.Result) error {
	if len(rs) != len(t.Rows) {
		panic("table: " + strconv.Itoa(len(rs)) + " results for " + strconv.Itoa(len(t.Rows)) + " rows")
	}
	cw := csv.NewWriter(w)
	h := append(Header(t.Vars), e.Text(), ResultUncertaintyLabel)
	if err := cw.Write(h); err != nil {
		return err
	}
	rec := make([]string, 0, len(h))
	for i, row := range t.Rows {
		rec = rec[:0]
		for _, p := range row {
			rec = append(rec, p.Value, p.Uncertainty)
		}
		rec = append(rec, formatFloat(rs[i].Value), formatFloat(rs[i].Uncertainty))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Evaluate evaluates e for every row of t, in order.
func Evaluate(e *propagate.Expression, t *Table) ([]propagate.Result, error) {
	return e.PropagateTable(t.Rows)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ColumnError indicates a table whose columns do not match the expression's
// variables.
type ColumnError struct {
	// Row is the 0-based record index; 0 is the header.
	Row int
	// Want is the expected header.
	Want []string
	// Got is the offending record. It is nil if the table is empty.
	Got []string
}

func (err *ColumnError) Error() string {
	if err.Got == nil {
		return "table: missing header; want " + strings.Join(err.Want, ",")
	}
	if err.Row == 0 {
		return "table: header " + strings.Join(err.Got, ",") + " does not match " + strings.Join(err.Want, ",")
	}
	return "table: row " + strconv.Itoa(err.Row) + " has " + strconv.Itoa(len(err.Got)) + " columns; want " + strconv.Itoa(len(err.Want))
}
