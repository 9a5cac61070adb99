// Package propagate evaluates arithmetic expressions over measured quantities
// and propagates their uncertainties to first order.
//
// Expressions are written as you would in your notes: "x + y^2",
// "sqrt{(a-b)^2 + [c*d]}", "log(v, 10)". Brackets of the three kinds may be
// mixed as long as they nest. Every name of more than one letter must be a
// function in the Vocabulary; every single letter is a variable. New checks
// all of this before anything is evaluated, so no input can do more than
// arithmetic.
//
// Each variable is measured as a value with a standard uncertainty. The
// uncertainty of the result is computed from the partial derivatives of the
// expression with respect to each measurement, so a variable used several
// times is correlated with itself: "x - x" has no uncertainty at all.
//
// An Expression is checked once and may then be evaluated for any number of
// measurement sets, concurrently if desired.
package propagate
