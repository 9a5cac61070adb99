package propagate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// checkIdentifiers requires every identifier longer than one letter to name a
// function. Single letters are always variables.
func checkIdentifiers(t *tokens, vocab *Vocabulary) error {
	for i, w := range t.idents {
		if utf8.RuneCountInString(w) == 1 {
			continue
		}
		if _, ok := vocab.Lookup(w); !ok {
			return &IdentifierError{Col: t.identCols[i], Ident: w}
		}
	}
	return nil
}

// checkChars requires every character outside identifiers to be permitted.
func checkChars(t *tokens, vocab *Vocabulary) error {
	for i, r := range t.chars {
		if unicode.IsLetter(r) || vocab.Permits(r) {
			continue
		}
		return &OperatorError{Col: t.charCols[i], Operator: r}
	}
	return nil
}

// checkBalance requires brackets to be properly nested. Only bracket runes
// are considered; other characters are the business of checkChars.
func checkBalance(text string) error {
	type open struct {
		k   int
		col int
	}
	var stack []open
	col := 0
	for _, r := range text {
		col++
		if k := strings.IndexRune(OpenBrackets, r); k >= 0 {
			stack = append(stack, open{k, col})
			continue
		}
		k := strings.IndexRune(CloseBrackets, r)
		if k < 0 {
			continue
		}
		if len(stack) == 0 {
			return &BracketError{Col: col, Right: string(r)}
		}
		top := stack[len(stack)-1]
		if top.k != k {
			return &BracketError{Col: col, Left: leftbracket(top.k), Right: string(r)}
		}
		stack = stack[:len(stack)-1]
	}
	if len(stack) != 0 {
		top := stack[len(stack)-1]
		return &BracketError{Col: col + 1, Left: leftbracket(top.k)}
	}
	return nil
}
