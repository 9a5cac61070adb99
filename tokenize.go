package propagate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits text into its distinct runs of letters and its distinct
// other characters. Identifiers are returned in order of first occurrence and
// are case-sensitive. Underscores separate runs but are not reported as
// characters. Tokenize of the empty string returns nil, nil.
func Tokenize(text string) (idents []string, chars []rune) {
	t := scanText(text)
	return t.idents, t.chars
}

// tokens is the result of scanning expression text. Each cols slice gives the
// 1-based rune column of the first occurrence of the corresponding token.
type tokens struct {
	idents    []string
	identCols []int
	chars     []rune
	charCols  []int
}

func scanText(text string) tokens {
	var (
		t      tokens
		seenID = make(map[string]bool)
		seenCh = make(map[rune]bool)
		start  = -1
		col    = 0
		from   = 0
	)
	flush := func(end int) {
		if start < 0 {
			return
		}
		w := text[start:end]
		start = -1
		if seenID[w] {
			return
		}
		seenID[w] = true
		t.idents = append(t.idents, w)
		t.identCols = append(t.identCols, from)
	}
	for i, r := range text {
		col++
		if unicode.IsLetter(r) {
			if start < 0 {
				start, from = i, col
			}
			continue
		}
		flush(i)
		if r == '_' || seenCh[r] {
			continue
		}
		seenCh[r] = true
		t.chars = append(t.chars, r)
		t.charCols = append(t.charCols, col)
	}
	// The end of the text terminates a trailing run.
	flush(len(text))
	return t
}

// variables selects the single-letter identifiers which do not name functions.
// idents is already free of duplicates, so the result is too.
func variables(idents []string, vocab *Vocabulary) []string {
	var vars []string
	for _, w := range idents {
		if utf8.RuneCountInString(w) != 1 {
			continue
		}
		if _, ok := vocab.Lookup(w); ok {
			continue
		}
		vars = append(vars, w)
	}
	return vars
}

// stripSpace removes every whitespace character from s.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// normalize rewrites alternate brackets as parentheses and ^ as **.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '[', '{':
			b.WriteByte('(')
		case ']', '}':
			b.WriteByte(')')
		case '^':
			b.WriteString("**")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
