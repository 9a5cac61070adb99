package propagate

import (
	"errors"
	"reflect"
	"testing"
)

// lexAll scans src until EOF or the first error.
func lexAll(src string) ([]lexToken, error) {
	l := lex(src)
	var toks []lexToken
	for {
		tok, err := l.next()
		if err != nil {
			return toks, err
		}
		if tok.kind == tokenEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexToken
		err    bool
	}{
		// spaces
		{"", nil, false},
		{" \t \r\n ", nil, false},
		// numbers
		{"0", []lexToken{{text: "0", kind: tokenNum, pos: 1}}, false},
		{"9876543210", []lexToken{{text: "9876543210", kind: tokenNum, pos: 1}}, false},
		{"1 0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "0", kind: tokenNum, pos: 3}}, false},
		{"1.0", []lexToken{{text: "1.0", kind: tokenNum, pos: 1}}, false},
		{"-1", []lexToken{{text: "-", kind: tokenOp, pos: 1}, {text: "1", kind: tokenNum, pos: 2}}, false},
		{"1e1", []lexToken{{text: "1e1", kind: tokenNum, pos: 1}}, false},
		{"1e", nil, true},
		{"1e+1", []lexToken{{text: "1e+1", kind: tokenNum, pos: 1}}, false},
		{"1e-1", []lexToken{{text: "1e-1", kind: tokenNum, pos: 1}}, false},
		{"1.1.1", nil, true},
		{".", nil, true},
		{".1", []lexToken{{text: ".1", kind: tokenNum, pos: 1}}, false},
		{"1a", nil, true},
		{"1.e5", []lexToken{{text: "1.e5", kind: tokenNum, pos: 1}}, false},
		{"2e*3", nil, true},
		{"1-1", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "1", kind: tokenNum, pos: 3}}, false},
		// identifiers
		{"e", []lexToken{{text: "e", kind: tokenIdent, pos: 1}}, false},
		{"x2", []lexToken{{text: "x2", kind: tokenIdent, pos: 1}}, false},
		{"π", []lexToken{{text: "π", kind: tokenIdent, pos: 1}}, false},
		{"a_b", []lexToken{{text: "a_b", kind: tokenIdent, pos: 1}}, false},
		{"sin(", []lexToken{{text: "sin", kind: tokenIdent, pos: 1}, {text: "(", kind: tokenOpen, pos: 4}}, false},
		// operators
		{"1+0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, false},
		{"a--b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "-", kind: tokenOp, pos: 3}, {text: "b", kind: tokenIdent, pos: 4}}, false},
		{"x**2", []lexToken{{text: "x", kind: tokenIdent, pos: 1}, {text: "**", kind: tokenOp, pos: 2}, {text: "2", kind: tokenNum, pos: 4}}, false},
		{"x***2", []lexToken{{text: "x", kind: tokenIdent, pos: 1}, {text: "**", kind: tokenOp, pos: 2}, {text: "*", kind: tokenOp, pos: 4}, {text: "2", kind: tokenNum, pos: 5}}, false},
		{"x*", []lexToken{{text: "x", kind: tokenIdent, pos: 1}, {text: "*", kind: tokenOp, pos: 2}}, false},
		// brackets and separators
		{"()", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: ")", kind: tokenClose, pos: 2}}, false},
		{"[]", []lexToken{{text: "[", kind: tokenOpen, pos: 1}, {text: "]", kind: tokenClose, pos: 2}}, false},
		{"{}", []lexToken{{text: "{", kind: tokenOpen, pos: 1}, {text: "}", kind: tokenClose, pos: 2}}, false},
		{"a,b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: ",", kind: tokenSep, pos: 2}, {text: "b", kind: tokenIdent, pos: 3}}, false},
		// erroneous symbols
		{"$", nil, true},
		{"a$", []lexToken{{text: "a", kind: tokenIdent, pos: 1}}, true},
		{"^", nil, true},
		{"a;b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}}, true},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			toks, err := lexAll(c.src)
			if (err != nil) != c.err {
				t.Errorf("wrong error: want error %t, got %v", c.err, err)
			}
			if err != nil {
				var le *LexError
				if !errors.As(err, &le) {
					t.Errorf("wrong error type: want *LexError, got %T", err)
				}
			}
			if !reflect.DeepEqual(toks, c.tokens) {
				t.Errorf("wrong tokens: want %v, got %v", c.tokens, toks)
			}
		})
	}
}

func TestLexPush(t *testing.T) {
	l := lex("x+")
	tok, err := l.next()
	if err != nil {
		t.Fatal(err)
	}
	l.push(tok)
	if got := l.must(); got != tok {
		t.Errorf("must returned %v after pushing %v", got, tok)
	}
	for i := 0; i < 2; i++ {
		if _, err := l.next(); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := l.next(); err == nil {
		t.Error("no error after EOF")
	}
}

func TestLexErrorCol(t *testing.T) {
	cases := []struct {
		src  string
		text string
		col  int
	}{
		{"$", "$", 1},
		{"x + $", "$", 5},
		{"12a", "12a", 3},
		{"1.2.3", "1.2.", 4},
		{"x+1e", "1e", 3},
		{"πx + 1e+", "1e+", 6},
	}
	for _, c := range cases {
		_, err := lexAll(c.src)
		var le *LexError
		if !errors.As(err, &le) {
			t.Errorf("%q: want *LexError, got %v", c.src, err)
			continue
		}
		if le.Text != c.text || le.Col != c.col {
			t.Errorf("%q: got %q at %d, want %q at %d", c.src, le.Text, le.Col, c.text, c.col)
		}
	}
}

func TestNumeral(t *testing.T) {
	cases := []struct {
		s      string
		signed bool
		ok     bool
	}{
		{"0", false, true},
		{"12.5", false, true},
		{".5", false, true},
		{"5.", false, true},
		{".", false, false},
		{"", false, false},
		{"-1", false, false},
		{"-1", true, true},
		{"-", true, false},
		{"1e3", false, false},
		{"1.2.3", false, false},
		{" 1", false, false},
		{"١", false, false},
	}
	for _, c := range cases {
		if got := isNumeral(c.s, c.signed); got != c.ok {
			t.Errorf("isNumeral(%q, %t) = %t, want %t", c.s, c.signed, got, c.ok)
		}
	}
}
