package propagate

import (
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexToken struct {
	text string
	kind tokenKind
	// pos is the 1-based rune column of the token's first rune.
	pos int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a numeric literal.
	tokenNum
	// tokenIdent is a variable or function name.
	tokenIdent
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is an open bracket, e.g. (.
	tokenOpen
	// tokenClose is a close bracket, e.g. ).
	tokenClose
	// tokenSep is the function arguments separator ,.
	tokenSep
)

var tokenNames = [...]string{"None", "EOF", "Num", "Ident", "Op", "Open", "Close", "Sep"}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// lexOperators contains the runes the lexer scans as operators. The power
// operator ** is scanned as a single token.
const lexOperators = "+-*/"

// punct gives the kind of a single-rune token, or tokenNone if r does not
// form one by itself.
func punct(r rune) tokenKind {
	switch {
	case strings.ContainsRune(lexOperators, r):
		return tokenOp
	case strings.ContainsRune(OpenBrackets, r):
		return tokenOpen
	case strings.ContainsRune(CloseBrackets, r):
		return tokenClose
	case r == ',':
		return tokenSep
	}
	return tokenNone
}

func wordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// lexer splits normalized expression text into tokens.
type lexer struct {
	src string
	// off is the byte offset of the next rune, and col is its column.
	off int
	col int
	// p is the pushed token, if any.
	p   lexToken
	eof bool
}

func lex(src string) *lexer {
	return &lexer{src: src, col: 1}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("propagate: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("propagate: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// peek returns the next rune without consuming it, or -1 at the end.
func (l *lexer) peek() (rune, int) {
	if l.off >= len(l.src) {
		return -1, 0
	}
	return utf8.DecodeRuneInString(l.src[l.off:])
}

func (l *lexer) advance(sz int) {
	l.off += sz
	l.col++
}

// next scans the next token from the input. The first time the end of the
// input is reached, the result is an EOF token with a nil error. After that,
// unless the EOF token is pushed, the result is an empty token with io.EOF.
func (l *lexer) next() (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	if l.eof {
		return lexToken{}, io.EOF
	}
	r, sz := l.peek()
	for unicode.IsSpace(r) {
		l.advance(sz)
		r, sz = l.peek()
	}
	start, tok := l.off, lexToken{pos: l.col}
	switch {
	case r < 0:
		l.eof = true
		tok.kind = tokenEOF
		return tok, nil
	case '0' <= r && r <= '9', r == '.':
		if err := l.scanNum(); err != nil {
			return tok, err
		}
		tok.kind = tokenNum
	case r == '_', unicode.IsLetter(r):
		for wordRune(r) {
			l.advance(sz)
			r, sz = l.peek()
		}
		tok.kind = tokenIdent
	default:
		tok.kind = punct(r)
		if tok.kind == tokenNone {
			l.advance(sz)
			return tok, &LexError{Text: l.src[start:l.off], Col: tok.pos}
		}
		l.advance(sz)
		if r == '*' {
			if s, _ := l.peek(); s == '*' {
				l.advance(1)
			}
		}
	}
	tok.text = l.src[start:l.off]
	return tok, nil
}

// scanNum scans a numeric literal. A literal running straight into a letter,
// a digit or another point is an error, so 2x and 1.2.3 are rejected here
// rather than read as two terms.
func (l *lexer) scanNum() error {
	start, col := l.off, l.col
	n := numeral{exp: true}
	r, sz := l.peek()
	for r >= 0 && n.accept(r) {
		l.advance(sz)
		r, sz = l.peek()
	}
	if r == '.' || wordRune(r) {
		l.advance(sz)
		return &LexError{Text: l.src[start:l.off], Kind: "number", Col: l.col - 1}
	}
	if !n.complete() {
		return &LexError{Text: l.src[start:l.off], Kind: "number", Col: col}
	}
	return nil
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning, up to and including the
	// invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This is "number" or
	// the empty string if a token kind hadn't been decided.
	Kind string
	// Col is the column of the invalid rune, or of the start of an
	// incomplete number.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
