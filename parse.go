package propagate

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Expr = num | name | Call | Neg | Plus | Add | Sub | Mul | Div | Pow | '(' Expr ')' | '[' Expr ']' | '{' Expr '}'
// Call = funcname ArgList
// ArgList = '(' Expr { ',' Expr } ')' | '[' Expr { ',' Expr } ']' | '{' Expr { ',' Expr } '}'
// Neg = '-' Expr
// Plus = '+' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr
// Div = Expr '/' Expr
// Pow = Expr '**' Expr

// parsectx holds general data for parsing.
type parsectx struct {
	// names is the set of variable names that have been seen this parse.
	names map[string]bool
	// order is names in order of first appearance.
	order []string
	// vocab gives the function names that trigger call parsing for ids.
	vocab *Vocabulary
	// depth is the number of subexpressions being parsed. maxDepth limits
	// both it and the height of the tree; negative maxDepth disables it.
	depth    int
	maxDepth int
}

// parse parses src into an AST. The second result lists the names that are
// not functions, in order of appearance. Trees taller than maxDepth, or
// subexpressions nested deeper, are a *TooDeepError.
func parse(src string, vocab *Vocabulary, maxDepth int) (*node, []string, error) {
	scan := lex(src)
	p := parsectx{
		names:    make(map[string]bool),
		vocab:    vocab,
		maxDepth: maxDepth,
	}
	n, err := parseterm(scan, &p, exprprec)
	if err != nil {
		return nil, nil, err
	}
	if tok := scan.must(); tok.kind != tokenEOF {
		return nil, nil, itShouldNotHaveEndedThisWay(tok, -1)
	}
	if n == nil {
		// parselhs reports EOF in place of a term as an error.
		panic("propagate: empty parse without error")
	}
	return n, p.order, nil
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator) (*node, error) {
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent, tokenOpen:
			// Terms must be joined by an operator; 2(x) is not a product.
			return nil, &JuxtapositionError{Col: tok.pos, Text: tok.text}
		case tokenOp:
			// Binary operator.
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &PlacementError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				end := scan.must()
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			n, err = p.join(&node{kind: prec.op, left: n, right: rhs})
			if err != nil {
				return nil, err
			}
		case tokenClose, tokenSep, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("propagate: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary
// and any encountered token must be valid as the start of a subexpression.
func parselhs(scan *lexer, p *parsectx, until operator) (*node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.maxDepth >= 0 && p.depth > p.maxDepth {
		return nil, &TooDeepError{Max: p.maxDepth}
	}
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	var n *node
	switch tok.kind {
	case tokenNum:
		// The lexer only produces valid syntax, so the only possible error is
		// a range error, and then the result is ±Inf or 0 as desired.
		v, _ := strconv.ParseFloat(tok.text, 64)
		n = &node{kind: nodeNum, name: tok.text, num: v, height: 1}
	case tokenIdent:
		f, ok := p.vocab.Lookup(tok.text)
		if !ok {
			if !p.names[tok.text] {
				p.names[tok.text] = true
				p.order = append(p.order, tok.text)
			}
			n = &node{kind: nodeName, name: tok.text, height: 1}
			break
		}
		args, err := parsecall(scan, p, f.Fn, tok)
		if err != nil {
			return nil, err
		}
		n = &node{kind: nodeCall, name: tok.text, fn: f.Fn, right: args, height: 1}
		for a := args; a != nil; a = a.right {
			n.height = max(n.height, a.left.height+1)
		}
		if p.maxDepth >= 0 && n.height > p.maxDepth {
			return nil, &TooDeepError{Max: p.maxDepth}
		}
	case tokenOp:
		// unary operator
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &PlacementError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x**-y -> x**(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			end := scan.must()
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		n, err = p.join(&node{kind: prec.op, left: rhs})
		if err != nil {
			return nil, err
		}
	case tokenOpen:
		match := rightbracket(tok.text)
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose || end.text != closebracket(match) {
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		n = rhs
	case tokenClose, tokenSep:
		// Let the caller decide what to do.
		scan.push(tok)
		return nil, nil
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("propagate: unknown token: " + tok.String())
	}
	return n, nil
}

// join sets the height of an operator node from its operands and checks it
// against the limit.
func (p *parsectx) join(n *node) (*node, error) {
	n.height = n.left.height + 1
	if n.right != nil {
		n.height = max(n.height, n.right.height+1)
	}
	if p.maxDepth >= 0 && n.height > p.maxDepth {
		return nil, &TooDeepError{Max: p.maxDepth}
	}
	return n, nil
}

// parsecall parses the bracketed argument list of a call to fn. The result is
// the first nodeArg of the list.
func parsecall(scan *lexer, p *parsectx, fn Func, name lexToken) (*node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenOpen {
		// Functions are values only when called.
		return nil, &CallError{Col: name.pos, Func: name.text, Len: 0}
	}
	match := rightbracket(tok.text)
	n, len, err := parsearglist(scan, p, tok.text)
	if err != nil {
		return nil, err
	}
	end := scan.must()
	if end.kind != tokenClose {
		panic("propagate: parsearglist ended on " + end.String() + " instead of close bracket")
	}
	if end.text != closebracket(match) {
		return nil, &BracketError{Col: end.pos, Left: tok.text, Right: end.text}
	}
	if !fn.CanCall(len) {
		return nil, &CallError{Col: name.pos, Func: name.text, Len: len}
	}
	return n, nil
}

// parsearglist parses a bracketed list of zero or more args.
func parsearglist(scan *lexer, p *parsectx, open string) (*node, int, error) {
	var n node
	l := &n
	len := 0
	for {
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			// As a special case, reporting mismatched brackets is more helpful
			// than empty expression, if that's what we'd do here.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: open}
			}
			return nil, 0, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			// Caller checks that brackets match.
			scan.push(end)
			if rhs == nil {
				// func() is a call with no arguments, but func(a,) is an error.
				if len != 0 {
					return nil, 0, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, 0, nil
			}
			l.right = &node{kind: nodeArg, left: rhs}
			return n.right, len + 1, nil
		case tokenSep:
			if rhs == nil {
				return nil, 0, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			len++
			l.right = &node{kind: nodeArg, left: rhs}
			l = l.right
		case tokenEOF:
			return nil, 0, &BracketError{Col: end.pos, Left: open, Right: ""}
		default:
			panic("propagate: parseterm ended on non-end token " + end.String())
		}
	}
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := strings.IndexRune(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("propagate: invalid bracket " + strconv.Quote(left))
	}
	return k
}

func closebracket(k int) string {
	return CloseBrackets[k : k+1]
}

// leftbracket gets the opening bracket with index right. If right is -1,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return OpenBrackets[right : right+1]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket index that the
// expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok lexToken, match int) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: ""}
	case tokenClose:
		// A bracket could be the wrong bracket for the opening brace or any
		// bracket at the end of an input.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	default:
		panic("propagate: it really should not have ended this way: " + tok.String())
	}
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*":
		return operator{5, false, nodeMul}
	case "/":
		return operator{5, false, nodeDiv}
	case "**":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, nodeNop}
	case "-":
		return operator{10, true, nodeNeg}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
var exprprec = operator{-128, true, nodeNone}
