package propagate

import "strconv"

// Context is the state of a single evaluation. Funcs receive it to learn the
// working precision. A Context is not safe to use concurrently; each
// evaluation of an Expression uses its own.
type Context struct {
	stack []Number
	names map[string]Number
	prec  uint
	// next is the identifier of the next independent source.
	next int
}

func newContext(prec uint, nvars int) *Context {
	return &Context{
		stack: make([]Number, 0, 8),
		names: make(map[string]Number, nvars),
		prec:  prec,
	}
}

// Prec returns the working precision in bits for functions that compute at
// extended precision. Values below 53 mean float64 precision.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// bind sets name to a new independent source with nominal value v and
// standard uncertainty sigma.
func (ctx *Context) bind(name string, v, sigma float64) {
	ctx.names[name] = Number{v: v, d: []partial{{src: ctx.next, sigma: sigma, d: 1}}}
	ctx.next++
}

// eval evaluates the AST rooted at n and returns its result.
func (ctx *Context) eval(n *node) (Number, error) {
	ctx.stack = ctx.stack[:0]
	if err := n.eval(ctx); err != nil {
		return Number{}, err
	}
	if len(ctx.stack) != 1 {
		panic("propagate: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
	return ctx.stack[0], nil
}

// push pushes a value onto the stack.
func (ctx *Context) push(x Number) {
	ctx.stack = append(ctx.stack, x)
}

// pop removes the top from the stack and returns it.
func (ctx *Context) pop() Number {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *Number {
	return &ctx.stack[len(ctx.stack)-1]
}

// operands evaluates both sides of a binary node and pops the right side.
func (n *node) operands(ctx *Context) (*Number, Number, error) {
	if err := n.left.eval(ctx); err != nil {
		return nil, Number{}, err
	}
	if err := n.right.eval(ctx); err != nil {
		return nil, Number{}, err
	}
	r := ctx.pop()
	return ctx.top(), r, nil
}

// arith stores v, the result of applying op to *l and r, in place of *l.
// Overflow of finite operands is a *RangeError.
func arith(l *Number, op string, v, r Number) error {
	if err := checkResult(op, v.v, l.v, r.v); err != nil {
		return err
	}
	*l = v
	return nil
}

// eval pushes the node's value to the context's stack.
func (n *node) eval(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		ctx.push(Exact(n.num))
	case nodeName:
		v, ok := ctx.names[n.name]
		if !ok {
			return &NameError{Name: n.name}
		}
		ctx.push(v)
	case nodeCall:
		k := len(ctx.stack)
		for l := n.right; l != nil; l = l.right {
			if err := l.left.eval(ctx); err != nil {
				return err
			}
		}
		invoc := ctx.stack[k:len(ctx.stack):len(ctx.stack)]
		r, err := n.fn.Call(ctx, invoc)
		if err != nil {
			return err
		}
		ctx.stack = append(ctx.stack[:k], r)
	case nodeArg:
		panic("propagate: eval on nodeArg")
	case nodeNeg:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		v := ctx.top()
		*v = v.Neg()
	case nodeAdd:
		l, r, err := n.operands(ctx)
		if err != nil {
			return err
		}
		return arith(l, "+", l.Add(r), r)
	case nodeSub:
		l, r, err := n.operands(ctx)
		if err != nil {
			return err
		}
		return arith(l, "-", l.Sub(r), r)
	case nodeMul:
		l, r, err := n.operands(ctx)
		if err != nil {
			return err
		}
		return arith(l, "*", l.Mul(r), r)
	case nodeDiv:
		l, r, err := n.operands(ctx)
		if err != nil {
			return err
		}
		// Guard against division by zero, including 0/0.
		if r.v == 0 {
			return &DomainError{X: r.v, Arg: 2, Func: "/"}
		}
		return arith(l, "/", l.Quo(r), r)
	case nodePow:
		l, r, err := n.operands(ctx)
		if err != nil {
			return err
		}
		v, err := pow(ctx, *l, r)
		if err != nil {
			return err
		}
		*l = v
	case nodeNop:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
	default:
		panic("propagate: invalid AST node " + n.kind.String())
	}
	return nil
}
