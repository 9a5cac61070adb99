package propagate

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	name string
	num  float64
	fn   Func

	left  *node
	right *node
	// height is the number of nodes on the longest path to a leaf, not
	// counting argument links.
	height int
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num
	nodeName // push lookup(name)

	nodeCall // name is Func to call, right is link to nodeArg
	nodeArg  // eval left, right is link to next arg

	nodeNeg // evaluate left, then negate
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, exp by right
	nodeNop // evaluate left
)

var nodeNames = [...]string{"None", "Num", "Name", "Call", "Arg", "Neg", "Add", "Sub", "Mul", "Div", "Pow", "Nop"}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeNames[k]
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, square)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, square)
		}
		b.WriteByte('$')
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.fmtargs(b, !square)
	case nodeArg:
		// Args usually only appear inside calls, which are handled by fmtargs.
		b.WriteByte(':')
		n.left.fmt(b, !square)
		if n.right != nil {
			n.right.fmt(b, !square)
		}
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b, !square)
	case nodeAdd:
		n.binary(b, " + ", square)
	case nodeSub:
		n.binary(b, " - ", square)
	case nodeMul:
		n.binary(b, " * ", square)
	case nodeDiv:
		n.binary(b, " / ", square)
	case nodePow:
		n.binary(b, " ** ", square)
	case nodeNop:
		b.WriteByte('+')
		n.left.fmt(b, !square)
	default:
		panic("propagate: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) binary(b *strings.Builder, op string, square bool) {
	n.left.fmt(b, !square)
	b.WriteString(op)
	n.right.fmt(b, !square)
}

func (n *node) fmtargs(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	first := true
	for a := n.right; a != nil; a = a.right {
		if !first {
			b.WriteString(", ")
		}
		first = false
		a.left.fmt(b, !square)
	}
}
