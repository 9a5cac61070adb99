package propagate

// numeral recognizes a decimal numeral one rune at a time. The mantissa is
// digits with at most one decimal point and at least one digit. When exp is
// set, the mantissa may be followed by an exponent: e or E, an optional sign,
// and digits. Expression literals allow exponents; measurements do not.
type numeral struct {
	exp   bool
	state numState
}

type numState uint8

const (
	numStart numState = iota
	// numInt follows digits before any point.
	numInt
	// numPoint follows a leading point with no digits yet.
	numPoint
	// numFrac follows the point of a mantissa that has digits.
	numFrac
	// numE follows the exponent marker.
	numE
	// numESign follows the sign of the exponent.
	numESign
	// numEDigits follows exponent digits.
	numEDigits
)

// accept advances the numeral by r. It reports false, leaving the numeral
// unchanged, if r cannot continue it.
func (n *numeral) accept(r rune) bool {
	digit := '0' <= r && r <= '9'
	marker := n.exp && (r == 'e' || r == 'E')
	switch n.state {
	case numStart:
		switch {
		case digit:
			n.state = numInt
		case r == '.':
			n.state = numPoint
		default:
			return false
		}
	case numInt:
		switch {
		case digit:
		case r == '.':
			n.state = numFrac
		case marker:
			n.state = numE
		default:
			return false
		}
	case numPoint:
		if !digit {
			return false
		}
		n.state = numFrac
	case numFrac:
		switch {
		case digit:
		case marker:
			n.state = numE
		default:
			return false
		}
	case numE:
		switch {
		case digit:
			n.state = numEDigits
		case r == '+', r == '-':
			n.state = numESign
		default:
			return false
		}
	case numESign, numEDigits:
		if !digit {
			return false
		}
		n.state = numEDigits
	}
	return true
}

// complete reports whether the runes accepted so far form a whole numeral.
func (n *numeral) complete() bool {
	switch n.state {
	case numInt, numFrac, numEDigits:
		return true
	}
	return false
}

// isNumeral reports whether s is a decimal numeral without exponent,
// optionally preceded by - if signed.
func isNumeral(s string, signed bool) bool {
	if signed && len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	var n numeral
	for _, r := range s {
		if !n.accept(r) {
			return false
		}
	}
	return n.complete()
}
