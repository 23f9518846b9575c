package task

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NumberKind is one of the three representations a JSON number decodes to
// when the document is read with a number-preserving decoder. This is the
// Go analogue of serde_json::Number's internal PosInt/NegInt/Float split,
// ported from json_math.rs's JsonNumber enum.
type NumberKind int

const (
	Unsigned NumberKind = iota
	Signed
	Float
)

// Number is a tagged JSON number value. Exactly one of U/S/F is meaningful
// for a given Kind.
type Number struct {
	Kind NumberKind
	U    uint64
	S    int64
	F    float64
}

func FromUint(u uint64) Number   { return Number{Kind: Unsigned, U: u} }
func FromInt(s int64) Number     { return Number{Kind: Signed, S: s} }
func FromFloat(f float64) Number { return Number{Kind: Float, F: f} }

// ParseNumber classifies a JSON number literal by value, not by origin:
// a literal with no '.' or exponent that fits in uint64 is Unsigned, one
// that additionally needs a sign (or overflows uint64 but fits int64) is
// Signed, and anything else is Float. This mirrors serde_json::Number's
// own classification, which is why a query literal like `5` and a
// document field holding `5` both end up Unsigned: the classification
// never looks at where the digits came from.
func ParseNumber(lit string) (Number, error) {
	if !strings.ContainsAny(lit, ".eE") {
		if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
			return FromUint(u), nil
		}
		if s, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return FromInt(s), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Number{}, err
	}
	return FromFloat(f), nil
}

// NumberFromJSON classifies a json.Number decoded with Decoder.UseNumber().
func NumberFromJSON(n json.Number) (Number, error) {
	return ParseNumber(n.String())
}

func (n Number) AsFloat() float64 {
	switch n.Kind {
	case Unsigned:
		return float64(n.U)
	case Signed:
		return float64(n.S)
	default:
		return n.F
	}
}

// AsSigned widens n to int64. Only meaningful for Unsigned/Signed kinds;
// callers promoting to Signed (e.g. Negate) must already know n is not
// Float.
func (n Number) AsSigned() int64 {
	if n.Kind == Unsigned {
		return int64(n.U)
	}
	return n.S
}

// combine determines the promotion-lattice kind two operands settle into:
// Unsigned+Unsigned -> Unsigned; anything with a Float -> Float; any other
// mix -> Signed. Ported from json_math.rs's json_number_arith! macro,
// which expands this exact nine-branch table for each of +, -, *, /.
func combine(a, b Number) NumberKind {
	if a.Kind == Float || b.Kind == Float {
		return Float
	}
	if a.Kind == Unsigned && b.Kind == Unsigned {
		return Unsigned
	}
	return Signed
}

// Add, Sub, Mul and Div apply the promotion lattice and return a Number of
// the combined kind. Mul/Div exist because json_math.rs defines them —
// the evaluator deliberately never calls them (see DESIGN.md's Open
// Question resolution on reserved binary operators) but they round out
// the lattice faithfully.
func (a Number) Add(b Number) Number {
	switch combine(a, b) {
	case Unsigned:
		return FromUint(a.U + b.U)
	case Signed:
		return FromInt(a.AsSigned() + b.AsSigned())
	default:
		return FromFloat(a.AsFloat() + b.AsFloat())
	}
}

func (a Number) Sub(b Number) Number {
	switch combine(a, b) {
	case Unsigned:
		return FromUint(a.U - b.U)
	case Signed:
		return FromInt(a.AsSigned() - b.AsSigned())
	default:
		return FromFloat(a.AsFloat() - b.AsFloat())
	}
}

func (a Number) Mul(b Number) Number {
	switch combine(a, b) {
	case Unsigned:
		return FromUint(a.U * b.U)
	case Signed:
		return FromInt(a.AsSigned() * b.AsSigned())
	default:
		return FromFloat(a.AsFloat() * b.AsFloat())
	}
}

func (a Number) Div(b Number) Number {
	switch combine(a, b) {
	case Unsigned:
		return FromUint(a.U / b.U)
	case Signed:
		return FromInt(a.AsSigned() / b.AsSigned())
	default:
		return FromFloat(a.AsFloat() / b.AsFloat())
	}
}

// Compare returns -1, 0 or 1, comparing numerically across kinds so that
// 1 == 1.0 holds regardless of representation.
func (a Number) Compare(b Number) int {
	switch combine(a, b) {
	case Unsigned:
		switch {
		case a.U < b.U:
			return -1
		case a.U > b.U:
			return 1
		default:
			return 0
		}
	case Signed:
		x, y := a.AsSigned(), b.AsSigned()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	default:
		x, y := a.AsFloat(), b.AsFloat()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	}
}

// Negate widens an Unsigned operand to Signed rather than wrapping, per
// spec.md's design note on this exact point — 0 - u64::MAX would overflow
// u64 arithmetic, so negation yields a signed result for Unsigned and
// Signed inputs, and a Float result for Float inputs. An Unsigned above
// 2^63 has no int64 negation, so it negates to a Float instead.
func (n Number) Negate() Number {
	switch n.Kind {
	case Unsigned:
		if n.U > 1<<63 {
			return FromFloat(-float64(n.U))
		}
		return FromInt(-int64(n.U))
	case Signed:
		return FromInt(-n.S)
	default:
		return FromFloat(-n.F)
	}
}

// ToJSON renders n back into a json.Number whose textual form preserves
// its Kind under re-classification: Float values always carry a decimal
// point or exponent so ParseNumber never mistakes a round float for an
// integer.
func (n Number) ToJSON() json.Number {
	switch n.Kind {
	case Unsigned:
		return json.Number(strconv.FormatUint(n.U, 10))
	case Signed:
		return json.Number(strconv.FormatInt(n.S, 10))
	default:
		return json.Number(formatFloatJSON(n.F))
	}
}

func formatFloatJSON(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
