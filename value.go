package calcscript

import (
	"math"
	"strconv"
	"strings"
)

// ValKind is the type of a Val.
type ValKind int8

const (
	// KindVars is an ordered sequence of values. It is the zero kind, so the
	// zero Val is the empty tuple, which means "no value".
	KindVars ValKind = iota
	KindReal
	KindComplex
	// KindFunc is a reference to a system function by name.
	KindFunc
)

func (k ValKind) String() string {
	switch k {
	case KindVars:
		return "Vars"
	case KindReal:
		return "Real"
	case KindComplex:
		return "Complex"
	case KindFunc:
		return "Function"
	default:
		return "ValKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Val is a runtime value. The zero Val is the empty value.
type Val struct {
	Kind ValKind
	// Re is the value of a real and the real part of a complex.
	Re float64
	// Im is the imaginary part of a complex.
	Im float64
	// Name is the name of a function.
	Name string
	// Vars is the elements of a tuple.
	Vars []Val
}

// RealVal creates a real value.
func RealVal(x float64) Val {
	return Val{Kind: KindReal, Re: x}
}

// ComplexVal creates a complex value.
func ComplexVal(re, im float64) Val {
	return Val{Kind: KindComplex, Re: re, Im: im}
}

// FuncVal creates a reference to the system function with the given name.
// The name is not checked; calling an unknown function produces the empty
// value.
func FuncVal(name string) Val {
	return Val{Kind: KindFunc, Name: name}
}

// VarsVal creates a tuple.
func VarsVal(vs ...Val) Val {
	return Val{Kind: KindVars, Vars: vs}
}

// IsEmpty reports whether v is the empty value.
func (v Val) IsEmpty() bool {
	return v.Kind == KindVars && len(v.Vars) == 0
}

// Reduce collapses a one-element tuple to its element, recursively. Other
// values are returned unchanged.
func Reduce(v Val) Val {
	for v.Kind == KindVars && len(v.Vars) == 1 {
		v = v.Vars[0]
	}
	return v
}

// Neg negates a real. Any other value produces the empty value.
func Neg(v Val) Val {
	if v.Kind != KindReal {
		return Val{}
	}
	return RealVal(-v.Re)
}

// Calc applies a binary operator to two values. Only pairs of reals are
// supported; any other operands or operators produce the empty value.
// Division and remainder by zero follow IEEE-754.
func Calc(a, b Val, op TokenKind) Val {
	if a.Kind != KindReal || b.Kind != KindReal {
		return Val{}
	}
	x, y := a.Re, b.Re
	switch op {
	case TokenPlus:
		return RealVal(x + y)
	case TokenMinus:
		return RealVal(x - y)
	case TokenStar:
		return RealVal(x * y)
	case TokenSlash:
		return RealVal(x / y)
	case TokenPercent:
		return RealVal(math.Mod(x, y))
	case TokenCaret:
		return RealVal(math.Pow(x, y))
	default:
		return Val{}
	}
}

// precedence returns the binding strength of a binary operator. Higher binds
// tighter; zero is not an operator.
func precedence(op TokenKind) int {
	switch op {
	case TokenPlus, TokenMinus:
		return 1
	case TokenStar, TokenSlash, TokenPercent:
		return 2
	case TokenCaret:
		return 3
	default:
		return 0
	}
}

// String formats v the way results are shown: reals in decimal, complexes as
// re+imi, functions as @fun: name, and tuples in parentheses.
func (v Val) String() string {
	var b strings.Builder
	v.fmt(&b)
	return b.String()
}

func (v Val) fmt(b *strings.Builder) {
	switch v.Kind {
	case KindReal:
		b.WriteString(formatReal(v.Re))
	case KindComplex:
		b.WriteString(formatReal(v.Re))
		if !math.Signbit(v.Im) || math.IsNaN(v.Im) {
			b.WriteByte('+')
		}
		b.WriteString(formatReal(v.Im))
		b.WriteByte('i')
	case KindFunc:
		b.WriteString("@fun: ")
		b.WriteString(v.Name)
	case KindVars:
		b.WriteByte('(')
		for i, e := range v.Vars {
			if i > 0 {
				b.WriteString(", ")
			}
			e.fmt(b)
		}
		b.WriteByte(')')
	default:
		panic("calcscript: invalid value kind " + v.Kind.String())
	}
}

// formatReal formats x in plain decimal notation unless it is very large or
// very small.
func formatReal(x float64) string {
	if a := math.Abs(x); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
