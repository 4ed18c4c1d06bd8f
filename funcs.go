package calcscript

import (
	"math"
	"math/big"
	"sort"

	"github.com/zephyrtronium/bigfloat"
)

// epsilon is the tolerance of the zero builtin.
const epsilon = 1e-9

// monadic is a builtin of one real.
type monadic func(s *System, x float64) float64

// dyadic is a builtin of two reals.
type dyadic func(s *System, x, y float64) Val

// real1 wraps a float64 function that needs nothing from the System.
func real1(f func(float64) float64) monadic {
	return func(_ *System, x float64) float64 { return f(x) }
}

// real2 wraps a binary float64 function.
func real2(f func(x, y float64) float64) dyadic {
	return func(_ *System, x, y float64) Val { return RealVal(f(x, y)) }
}

var (
	abs   = real1(math.Abs)
	neg   = real1(func(x float64) float64 { return -x })
	floor = real1(math.Floor)
	asin  = real1(math.Asin)
	acos  = real1(math.Acos)
	atan  = real1(math.Atan)
	acot  = real1(func(x float64) float64 {
		if x == 0 {
			return math.Pi / 2
		}
		return math.Atan(1 / x)
	})
	asec     = real1(func(x float64) float64 { return math.Acos(1 / x) })
	acsc     = real1(func(x float64) float64 { return math.Asin(1 / x) })
	asinh    = real1(math.Asinh)
	acosh    = real1(math.Acosh)
	atanh    = real1(math.Atanh)
	acoth    = real1(func(x float64) float64 { return math.Atanh(1 / x) })
	asech    = real1(func(x float64) float64 { return math.Acosh(1 / x) })
	acsch    = real1(func(x float64) float64 { return math.Asinh(1 / x) })
	todegree = real1(func(x float64) float64 { return x * (180 / math.Pi) })
	torad    = real1(func(x float64) float64 { return x * (math.Pi / 180) })
	sqrt     = real1(math.Sqrt)
	cbrt     = real1(math.Cbrt)
	ln       = monadic((*System).ln)
)

// unary is the table of builtins of one real, keyed by every alias.
var unary = map[string]monadic{
	"abs":      abs,
	"absolute": abs,
	"neg":      neg,
	"negative": neg,
	"round":    real1(math.Round),
	"ceil":     real1(math.Ceil),
	"floor":    floor,
	"int":      floor,

	"sin": real1(math.Sin),
	"cos": real1(math.Cos),
	"tan": real1(math.Tan),
	"cot": real1(func(x float64) float64 {
		s, c := math.Sincos(x)
		return c / s
	}),
	"sec":    real1(func(x float64) float64 { return 1 / math.Cos(x) }),
	"csc":    real1(func(x float64) float64 { return 1 / math.Sin(x) }),
	"asin":   asin,
	"arcsin": asin,
	"acos":   acos,
	"arccos": acos,
	"atan":   atan,
	"arctan": atan,
	"acot":   acot,
	"arccot": acot,
	"asec":   asec,
	"arcsec": asec,
	"acsc":   acsc,
	"arccsc": acsc,

	"sinh":    real1(math.Sinh),
	"cosh":    real1(math.Cosh),
	"tanh":    real1(math.Tanh),
	"coth":    real1(func(x float64) float64 { return 1 / math.Tanh(x) }),
	"sech":    real1(func(x float64) float64 { return 1 / math.Cosh(x) }),
	"csch":    real1(func(x float64) float64 { return 1 / math.Sinh(x) }),
	"asinh":   asinh,
	"arcsinh": asinh,
	"acosh":   acosh,
	"arccosh": acosh,
	"atanh":   atanh,
	"arctanh": atanh,
	"acoth":   acoth,
	"arccoth": acoth,
	"asech":   asech,
	"arcsech": asech,
	"acsch":   acsch,
	"arccsch": acsch,

	"raddegree": todegree,
	"todegree":  todegree,
	"degreerad": torad,
	"torad":     torad,

	"square": real1(func(x float64) float64 { return x * x }),
	"cube":   real1(func(x float64) float64 { return x * x * x }),
	"sqrt":   sqrt,
	"sqr":    sqrt,
	"cbrt":   cbrt,
	"cbr":    cbrt,

	"exp":   (*System).exp,
	"log10": func(s *System, x float64) float64 { return s.logb(10, x) },
	"log2":  func(s *System, x float64) float64 { return s.logb(2, x) },
	"loge":  ln,
	"ln":    ln,
	"log":   ln,

	"zero": func(_ *System, x float64) float64 {
		if -epsilon < x && x < epsilon {
			return 1
		}
		return 0
	},
}

var (
	add   = real2(func(x, y float64) float64 { return x + y })
	sub   = real2(func(x, y float64) float64 { return x - y })
	mul   = real2(func(x, y float64) float64 { return x * y })
	div   = real2(func(x, y float64) float64 { return x / y })
	atan2 = real2(math.Atan2)
	pow   = func(s *System, x, y float64) Val { return RealVal(s.pow(x, y)) }
	logb  = func(s *System, x, y float64) Val { return RealVal(s.logb(x, y)) }
	cplx  = func(_ *System, x, y float64) Val { return ComplexVal(x, y) }
)

// binary is the table of builtins of two reals, keyed by every alias.
var binary = map[string]dyadic{
	"add":       add,
	"plus":      add,
	"substract": sub,
	"subtract":  sub,
	"minus":     sub,
	"multiply":  mul,
	"dot":       mul,
	"devide":    div,
	"divide":    div,
	"frac":      div,
	"arctan2":   atan2,
	"atan2":     atan2,
	"arctan":    atan2,
	"atan":      atan2,
	"pow":       pow,
	"power":     pow,
	"log":       logb,
	"logarithm": logb,
	"complex":   cplx,
	"cplx":      cplx,
}

// Call invokes the builtin function name. The argument is reduced first. A
// real selects the one-argument form of the function and a tuple of two
// reals selects the two-argument form. Any other argument, or a name with no
// form for the argument, produces the empty value.
func (s *System) Call(name string, arg Val) Val {
	arg = Reduce(arg)
	switch {
	case arg.Kind == KindReal:
		if f, ok := unary[name]; ok {
			return RealVal(f(s, arg.Re))
		}
	case arg.Kind == KindVars && len(arg.Vars) == 2:
		x, y := Reduce(arg.Vars[0]), Reduce(arg.Vars[1])
		if x.Kind != KindReal || y.Kind != KindReal {
			break
		}
		if f, ok := binary[name]; ok {
			return f(s, x.Re, y.Re)
		}
	}
	s.log.Printf("no function %s for argument %v", name, arg)
	return Val{}
}

// IsFunc reports whether name is a builtin function of any arity.
func IsFunc(name string) bool {
	_, ok := unary[name]
	if !ok {
		_, ok = binary[name]
	}
	return ok
}

// Functions returns the names of all builtin functions, including aliases,
// in sorted order.
func Functions() []string {
	r := make([]string, 0, len(unary)+len(binary))
	for k := range unary {
		r = append(r, k)
	}
	for k := range binary {
		if _, ok := unary[k]; !ok {
			r = append(r, k)
		}
	}
	sort.Strings(r)
	return r
}

// big1 evaluates f in extended precision and rounds the result. ok is false
// if f panicked, which bigfloat does for arguments outside its domain.
func (s *System) big1(f func(out, in *big.Float) *big.Float, x float64) (r float64, ok bool) {
	defer func() {
		if recover() != nil {
			r, ok = 0, false
		}
	}()
	in := new(big.Float).SetPrec(s.prec).SetFloat64(x)
	out := new(big.Float).SetPrec(s.prec)
	f(out, in)
	r, _ = out.Float64()
	return r, true
}

// finite reports whether x is neither infinite nor NaN.
func finite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}

func (s *System) exp(x float64) float64 {
	r := math.Exp(x)
	// Overflow, underflow, and NaN are already exact.
	if !finite(r) || r == 0 {
		return r
	}
	if b, ok := s.big1(bigfloat.Exp, x); ok {
		return b
	}
	return r
}

func (s *System) ln(x float64) float64 {
	if x <= 0 || !finite(x) {
		return math.Log(x)
	}
	if b, ok := s.big1(bigfloat.Log, x); ok {
		return b
	}
	return math.Log(x)
}

// logb computes the logarithm of x to base b.
func (s *System) logb(b, x float64) float64 {
	if x <= 0 || b <= 0 || !finite(x) || !finite(b) {
		return math.Log(x) / math.Log(b)
	}
	r, ok := func() (r float64, ok bool) {
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		num := new(big.Float).SetPrec(s.prec).SetFloat64(x)
		den := new(big.Float).SetPrec(s.prec).SetFloat64(b)
		bigfloat.Log(num, num)
		bigfloat.Log(den, den)
		r, _ = num.Quo(num, den).Float64()
		return r, true
	}()
	if !ok {
		return math.Log(x) / math.Log(b)
	}
	return r
}

// pow computes x^y. Integral exponents and non-positive bases use math.Pow,
// which is exact where an exact result is representable.
func (s *System) pow(x, y float64) float64 {
	r := math.Pow(x, y)
	if y == math.Trunc(y) || x <= 0 || !finite(r) || r == 0 {
		return r
	}
	b, ok := func() (r float64, ok bool) {
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		bx := new(big.Float).SetPrec(s.prec).SetFloat64(x)
		by := new(big.Float).SetPrec(s.prec).SetFloat64(y)
		z := new(big.Float).SetPrec(s.prec)
		bigfloat.Pow(z, bx, by)
		r, _ = z.Float64()
		return r, true
	}()
	if !ok {
		return r
	}
	return b
}
