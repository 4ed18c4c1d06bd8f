package calcscript

import (
	"io"
	"strings"
)

// Eval evaluates each sentence of the article in order. The result is a
// tuple holding one value per sentence. It is not reduced, so a single
// sentence still produces a one-element tuple.
func (a *Article) Eval(rt *Runtime) Val {
	vs := make([]Val, len(a.Sentences))
	for i := range a.Sentences {
		vs[i] = a.Sentences[i].eval(rt)
	}
	return VarsVal(vs...)
}

func (s *Sentence) eval(rt *Runtime) Val {
	switch s.Kind {
	case SentenceExpr:
		return s.Expr.Eval(rt)
	case SentenceAssign:
		rt.Set(s.Name, s.Expr.Eval(rt))
		return Val{}
	case SentenceSeparator:
		return Val{}
	case SentenceBlock:
		// Blocks group sentences but share the enclosing scope.
		vs := make([]Val, len(s.Block))
		for i := range s.Block {
			vs[i] = s.Block[i].eval(rt)
		}
		return VarsVal(vs...)
	default:
		panic("calcscript: invalid sentence kind " + s.Kind.String())
	}
}

// Eval evaluates the expression. Operators of higher precedence are applied
// first, and operators of equal precedence apply left to right.
func (e *Expression) Eval(rt *Runtime) Val {
	vals := []Val{e.First.eval(rt)}
	var ops []TokenKind
	apply := func() {
		n := len(vals)
		vals[n-2] = Reduce(Calc(vals[n-2], vals[n-1], ops[len(ops)-1]))
		vals = vals[:n-1]
		ops = ops[:len(ops)-1]
	}
	for _, op := range e.Rest {
		for len(ops) > 0 && precedence(ops[len(ops)-1]) >= precedence(op.Op) {
			apply()
		}
		vals = append(vals, op.Unit.eval(rt))
		ops = append(ops, op.Op)
	}
	for len(ops) > 0 {
		apply()
	}
	return Reduce(vals[0])
}

// eval evaluates a unit. The result is always reduced.
func (u *CalcUnit) eval(rt *Runtime) Val {
	var v Val
	switch u.Kind {
	case UnitLiteral, UnitNegLiteral:
		if u.Lit.Kind == LitNumber {
			v = RealVal(u.Lit.Num)
		}
	case UnitIdent, UnitNegIdent:
		v = Reduce(rt.Get(u.Name))
	case UnitCall, UnitNegCall:
		fn := Reduce(rt.Get(u.Name))
		args := Reduce(u.Args.eval(rt))
		if fn.Kind == KindFunc {
			v = rt.sys.Call(fn.Name, args)
		}
	case UnitTuple, UnitNegTuple:
		v = Reduce(u.Args.eval(rt))
	default:
		panic("calcscript: invalid unit kind")
	}
	if u.Kind.Negated() {
		v = Neg(v)
	}
	return v
}

// eval evaluates each element of the tuple.
func (t *Tuple) eval(rt *Runtime) Val {
	vs := make([]Val, len(t.Exprs))
	for i := range t.Exprs {
		vs[i] = t.Exprs[i].Eval(rt)
	}
	return VarsVal(vs...)
}

// Eval reads, parses, and evaluates a complete program in a new Runtime.
// The result is reduced. The returned errors are diagnostics from parsing; a
// non-nil error is a failure to read r.
func Eval(r io.Reader, opts ...RuntimeOption) (Val, []InputError, error) {
	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return Val{}, nil, err
	}
	v, diags := EvalString(b.String(), opts...)
	return v, diags, nil
}

// EvalString parses and evaluates src in a new Runtime. The result is
// reduced.
func EvalString(src string, opts ...RuntimeOption) (Val, []InputError) {
	a, diags := Parse(src)
	rt := NewRuntime(opts...)
	for _, d := range diags {
		rt.log.Print(d)
	}
	return Reduce(a.Eval(rt)), diags
}
