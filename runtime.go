package calcscript

import (
	"io"
	"log"
	"math"
	"math/big"
	"sort"

	"github.com/zephyrtronium/bigfloat"
)

// Runtime is the variable environment of a calculator session. Scopes form
// an arena indexed by id. Id 0 is never a valid scope and id 1 is the root.
// A Runtime is not safe for concurrent use.
type Runtime struct {
	envs    []env
	current int
	sys     *System
	log     *log.Logger
}

type env struct {
	id     int
	parent int
	vals   map[string]Val
}

// RuntimeOption is an option used when creating a Runtime.
type RuntimeOption interface {
	rtOption()
}

type (
	precopt  uint
	constopt struct {
		name string
		val  Val
	}
	logopt struct {
		l *log.Logger
	}
)

func (precopt) rtOption()  {}
func (constopt) rtOption() {}
func (logopt) rtOption()   {}

// Prec sets the precision in bits of extended-precision builtins. The
// default is 128.
func Prec(prec uint) RuntimeOption {
	return precopt(prec)
}

// Constant adds a constant to the system table. Constants are visible when
// no scope binds the name.
func Constant(name string, val Val) RuntimeOption {
	return constopt{name, val}
}

// Logger sets the logger for evaluation diagnostics. By default, nothing is
// logged.
func Logger(l *log.Logger) RuntimeOption {
	return logopt{l}
}

// discard is the default logger.
var discard = log.New(io.Discard, "", 0)

// NewRuntime creates a runtime with an empty root scope.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	prec := uint(128)
	extra := map[string]Val{}
	rt := &Runtime{log: discard}
	for _, opt := range opts {
		switch opt := opt.(type) {
		case precopt:
			if opt > 0 {
				prec = uint(opt)
			}
		case constopt:
			extra[opt.name] = opt.val
		case logopt:
			if opt.l != nil {
				rt.log = opt.l
			}
		default:
			panic("calcscript: unknown runtime option")
		}
	}
	rt.sys = newSystem(prec, extra, rt.log)
	rt.Restart()
	return rt
}

// Restart discards every scope and returns to a fresh root scope. Scope ids
// obtained before the restart are invalid afterward.
func (rt *Runtime) Restart() {
	rt.envs = []env{
		{id: 0},
		{id: 1, vals: map[string]Val{}},
	}
	rt.current = 1
}

// Valid reports whether the current scope is a valid scope.
func (rt *Runtime) Valid() bool {
	return rt.current > 0 && rt.current < len(rt.envs)
}

// Current returns the id of the current scope.
func (rt *Runtime) Current() int {
	return rt.current
}

// Push creates a child of the current scope and makes it current. It
// returns the new scope's id, or 0 if the current scope is invalid.
func (rt *Runtime) Push() int {
	if !rt.Valid() {
		return 0
	}
	id := len(rt.envs)
	rt.envs = append(rt.envs, env{id: id, parent: rt.current, vals: map[string]Val{}})
	rt.current = id
	return id
}

// Pop makes the parent of the current scope current and returns its id. At
// the root, Pop does nothing and returns 0.
func (rt *Runtime) Pop() int {
	if !rt.Valid() {
		return 0
	}
	parent := rt.envs[rt.current].parent
	if parent == 0 {
		return 0
	}
	rt.current = parent
	return parent
}

// Get resolves a name. Scopes are searched from the current one outward,
// then the system constants. Any other name resolves to a reference to the
// system function of that name, whether or not it exists.
func (rt *Runtime) Get(name string) Val {
	if v, ok := rt.Lookup(name); ok {
		return v
	}
	if v, ok := rt.sys.Constant(name); ok {
		return v
	}
	return FuncVal(name)
}

// Lookup finds the nearest binding of a name in the scope chain.
func (rt *Runtime) Lookup(name string) (Val, bool) {
	if !rt.Valid() {
		return Val{}, false
	}
	for id := rt.current; id != 0; id = rt.envs[id].parent {
		if v, ok := rt.envs[id].vals[name]; ok {
			return v, true
		}
	}
	return Val{}, false
}

// Set assigns a value to a name. If any scope in the chain already binds the
// name, the nearest binding is overwritten. Otherwise the name is bound in
// the current scope.
func (rt *Runtime) Set(name string, val Val) {
	if !rt.Valid() {
		return
	}
	for id := rt.current; id != 0; id = rt.envs[id].parent {
		if _, ok := rt.envs[id].vals[name]; ok {
			rt.envs[id].vals[name] = val
			return
		}
	}
	rt.envs[rt.current].vals[name] = val
}

// Clear removes every binding from every scope. The scopes themselves
// remain.
func (rt *Runtime) Clear() {
	for i := 1; i < len(rt.envs); i++ {
		rt.envs[i].vals = map[string]Val{}
	}
}

// ClearScope removes the bindings of the current scope only.
func (rt *Runtime) ClearScope() {
	if rt.Valid() {
		rt.envs[rt.current].vals = map[string]Val{}
	}
}

// Bindings returns a copy of every binding visible from the current scope.
// Inner bindings shadow outer ones.
func (rt *Runtime) Bindings() map[string]Val {
	m := map[string]Val{}
	if !rt.Valid() {
		return m
	}
	for id := rt.current; id != 0; id = rt.envs[id].parent {
		for k, v := range rt.envs[id].vals {
			if _, ok := m[k]; !ok {
				m[k] = v
			}
		}
	}
	return m
}

// System returns the runtime's table of builtins.
func (rt *Runtime) System() *System {
	return rt.sys
}

// System is the fixed table of builtin constants and functions.
type System struct {
	prec   uint
	consts map[string]Val
	log    *log.Logger
}

func newSystem(prec uint, extra map[string]Val, l *log.Logger) *System {
	pi := new(big.Float).SetPrec(prec)
	bigfloat.Pi(pi)
	one := new(big.Float).SetPrec(prec).SetFloat64(1)
	e := bigfloat.Exp(new(big.Float).SetPrec(prec), one)
	phi := new(big.Float).SetPrec(prec).SetFloat64(5)
	phi.Sqrt(phi).Add(phi, one).Quo(phi, big.NewFloat(2))
	tau := new(big.Float).SetPrec(prec).Mul(pi, big.NewFloat(2))

	f := func(x *big.Float) Val {
		r, _ := x.Float64()
		return RealVal(r)
	}
	s := &System{
		prec: prec,
		consts: map[string]Val{
			"pi":  f(pi),
			"e":   f(e),
			"tau": f(tau),
			"phi": f(phi),
			"inf": RealVal(math.Inf(1)),
			"nan": RealVal(math.NaN()),
		},
		log: l,
	}
	for k, v := range extra {
		s.consts[k] = v
	}
	return s
}

// Prec returns the precision in bits of extended-precision builtins.
func (s *System) Prec() uint {
	return s.prec
}

// Constant returns the value of a builtin constant.
func (s *System) Constant(name string) (Val, bool) {
	v, ok := s.consts[name]
	return v, ok
}

// Constants returns the names of the builtin constants in sorted order.
func (s *System) Constants() []string {
	r := make([]string, 0, len(s.consts))
	for k := range s.consts {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}
