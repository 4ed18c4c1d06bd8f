package store_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/zephyrtronium/calcscript"
	"github.com/zephyrtronium/calcscript/store"
)

var cmds = []string{"x = 1", "x + 1", "sin(x)", "x = 2"}

func TestCmd(t *testing.T) {
	st, cleanup := store.MustGetTempStore()
	defer cleanup()

	startSeq, err := st.NextCmdSeq()
	if startSeq != 1 || err != nil {
		t.Errorf("st.NextCmdSeq() => (%v, %v), want (1, nil)", startSeq, err)
	}
	for i, cmd := range cmds {
		wantSeq := startSeq + i
		seq, err := st.AddCmd(cmd)
		if seq != wantSeq || err != nil {
			t.Errorf("st.AddCmd(%q) => (%v, %v), want (%v, nil)", cmd, seq, err, wantSeq)
		}
	}
	endSeq, err := st.NextCmdSeq()
	if endSeq != startSeq+len(cmds) || err != nil {
		t.Errorf("st.NextCmdSeq() => (%v, %v), want (%v, nil)", endSeq, err, startSeq+len(cmds))
	}

	for i, want := range cmds {
		seq := startSeq + i
		cmd, err := st.Cmd(seq)
		if cmd != want || err != nil {
			t.Errorf("st.Cmd(%v) => (%q, %v), want (%q, nil)", seq, cmd, err, want)
		}
	}
	if _, err := st.Cmd(endSeq); !errors.Is(err, store.ErrNoMatchingCmd) {
		t.Errorf("st.Cmd(%v) => %v, want ErrNoMatchingCmd", endSeq, err)
	}

	got, err := st.Cmds(startSeq+1, startSeq+3)
	want := []store.Cmd{{Text: cmds[1], Seq: startSeq + 1}, {Text: cmds[2], Seq: startSeq + 2}}
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong history range (-want +got):\n%s", diff)
	}

	prevCases := []struct {
		upto   int
		prefix string
		want   store.Cmd
		err    error
	}{
		{endSeq, "x", store.Cmd{Text: "x = 2", Seq: 4}, nil},
		{4, "x", store.Cmd{Text: "x + 1", Seq: 2}, nil},
		{100, "sin", store.Cmd{Text: "sin(x)", Seq: 3}, nil},
		{1, "", store.Cmd{}, store.ErrNoMatchingCmd},
		{endSeq, "cos", store.Cmd{}, store.ErrNoMatchingCmd},
	}
	for _, c := range prevCases {
		got, err := st.PrevCmd(c.upto, c.prefix)
		if got != c.want || !errors.Is(err, c.err) {
			t.Errorf("st.PrevCmd(%v, %q) => (%v, %v), want (%v, %v)", c.upto, c.prefix, got, err, c.want, c.err)
		}
	}

	if err := st.DelCmd(startSeq); err != nil {
		t.Errorf("st.DelCmd(%v) => %v", startSeq, err)
	}
	if _, err := st.Cmd(startSeq); !errors.Is(err, store.ErrNoMatchingCmd) {
		t.Errorf("deleted command still present: %v", err)
	}
}

func TestVar(t *testing.T) {
	st, cleanup := store.MustGetTempStore()
	defer cleanup()

	r := calcscript.RealVal
	vals := map[string]calcscript.Val{
		"real":    r(1.5),
		"inf":     r(math.Inf(-1)),
		"complex": calcscript.ComplexVal(0, -2),
		"func":    calcscript.FuncVal("sin"),
		"tuple":   calcscript.VarsVal(r(1), calcscript.VarsVal(), calcscript.VarsVal(r(2), calcscript.FuncVal("cos"))),
		"empty":   calcscript.VarsVal(),
	}
	for name, v := range vals {
		if err := st.SetVar(name, v); err != nil {
			t.Fatalf("st.SetVar(%q) => %v", name, err)
		}
	}
	for name, want := range vals {
		got, err := st.Var(name)
		if err != nil {
			t.Errorf("st.Var(%q) => %v", name, err)
			continue
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s did not round-trip (-want +got):\n%s", name, diff)
		}
	}
	all, err := st.Vars()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(vals, all, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("wrong variables (-want +got):\n%s", diff)
	}

	if _, err := st.Var("nosuch"); !errors.Is(err, store.ErrNoVar) {
		t.Errorf("st.Var(nosuch) => %v, want ErrNoVar", err)
	}
	if err := st.DelVar("real"); err != nil {
		t.Errorf("st.DelVar => %v", err)
	}
	if _, err := st.Var("real"); !errors.Is(err, store.ErrNoVar) {
		t.Errorf("deleted variable still present: %v", err)
	}
	if err := st.DelVar("nosuch"); err != nil {
		t.Errorf("deleting a missing variable => %v", err)
	}
}

func TestVarNaN(t *testing.T) {
	st, cleanup := store.MustGetTempStore()
	defer cleanup()
	if err := st.SetVar("n", calcscript.RealVal(math.NaN())); err != nil {
		t.Fatal(err)
	}
	v, err := st.Var("n")
	if err != nil || v.Kind != calcscript.KindReal || !math.IsNaN(v.Re) {
		t.Errorf("st.Var(n) => (%v, %v), want NaN", v, err)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	st.AddCmd("x = 3")
	st.SetVar("x", calcscript.RealVal(3))
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if seq, _ := st.NextCmdSeq(); seq != 2 {
		t.Errorf("sequence after reopening: got %d, want 2", seq)
	}
	if cmd, err := st.Cmd(1); cmd != "x = 3" || err != nil {
		t.Errorf("st.Cmd(1) => (%q, %v)", cmd, err)
	}
	if v, err := st.Var("x"); v.Re != 3 || err != nil {
		t.Errorf("st.Var(x) => (%v, %v)", v, err)
	}
}
