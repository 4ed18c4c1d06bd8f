package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/zephyrtronium/calcscript"
	"github.com/zephyrtronium/calcscript/config"
	"github.com/zephyrtronium/calcscript/store"
	"github.com/zephyrtronium/calcscript/term"
)

const replHelp = `:quit        leave
:help        show this help
:vars        list variables
:restart     forget all variables
:tokens n    print tokens of each input at verbosity n (-1 to stop)
:tree        toggle printing syntax trees`

func repl(cfg config.Config, st store.Store, out printer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completer)

	c := calcscript.New("", cfg.Options()...)
	if st != nil {
		next, err := st.NextCmdSeq()
		if err != nil {
			return err
		}
		cmds, err := st.Cmds(0, next)
		if err != nil {
			return err
		}
		for _, cmd := range cmds {
			ln.AppendHistory(strings.ReplaceAll(cmd.Text, "\n", " "))
		}
		if cfg.Restore {
			restore(c.Runtime(), st)
		}
	}

	_, col := term.WinSize(os.Stdout)
	if col > 0 {
		out.note(strings.Repeat("-", min(col, 40)))
	}
	out.note("calcscript: type :help for commands")

	r := session{c: c, st: st, out: out, tokens: -1}
	for {
		src, err := readInput(ln, cfg.Prompt, cfg.ContPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out.w)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if !r.handle(src) {
			return nil
		}
	}
}

// session is the state of a REPL between inputs.
type session struct {
	c      *calcscript.Calculator
	st     store.Store
	out    printer
	tokens int
	tree   bool
}

// handle runs a command or evaluates an input. It returns false to quit.
func (r *session) handle(src string) bool {
	cmd := strings.Fields(src)
	if strings.HasPrefix(cmd[0], ":") {
		return r.command(cmd)
	}
	if r.tokens >= 0 {
		r.out.note(strings.TrimRight(calcscript.RenderTokens(src, r.tokens), " \n"))
	}
	r.c.Reparse(src)
	for _, d := range r.c.Diagnostics() {
		r.out.diag(d)
	}
	if r.tree {
		r.out.note(calcscript.RenderTree(r.c.Article()))
	}
	r.c.Reevaluate()
	r.out.result(r.c.RenderResult())
	record(r.st, r.c.Runtime(), src)
	return true
}

func (r *session) command(cmd []string) bool {
	switch cmd[0] {
	case ":quit", ":q":
		return false
	case ":help":
		r.out.note(replHelp)
	case ":vars":
		r.out.note(formatVars(r.c.Runtime().Bindings()))
	case ":restart":
		r.c.Runtime().Restart()
		if r.st != nil {
			vars, err := r.st.Vars()
			if err != nil {
				r.out.diag(err)
				break
			}
			for name := range vars {
				if err := r.st.DelVar(name); err != nil {
					r.out.diag(err)
				}
			}
		}
	case ":tokens":
		n := 0
		if len(cmd) > 1 {
			var err error
			n, err = strconv.Atoi(cmd[1])
			if err != nil {
				r.out.diag(fmt.Errorf("bad verbosity %q", cmd[1]))
				break
			}
		}
		r.tokens = n
	case ":tree":
		r.tree = !r.tree
	default:
		r.out.diag(fmt.Errorf("unknown command %s; type :help for commands", cmd[0]))
	}
	return true
}

// formatVars lists bindings as "name = value" lines in name order.
func formatVars(vars map[string]calcscript.Val) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(name + " = " + vars[name].String())
	}
	return b.String()
}

// readInput reads lines until the brackets in the input balance.
func readInput(ln *liner.State, prompt, cont string) (string, error) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !unbalanced(b.String()) {
			return b.String(), nil
		}
	}
}

// unbalanced reports whether src has more opening brackets than closing ones.
// Brackets in strings and comments don't count.
func unbalanced(src string) bool {
	toks, _ := calcscript.Tokenize(src)
	depth := 0
	for _, tok := range toks {
		switch tok.Kind {
		case calcscript.TokenLeftParen, calcscript.TokenLeftBrace:
			depth++
		case calcscript.TokenRightParen, calcscript.TokenRightBrace:
			depth--
		}
	}
	return depth > 0
}

// completer completes the identifier at the end of line with function and
// constant names.
func completer(line string) []string {
	start := len(line)
	for start > 0 && isIdentByte(line[start-1]) {
		start--
	}
	prefix := line[start:]
	if prefix == "" {
		return nil
	}
	var c []string
	names := append(calcscript.NewRuntime().System().Constants(), calcscript.Functions()...)
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			c = append(c, line[:start]+name)
		}
	}
	return c
}

func isIdentByte(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
