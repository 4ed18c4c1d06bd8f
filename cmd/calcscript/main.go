package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/zephyrtronium/calcscript"
	"github.com/zephyrtronium/calcscript/config"
	"github.com/zephyrtronium/calcscript/lsp"
	"github.com/zephyrtronium/calcscript/store"
	"github.com/zephyrtronium/calcscript/term"
)

func main() {
	log.SetFlags(0)
	var (
		cfgname, dbname, inname string
		tokens, prec            int
		tree, html, serve       bool
	)
	flag.StringVar(&cfgname, "config", "", "configuration file, YAML or TOML (default calcscript/config.yaml in the user config dir, if present)")
	flag.StringVar(&dbname, "db", "", "session database for history and variables (overrides config)")
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.IntVar(&tokens, "tokens", -1, "print tokens at verbosity 0 to 5")
	flag.IntVar(&prec, "p", 0, "precision of extended calculations in bits (overrides config)")
	flag.BoolVar(&tree, "tree", false, "print syntax trees")
	flag.BoolVar(&html, "html", false, "print highlighted HTML instead of evaluating")
	flag.BoolVar(&serve, "lsp", false, "run the language server on stdin and stdout")
	flag.Parse()
	if prec < 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}

	cfg, err := loadConfig(cfgname)
	if err != nil {
		log.Fatal(err)
	}
	if dbname != "" {
		cfg.DB = dbname
	}
	if prec > 0 {
		cfg.Precision = uint(prec)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if serve {
		if err := lsp.Serve(ctx, os.Stdin, os.Stdout, cfg.Options()...); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal(err)
		}
		return
	}

	var st store.Store
	if cfg.DB != "" {
		st, err = store.Open(cfg.DB)
		if err != nil {
			log.Fatal(err)
		}
		defer st.Close()
	}

	out := printer{w: os.Stdout, color: term.UseColor(cfg.Color, os.Stdout)}
	if inname == "" && flag.NArg() == 0 && term.IsATTY(os.Stdin.Fd()) {
		stop()
		if err := repl(cfg, st, out); err != nil {
			log.Fatal(err)
		}
		return
	}

	ins, err := inputs(inname, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
	opts := append(cfg.Options(), calcscript.Logger(log.Default()))
	c := calcscript.New("", opts...)
	if cfg.Restore {
		restore(c.Runtime(), st)
	}
	for _, src := range ins {
		switch {
		case html:
			fmt.Println(calcscript.RenderHTML(src))
			continue
		case tokens >= 0:
			fmt.Println(calcscript.RenderTokens(src, tokens))
		}
		c.Reparse(src)
		if tree {
			fmt.Println(calcscript.RenderTree(c.Article()))
		}
		c.Reevaluate()
		out.result(c.RenderResult())
		record(st, c.Runtime(), src)
	}
}

// loadConfig loads the named configuration file. With no name, it loads the
// default file if one exists and otherwise uses the defaults.
func loadConfig(name string) (config.Config, error) {
	if name != "" {
		return config.Load(name)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return config.Default(), nil
	}
	cfg, err := config.Load(filepath.Join(dir, "calcscript", "config.yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// inputs collects the programs to evaluate: the input file, if any, then each
// argument. With neither, stdin is the only program.
func inputs(inname string, args []string) ([]string, error) {
	var srcs []string
	var r io.Reader
	switch {
	case inname != "" && inname != "-":
		f, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	case inname == "-", len(args) == 0:
		r = os.Stdin
	}
	if r != nil {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		srcs = append(srcs, string(b))
	}
	return append(srcs, args...), nil
}

// restore binds the variables saved in st.
func restore(rt *calcscript.Runtime, st store.Store) {
	if st == nil {
		return
	}
	vars, err := st.Vars()
	if err != nil {
		log.Print(err)
		return
	}
	for name, v := range vars {
		rt.Set(name, v)
	}
}

// record saves an input and the current bindings to st.
func record(st store.Store, rt *calcscript.Runtime, src string) {
	if st == nil || strings.TrimSpace(src) == "" {
		return
	}
	if _, err := st.AddCmd(src); err != nil {
		log.Print(err)
	}
	for name, v := range rt.Bindings() {
		if err := st.SetVar(name, v); err != nil {
			log.Print(err)
		}
	}
}

// printer writes results, optionally in colour.
type printer struct {
	w     io.Writer
	color bool
}

func (p printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (p printer) result(s string) {
	if s == "" {
		return
	}
	fmt.Fprintln(p.w, p.paint("32", s))
}

func (p printer) diag(err error) {
	fmt.Fprintln(p.w, p.paint("31", err.Error()))
}

func (p printer) note(s string) {
	fmt.Fprintln(p.w, p.paint("94", s))
}
