package calcscript

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	type tk struct {
		kind TokenKind
		text string
	}
	cases := []struct {
		name string
		src  string
		toks []tk
		errs int
	}{
		{"empty", "", nil, 0},
		{"blanks", " \t \r ", nil, 0},
		{"newline", " \n ", []tk{{TokenNewLine, "\n"}}, 0},
		{"two-lines", "2\n2", []tk{{TokenNumber, "2"}, {TokenNewLine, "\n"}, {TokenNumber, "2"}}, 0},
		{"ident", "x_1", []tk{{TokenIdentifier, "x_1"}}, 0},
		{"underscore", "_a", []tk{{TokenIdentifier, "_a"}}, 0},
		{"call", "sin(x)", []tk{{TokenIdentifier, "sin"}, {TokenLeftParen, "("}, {TokenIdentifier, "x"}, {TokenRightParen, ")"}}, 0},
		{"true", "true", []tk{{TokenBool, "true"}}, 0},
		{"false", "false", []tk{{TokenBool, "false"}}, 0},
		{"truex", "truex", []tk{{TokenIdentifier, "truex"}}, 0},
		{"true1", "true1", []tk{{TokenIdentifier, "true1"}}, 0},
		{"true-", "true-", []tk{{TokenBool, "true"}, {TokenMinus, "-"}}, 0},
		{"char", "'a'", []tk{{TokenChar, "'a'"}}, 0},
		{"char-escape", `'\n'`, []tk{{TokenChar, `'\n'`}}, 0},
		{"string", `"ab"`, []tk{{TokenString, `"ab"`}}, 0},
		{"string-escape", `"a\"b"`, []tk{{TokenString, `"a\"b"`}}, 0},
		{"string-unterminated", "\"ab\ncd", []tk{{TokenString, `"ab`}, {TokenNewLine, "\n"}, {TokenIdentifier, "cd"}}, 0},
		{"string-eof", `"ab`, []tk{{TokenString, `"ab`}}, 0},
		{"line-comment", "1 // c\n2", []tk{{TokenNumber, "1"}, {TokenSingleLineComment, "// c"}, {TokenNewLine, "\n"}, {TokenNumber, "2"}}, 0},
		{"block-comment", "1/* a\nb */2", []tk{{TokenNumber, "1"}, {TokenMultiLineComment, "/* a\nb */"}, {TokenNumber, "2"}}, 0},
		{"block-comment-eof", "/* a", []tk{{TokenMultiLineComment, "/* a"}}, 0},
		{"slash", "1/2", []tk{{TokenNumber, "1"}, {TokenSlash, "/"}, {TokenNumber, "2"}}, 0},
		{"ops", "+-*/%^", []tk{{TokenPlus, "+"}, {TokenMinus, "-"}, {TokenStar, "*"}, {TokenSlash, "/"}, {TokenPercent, "%"}, {TokenCaret, "^"}}, 0},
		{"two-char", "++--!===>=<=", []tk{{TokenPlusPlus, "++"}, {TokenMinusMinus, "--"}, {TokenBangEqual, "!="}, {TokenEqualEqual, "=="}, {TokenGreaterEqual, ">="}, {TokenLessEqual, "<="}}, 0},
		{"one-char", "!=<>", []tk{{TokenBangEqual, "!="}, {TokenLess, "<"}, {TokenGreater, ">"}}, 0},
		{"brackets", "{[(,.:;)]}", []tk{{TokenLeftBrace, "{"}, {TokenLeftSquare, "["}, {TokenLeftParen, "("}, {TokenComma, ","}, {TokenDot, "."}, {TokenColon, ":"}, {TokenSemicolon, ";"}, {TokenRightParen, ")"}, {TokenRightSquare, "]"}, {TokenRightBrace, "}"}}, 0},
		{"and-or", "&|", []tk{{TokenAnd, "&"}, {TokenOr, "|"}}, 0},
		{"number", "1.5e2", []tk{{TokenNumber, "1.5e2"}}, 0},
		{"number-signed-exp", "1e-2+1", []tk{{TokenNumber, "1e-2"}, {TokenPlus, "+"}, {TokenNumber, "1"}}, 0},
		{"hex-e", "0x1e+1", []tk{{TokenNumber, "0x1e"}, {TokenPlus, "+"}, {TokenNumber, "1"}}, 0},
		{"number-dot", "1.x", []tk{{TokenNumber, "1"}, {TokenDot, "."}, {TokenIdentifier, "x"}}, 0},
		{"bad-number", "1.5i32", []tk{{TokenNumber, "1.5i32"}}, 1},
		{"unknown", "1@2", []tk{{TokenNumber, "1"}, {TokenNone, "@"}, {TokenNumber, "2"}}, 1},
		{"unknown-utf8", "π", []tk{{TokenNone, "π"}}, 1},
		{"unknown-many", "@@@", []tk{{TokenNone, "@"}, {TokenNone, "@"}, {TokenNone, "@"}}, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			toks, errs := Tokenize(c.src)
			var got []tk
			for _, tok := range toks {
				got = append(got, tk{tok.Kind, tok.Lexeme})
			}
			if diff := cmp.Diff(c.toks, got, cmp.AllowUnexported(tk{})); diff != "" {
				t.Errorf("wrong tokens for %q (-want +got):\n%s", c.src, diff)
			}
			if len(errs) != c.errs {
				t.Errorf("wrong number of errors for %q: want %d, got %d (%v)", c.src, c.errs, len(errs), errs)
			}
		})
	}
}

func TestTokenizeLiterals(t *testing.T) {
	cases := []struct {
		name string
		src  string
		lit  Literal
	}{
		{"ident", "abc", Literal{Kind: LitIdent, Text: "abc"}},
		{"char", "'x'", Literal{Kind: LitChar, Char: 'x'}},
		{"char-tab", `'\t'`, Literal{Kind: LitChar, Char: '\t'}},
		{"char-quote", `'\''`, Literal{Kind: LitChar, Char: '\''}},
		{"char-unknown-escape", `'\q'`, Literal{Kind: LitChar, Char: 'q'}},
		{"string", `"a\tb\\c\"d"`, Literal{Kind: LitString, Text: "a\tb\\c\"d"}},
		{"string-unknown-escape", `"\q"`, Literal{Kind: LitString, Text: "q"}},
		{"number", "42", Literal{Kind: LitNumber, Num: 42}},
		{"hex", "0x1A", Literal{Kind: LitNumber, Num: 26}},
		{"sep", "1_000", Literal{Kind: LitNumber, Num: 1000}},
		{"bool", "false", Literal{Kind: LitBool, Bool: false}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			toks, errs := Tokenize(c.src)
			if len(errs) != 0 {
				t.Errorf("unexpected errors: %v", errs)
			}
			if len(toks) != 1 {
				t.Fatalf("want 1 token, got %v", toks)
			}
			if diff := cmp.Diff(c.lit, toks[0].Literal); diff != "" {
				t.Errorf("wrong literal (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	src := "a = 1\n  b+/* x\ny */c\r\n\t\"s\""
	toks, _ := Tokenize(src)
	want := []struct {
		line, col int
		span      Span
	}{
		{0, 0, Span{0, 1}},   // a
		{0, 2, Span{2, 3}},   // =
		{0, 4, Span{4, 5}},   // 1
		{0, 5, Span{5, 6}},   // \n
		{1, 2, Span{8, 9}},   // b
		{1, 3, Span{9, 10}},  // +
		{1, 4, Span{10, 19}}, // comment
		{2, 4, Span{19, 20}}, // c
		{2, 6, Span{21, 22}}, // \n
		{3, 1, Span{23, 26}}, // "s"
	}
	if len(toks) != len(want) {
		t.Fatalf("want %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, w := range want {
		tok := toks[i]
		if tok.Line != w.line || tok.Col != w.col || tok.Span != w.span {
			t.Errorf("token %d %v: want line %d col %d span %v, got line %d col %d span %v", i, tok, w.line, w.col, w.span, tok.Line, tok.Col, tok.Span)
		}
		if src[tok.Span.Start:tok.Span.End] != tok.Lexeme {
			t.Errorf("token %d: span %v does not cover lexeme %q", i, tok.Span, tok.Lexeme)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	_, errs := Tokenize("x 1.5i32 $")
	if len(errs) != 2 {
		t.Fatalf("want 2 errors, got %v", errs)
	}
	var lerr *LiteralError
	if !errors.As(errs[0], &lerr) {
		t.Fatalf("first error %#v is not a *LiteralError", errs[0])
	}
	if !errors.Is(lerr, ErrIntegerFraction) {
		t.Errorf("wrong reason: %v", lerr.Err)
	}
	if lerr.Range() != (Span{2, 8}) {
		t.Errorf("wrong span: %v", lerr.Range())
	}
	var xerr *LexError
	if !errors.As(errs[1], &xerr) {
		t.Fatalf("second error %#v is not a *LexError", errs[1])
	}
	if xerr.Text != "$" || xerr.Range() != (Span{9, 10}) {
		t.Errorf("wrong lex error: %+v", xerr)
	}
}

func TestTokenKindSymbol(t *testing.T) {
	cases := []struct {
		kind TokenKind
		sym  string
	}{
		{TokenPlus, "+"},
		{TokenStar, "*"},
		{TokenCaret, "^"},
		{TokenLessEqual, "<="},
		{TokenIdentifier, ""},
	}
	for _, c := range cases {
		if got := c.kind.Symbol(); got != c.sym {
			t.Errorf("%v.Symbol(): want %q, got %q", c.kind, c.sym, got)
		}
	}
}

// TestTokenizeCoverage checks that the text between tokens is only blanks.
func TestTokenizeCoverage(t *testing.T) {
	srcs := []string{
		"x = sin(2 pi) + 0x_ff\n{y; z}",
		"\t'a' \"b\" // c\n/* d */ true 1e+5 @ π",
		"",
	}
	for _, src := range srcs {
		checkCoverage(t, src)
	}
}

func checkCoverage(t *testing.T, src string) {
	t.Helper()
	toks, _ := Tokenize(src)
	off := 0
	for _, tok := range toks {
		if tok.Span.Start < off {
			t.Fatalf("%q: token %v overlaps previous", src, tok)
		}
		for i := off; i < tok.Span.Start; i++ {
			if !isBlank(src[i]) {
				t.Fatalf("%q: byte %d (%q) skipped before %v", src, i, src[i], tok)
			}
		}
		off = tok.Span.End
	}
	for i := off; i < len(src); i++ {
		if !isBlank(src[i]) {
			t.Fatalf("%q: trailing byte %d (%q) not tokenized", src, i, src[i])
		}
	}
}

func FuzzTokenize(f *testing.F) {
	f.Add("x = 1\n2 3")
	f.Add("\"a\\\"b' /* c")
	f.Add("0x1e+1i8 1.5e-3f32")
	f.Fuzz(func(t *testing.T, s string) {
		checkCoverage(t, s)
	})
}
