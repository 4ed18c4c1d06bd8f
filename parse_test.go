package calcscript

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func num(x float64) CalcUnit {
	return CalcUnit{Kind: UnitLiteral, Lit: Literal{Kind: LitNumber, Num: x}}
}

func negnum(x float64) CalcUnit {
	return CalcUnit{Kind: UnitNegLiteral, Lit: Literal{Kind: LitNumber, Num: x}}
}

func ident(name string) CalcUnit {
	return CalcUnit{Kind: UnitIdent, Name: name}
}

func call(name string, args ...Expression) CalcUnit {
	return CalcUnit{Kind: UnitCall, Name: name, Args: &Tuple{Exprs: args}}
}

func tuple(args ...Expression) CalcUnit {
	return CalcUnit{Kind: UnitTuple, Args: &Tuple{Exprs: args}}
}

func expr(first CalcUnit, rest ...Operation) Expression {
	return Expression{First: first, Rest: rest}
}

func op(k TokenKind, u CalcUnit) Operation {
	return Operation{Op: k, Unit: u}
}

func exprs(es ...Expression) *Article {
	a := &Article{}
	for i := range es {
		a.Sentences = append(a.Sentences, Sentence{Kind: SentenceExpr, Expr: &es[i]})
	}
	return a
}

var ignoreSpans = cmpopts.IgnoreFields(Sentence{}, "Span")

func TestParse(t *testing.T) {
	x5, x, one := expr(num(5)), expr(ident("x")), expr(num(1))
	cases := []struct {
		name string
		src  string
		want *Article
	}{
		{"empty", "", &Article{}},
		{"blank", " \n // c\n", &Article{}},
		{"number", "1", exprs(expr(num(1)))},
		{"add", "1+2", exprs(expr(num(1), op(TokenPlus, num(2))))},
		{"chain", "1+2*3-4", exprs(expr(num(1), op(TokenPlus, num(2)), op(TokenStar, num(3)), op(TokenMinus, num(4))))},
		{"implicit", "2 3", exprs(expr(num(2), op(TokenStar, num(3))))},
		{"implicit-ident", "2 x y", exprs(expr(num(2), op(TokenStar, ident("x")), op(TokenStar, ident("y"))))},
		{"newline", "2\n2", exprs(expr(num(2)), expr(num(2)))},
		{"newline-op", "2\n+2", exprs(expr(num(2), op(TokenPlus, num(2))))},
		{"newline-after-op", "2+\n2", exprs(expr(num(2), op(TokenPlus, num(2))))},
		{"newline-minus", "2\n-2", exprs(expr(num(2), op(TokenMinus, num(2))))},
		{"comment", "2 /* x */ 3", exprs(expr(num(2), op(TokenStar, num(3))))},
		{"line-comment", "2 // x\n3", exprs(expr(num(2)), expr(num(3)))},
		{"neg", "-2", exprs(expr(negnum(2)))},
		{"plus", "+2", exprs(expr(num(2)))},
		{"neg-ident", "-x", exprs(expr(CalcUnit{Kind: UnitNegIdent, Name: "x"}))},
		{"neg-operand", "2*-3", exprs(expr(num(2), op(TokenStar, negnum(3))))},
		{"minus", "2 -3", exprs(expr(num(2), op(TokenMinus, num(3))))},
		{"call", "sin(x)", exprs(expr(call("sin", expr(ident("x")))))},
		{"call-args", "pow(2, 10)", exprs(expr(call("pow", expr(num(2)), expr(num(10)))))},
		{"call-empty", "f()", exprs(expr(call("f")))},
		{"not-call", "sin (x)", exprs(expr(ident("sin"), op(TokenStar, tuple(expr(ident("x"))))))},
		{"neg-call", "-sin(0)", exprs(expr(CalcUnit{Kind: UnitNegCall, Name: "sin", Args: &Tuple{Exprs: []Expression{expr(num(0))}}}))},
		{"group", "(5)", exprs(expr(tuple(expr(num(5)))))},
		{"pair", "(1,2)", exprs(expr(tuple(expr(num(1)), expr(num(2)))))},
		{"unit", "()", exprs(expr(tuple()))},
		{"neg-group", "-(1+2)", exprs(expr(CalcUnit{Kind: UnitNegTuple, Args: &Tuple{Exprs: []Expression{expr(num(1), op(TokenPlus, num(2)))}}}))},
		{"tuple-newline", "(1,\n2)", exprs(expr(tuple(expr(num(1)), expr(num(2)))))},
		{"pow", "2^3", exprs(expr(num(2), op(TokenCaret, num(3))))},
		{"string", `"a" 'b' true`, exprs(expr(
			CalcUnit{Kind: UnitLiteral, Lit: Literal{Kind: LitString, Text: "a"}},
			op(TokenStar, CalcUnit{Kind: UnitLiteral, Lit: Literal{Kind: LitChar, Char: 'b'}}),
			op(TokenStar, CalcUnit{Kind: UnitLiteral, Lit: Literal{Kind: LitBool, Bool: true}}),
		))},
		{"assign", "x = 5", &Article{Sentences: []Sentence{{Kind: SentenceAssign, Name: "x", Expr: &x5}}}},
		{"assign-sep", "x=5;x", &Article{Sentences: []Sentence{
			{Kind: SentenceAssign, Name: "x", Expr: &x5},
			{Kind: SentenceSeparator},
			{Kind: SentenceExpr, Expr: &x},
		}}},
		{"block", "{x; 1}", &Article{Sentences: []Sentence{{Kind: SentenceBlock, Block: []Sentence{
			{Kind: SentenceExpr, Expr: &x},
			{Kind: SentenceSeparator},
			{Kind: SentenceExpr, Expr: &one},
		}}}}},
		{"empty-block", "{}", &Article{Sentences: []Sentence{{Kind: SentenceBlock}}}},
		{"nested-block", "{{}}", &Article{Sentences: []Sentence{{Kind: SentenceBlock, Block: []Sentence{{Kind: SentenceBlock}}}}}},
		{"separators", ";;", &Article{Sentences: []Sentence{{Kind: SentenceSeparator}, {Kind: SentenceSeparator}}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, errs := Parse(c.src)
			if len(errs) != 0 {
				t.Errorf("unexpected errors: %v", errs)
			}
			if diff := cmp.Diff(c.want, got, ignoreSpans, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("wrong article for %q (-want +got):\n%s", c.src, diff)
			}
		})
	}
}

func TestParseUnparsed(t *testing.T) {
	cases := []struct {
		name string
		src  string
		same string
		text string
	}{
		{"trailing", "1+2 @@@", "1+2", "@@@"},
		{"close", "1)", "1", ")"},
		{"dangling", "1+", "1", "+"},
		{"unclosed-block", "{1", "", "{1"},
		{"bad-call", "f(1,)", "", "f(1,)"},
		{"bad-tuple", "x; (1 2", "x;", "(1 2"},
		{"after-newline", "1\n= 2\n", "1", "= 2"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, errs := Parse(c.src)
			want, _ := Parse(c.same)
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("wrong article for %q (-want +got):\n%s", c.src, diff)
			}
			if len(errs) == 0 {
				t.Fatal("no errors")
			}
			var uerr *UnparsedError
			if !errors.As(errs[len(errs)-1], &uerr) {
				t.Fatalf("last error %#v is not an *UnparsedError", errs[len(errs)-1])
			}
			if uerr.Text != c.text {
				t.Errorf("wrong unparsed text: want %q, got %q", c.text, uerr.Text)
			}
			if r := uerr.Range(); c.src[r.Start:r.End] != c.text {
				t.Errorf("unparsed range %v covers %q, want %q", r, c.src[r.Start:r.End], c.text)
			}
		})
	}
}

func TestParseTokensUnparsed(t *testing.T) {
	toks, _ := Tokenize("1 )(")
	_, errs := ParseTokens(toks)
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %v", errs)
	}
	if got := errs[0].(*UnparsedError).Text; got != ")(" {
		t.Errorf("wrong text: %q", got)
	}
}

func TestParseSpans(t *testing.T) {
	a, _ := Parse("x = 1 + 2\n  y;\n{ z }  ")
	want := []Span{{0, 9}, {12, 13}, {13, 14}, {15, 20}}
	var got []Span
	for _, s := range a.Sentences {
		got = append(got, s.Span)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong spans (-want +got):\n%s", diff)
	}
}

func FuzzParse(f *testing.F) {
	f.Add("x = 1\n2 3")
	f.Add("{sin(x); -(1, 2)}")
	f.Add("f(1,")
	f.Fuzz(func(t *testing.T, s string) {
		a, _ := Parse(s)
		// Rendering walks every node.
		RenderTree(a)
	})
}
