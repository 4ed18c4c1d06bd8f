package calcscript

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxVerbosity is the most detailed token dump level.
const MaxVerbosity = 5

// RenderTokens tokenizes input and describes each token. Verbosity selects
// the format:
//
//	0: kind
//	1: kind and lexeme
//	2: kind, position, and lexeme, one token per line
//	3: an aligned table of kind, position, span, lexeme, and literal
//	4: every token field, one token per line
//	5: a YAML document listing every token field
//
// Verbosity outside 0 to MaxVerbosity is clamped.
func RenderTokens(input string, verbosity int) string {
	if verbosity < 0 {
		verbosity = 0
	}
	if verbosity > MaxVerbosity {
		verbosity = MaxVerbosity
	}
	toks, _ := Tokenize(input)
	if verbosity == 5 {
		return dumpTokens(toks)
	}
	var b strings.Builder
	for _, tok := range toks {
		switch verbosity {
		case 0:
			fmt.Fprintf(&b, "%v ", tok.Kind)
		case 1:
			fmt.Fprintf(&b, "%v(%q) ", tok.Kind, tok.Lexeme)
		case 2:
			fmt.Fprintf(&b, "%v[%d, %d](%q)\n", tok.Kind, tok.Line, tok.Col, tok.Lexeme)
		case 3:
			lit := "None"
			if tok.Literal.Kind != LitNone {
				lit = literalText(tok.Literal, true)
			}
			fmt.Fprintf(&b, "Type:%-20v\t<Line, Column>[%d, %d] \t<Start, End>[%d, %d] \tContent(%q) \tLiteral(%s)\n",
				tok.Kind, tok.Line, tok.Col, tok.Span.Start, tok.Span.End, tok.Lexeme, lit)
		case 4:
			fmt.Fprintf(&b, "%+v\n", tokenFields(tok))
		}
	}
	return b.String()
}

// tokenFields formats as a struct rather than through Token.String.
type tokenFields Token

// tokenDump is the YAML form of a token.
type tokenDump struct {
	Kind    string `yaml:"kind"`
	Lexeme  string `yaml:"lexeme"`
	Literal string `yaml:"literal,omitempty"`
	Line    int    `yaml:"line"`
	Col     int    `yaml:"col"`
	Span    []int  `yaml:"span,flow"`
}

func dumpTokens(toks []Token) string {
	d := make([]tokenDump, len(toks))
	for i, tok := range toks {
		d[i] = tokenDump{
			Kind:   tok.Kind.String(),
			Lexeme: tok.Lexeme,
			Line:   tok.Line,
			Col:    tok.Col,
			Span:   []int{tok.Span.Start, tok.Span.End},
		}
		if tok.Literal.Kind != LitNone {
			d[i].Literal = literalText(tok.Literal, true)
		}
	}
	b, err := yaml.Marshal(d)
	if err != nil {
		// Only strings and ints are marshaled.
		panic(err)
	}
	return string(b)
}

// literalText formats a literal. If decorate is true, identifiers are
// wrapped in angle brackets. Chars and strings are always quoted.
func literalText(l Literal, decorate bool) string {
	switch l.Kind {
	case LitIdent:
		if decorate {
			return "<" + l.Text + ">"
		}
		return l.Text
	case LitChar:
		return "'" + string(l.Char) + "'"
	case LitString:
		return `"` + l.Text + `"`
	default:
		return l.String()
	}
}

// ParseAndRender parses input and renders it twice: as normalized statement
// text, one sentence per line, and as an indented syntax tree. If tagged is
// true, both are marked up with HTML spans for syntax highlighting.
func ParseAndRender(input string, tagged bool) (text, tree string) {
	a, _ := Parse(input)
	r := renderer{tagged: tagged}
	var t strings.Builder
	r.article(&t, a)
	return t.String(), r.articleTree(a, 0)
}

// RenderHTML renders the highlighted statement text of input followed by its
// highlighted syntax tree.
func RenderHTML(input string) string {
	text, tree := ParseAndRender(input, true)
	return text + "\n<span class='tree_syntax'>" + tree + "</span>"
}

// RenderTree renders the syntax tree of an article without markup.
func RenderTree(a *Article) string {
	r := renderer{}
	return r.articleTree(a, 0)
}

type renderer struct {
	tagged bool
}

// span wraps s in a span of the given class if r is tagged.
func (r renderer) span(class, s string) string {
	if !r.tagged {
		return s
	}
	return "<span class='" + class + "'>" + s + "</span>"
}

// esc escapes text from the source if r is tagged.
func (r renderer) esc(s string) string {
	if !r.tagged {
		return s
	}
	return html.EscapeString(s)
}

func (r renderer) article(b *strings.Builder, a *Article) {
	var t strings.Builder
	for i := range a.Sentences {
		r.sentence(&t, &a.Sentences[i])
	}
	b.WriteString(r.span("syntax_article", t.String()))
}

func (r renderer) sentence(b *strings.Builder, s *Sentence) {
	switch s.Kind {
	case SentenceAssign:
		b.WriteString(r.span("syntax_assign", r.esc(s.Name)+" = "+r.expression(s.Expr)))
		b.WriteByte('\n')
	case SentenceExpr:
		b.WriteString(r.expression(s.Expr))
		b.WriteByte('\n')
	case SentenceSeparator:
		b.WriteString(r.span("syntax_separator", ";"))
		b.WriteByte('\n')
	case SentenceBlock:
		var t strings.Builder
		t.WriteString("{\n")
		for i := range s.Block {
			r.sentence(&t, &s.Block[i])
		}
		t.WriteString("}\n")
		b.WriteString(r.span("syntax_codeblock", t.String()))
		if r.tagged {
			b.WriteByte('\n')
		}
	}
}

func (r renderer) expression(e *Expression) string {
	var b strings.Builder
	b.WriteString(r.unit(&e.First))
	for i := range e.Rest {
		op := &e.Rest[i]
		b.WriteByte(' ')
		b.WriteString(r.span("syntax_operator", r.esc(op.Op.Symbol())))
		b.WriteByte(' ')
		b.WriteString(r.unit(&op.Unit))
	}
	return r.span("syntax_expression", b.String())
}

func (r renderer) literal(l Literal) string {
	s := r.esc(literalText(l, false))
	switch l.Kind {
	case LitIdent:
		return r.span("syntax_identifier", s)
	case LitChar:
		return r.span("syntax_char", s)
	case LitString:
		return r.span("syntax_string", s)
	case LitNumber:
		return r.span("syntax_number", s)
	case LitBool:
		return r.span("syntax_bool", s)
	default:
		return s
	}
}

func (r renderer) unit(u *CalcUnit) string {
	var s string
	switch u.Kind {
	case UnitLiteral, UnitNegLiteral:
		s = r.literal(u.Lit)
	case UnitIdent, UnitNegIdent:
		s = r.span("syntax_identifier", r.esc(u.Name))
	case UnitCall, UnitNegCall:
		s = r.span("syntax_fun", r.esc(u.Name)+r.tuple(u.Args))
	case UnitTuple, UnitNegTuple:
		s = r.tuple(u.Args)
	}
	if u.Kind.Negated() {
		s = r.span("syntax_neg", "-"+s)
	}
	return s
}

func (r renderer) tuple(t *Tuple) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := range t.Exprs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.expression(&t.Exprs[i]))
	}
	b.WriteByte(')')
	return r.span("syntax_tuple", b.String())
}

// treeIndent is the prefix for each level of nesting in tree dumps.
const treeIndent = "|   "

// node formats a leaf name in a tree dump.
func (r renderer) node(name string) string {
	return r.span("tree_syntax_node", r.esc(name))
}

func (r renderer) articleTree(a *Article, level int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "+Article Sentences %d", len(a.Sentences))
	for i := range a.Sentences {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(treeIndent, level))
		b.WriteString("+---")
		b.WriteString(r.sentenceTree(&a.Sentences[i], level+1))
	}
	return b.String()
}

func (r renderer) sentenceTree(s *Sentence, level int) string {
	switch s.Kind {
	case SentenceAssign:
		return "+Assign " + r.node(s.Name) + " " + r.expressionTree(s.Expr, level+1)
	case SentenceExpr:
		return r.expressionTree(s.Expr, level)
	case SentenceSeparator:
		return r.node(" ;")
	case SentenceBlock:
		var b strings.Builder
		b.WriteString("+CodeBlock")
		for i := range s.Block {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(treeIndent, level))
			b.WriteString("|---")
			b.WriteString(r.sentenceTree(&s.Block[i], level+1))
		}
		return b.String()
	default:
		return ""
	}
}

func (r renderer) expressionTree(e *Expression, level int) string {
	var b strings.Builder
	indent := strings.Repeat(treeIndent, level)
	fmt.Fprintf(&b, "+Expression: %d\n", len(e.Rest))
	b.WriteString(indent + "+---" + r.unitTree(&e.First, level+1))
	for i := range e.Rest {
		op := &e.Rest[i]
		b.WriteString("\n" + indent + "| Operator " + r.node(op.Op.Symbol()))
		b.WriteString("\n" + indent + "+---" + r.unitTree(&op.Unit, level+1))
	}
	return b.String()
}

func (r renderer) unitTree(u *CalcUnit, level int) string {
	switch u.Kind {
	case UnitLiteral:
		return " Literal " + r.node(literalText(u.Lit, true))
	case UnitNegLiteral:
		return " Literal Minus " + r.node(literalText(u.Lit, true))
	case UnitIdent:
		return " Identifier " + r.node(u.Name)
	case UnitNegIdent:
		return " Identifier Minus " + r.node(u.Name)
	case UnitCall, UnitNegCall:
		head := "+Function "
		if u.Kind == UnitNegCall {
			head = "+Function Minus "
		}
		return head + r.node(u.Name) + "\n" + strings.Repeat(treeIndent, level) + "+---" + r.tupleTree(u.Args, level+1, "")
	case UnitTuple:
		return r.tupleTree(u.Args, level, "")
	case UnitNegTuple:
		return r.tupleTree(u.Args, level, " Minus")
	default:
		return ""
	}
}

func (r renderer) tupleTree(t *Tuple, level int, label string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "+Tuple%s: %d", label, len(t.Exprs))
	for i := range t.Exprs {
		b.WriteString("\n" + strings.Repeat(treeIndent, level) + "+---" + r.expressionTree(&t.Exprs[i], level+1))
	}
	return b.String()
}
