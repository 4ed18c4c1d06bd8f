package calcscript

import "strings"

// Parse tokenizes and parses src. Parse never fails; the returned errors
// describe malformed literals, unrecognized characters, and trailing input
// that could not be parsed and was dropped from the Article.
func Parse(src string) (*Article, []InputError) {
	toks, errs := Tokenize(src)
	p := parser{src: src, toks: toks}
	a := p.article()
	return a, append(errs, p.errs...)
}

// ParseTokens parses a token sequence as produced by Tokenize.
func ParseTokens(toks []Token) (*Article, []InputError) {
	p := parser{toks: toks}
	a := p.article()
	return a, p.errs
}

type parser struct {
	// src is the source text, if known. It is used only for diagnostics.
	src  string
	toks []Token
	errs []InputError
}

// kind returns the kind of the token at i, or TokenEOF past the end.
func (p *parser) kind(i int) TokenKind {
	if i < len(p.toks) {
		return p.toks[i].Kind
	}
	return TokenEOF
}

// skip returns the index of the first token at or after i that is not a
// newline or comment.
func (p *parser) skip(i int) int {
	for i < len(p.toks) && p.toks[i].skipped() {
		i++
	}
	return i
}

// span returns the source range from the token at from through the last
// significant token before to.
func (p *parser) span(from, to int) Span {
	if from >= len(p.toks) {
		return Span{}
	}
	last := to - 1
	for last > from && p.toks[last].skipped() {
		last--
	}
	return Span{p.toks[from].Span.Start, p.toks[last].Span.End}
}

func (p *parser) article() *Article {
	a := &Article{}
	i := 0
	for {
		s, next, ok := p.sentence(i)
		if !ok {
			break
		}
		a.Sentences = append(a.Sentences, s)
		i = next
	}
	i = p.skip(i)
	if i < len(p.toks) {
		sp := p.span(i, len(p.toks))
		var text string
		if p.src != "" {
			text = p.src[sp.Start:sp.End]
		} else {
			var b strings.Builder
			for _, tok := range p.toks[i:] {
				b.WriteString(tok.Lexeme)
			}
			text = strings.TrimSpace(b.String())
		}
		p.errs = append(p.errs, &UnparsedError{Span: sp, Text: text})
	}
	return a
}

func (p *parser) sentence(at int) (Sentence, int, bool) {
	i := p.skip(at)
	switch p.kind(i) {
	case TokenSemicolon:
		return Sentence{Kind: SentenceSeparator, Span: p.toks[i].Span}, i + 1, true
	case TokenLeftBrace:
		var block []Sentence
		j := i + 1
		for {
			s, next, ok := p.sentence(j)
			if !ok {
				break
			}
			block = append(block, s)
			j = next
		}
		j = p.skip(j)
		if p.kind(j) != TokenRightBrace {
			return Sentence{}, at, false
		}
		return Sentence{Kind: SentenceBlock, Block: block, Span: p.span(i, j+1)}, j + 1, true
	}
	if s, next, ok := p.assignment(i); ok {
		return s, next, true
	}
	e, next, ok := p.expression(i)
	if !ok {
		return Sentence{}, at, false
	}
	return Sentence{Kind: SentenceExpr, Expr: &e, Span: p.span(i, next)}, next, true
}

func (p *parser) assignment(at int) (Sentence, int, bool) {
	i := p.skip(at)
	if p.kind(i) != TokenIdentifier {
		return Sentence{}, at, false
	}
	j := p.skip(i + 1)
	if p.kind(j) != TokenEqual {
		return Sentence{}, at, false
	}
	e, next, ok := p.expression(j + 1)
	if !ok {
		return Sentence{}, at, false
	}
	s := Sentence{
		Kind: SentenceAssign,
		Name: p.toks[i].Literal.Text,
		Expr: &e,
		Span: p.span(i, next),
	}
	return s, next, true
}

// isCalcOp reports whether k is a binary operator in expressions.
func isCalcOp(k TokenKind) bool {
	return precedence(k) != 0
}

// expression parses a chain of units. States:
//
//	0: expecting the first unit
//	1: after a unit; an operator, a unit (implicit multiplication), or a
//	   newline may follow
//	2: after an operator, expecting a unit
//	3: after a newline following a unit; only an operator continues
func (p *parser) expression(at int) (Expression, int, bool) {
	var e Expression
	state := 0
	op := TokenStar
	// end is the index following the last unit.
	end := at
	i := at
	for {
		k := p.kind(i)
		switch {
		case k == TokenEOF:
			if state == 0 {
				return Expression{}, at, false
			}
			return e, end, true
		case k == TokenNewLine && state == 1:
			state = 3
			i++
			continue
		case p.toks[i].skipped():
			i++
			continue
		case isCalcOp(k) && (state == 1 || state == 3):
			op = k
			state = 2
			i++
			continue
		case state == 3:
			return e, end, true
		}
		u, next, ok := p.unit(i)
		if !ok {
			if state == 1 {
				return e, end, true
			}
			return Expression{}, at, false
		}
		if state == 0 {
			e.First = u
		} else {
			e.Rest = append(e.Rest, Operation{Op: op, Unit: u})
		}
		op = TokenStar
		state = 1
		end = next
		i = next
	}
}

func (p *parser) unit(at int) (CalcUnit, int, bool) {
	i := p.skip(at)
	neg := false
	switch p.kind(i) {
	case TokenMinus:
		neg = true
		i = p.skip(i + 1)
	case TokenPlus:
		i = p.skip(i + 1)
	}
	if i >= len(p.toks) {
		return CalcUnit{}, at, false
	}
	tok := p.toks[i]
	var u CalcUnit
	next := i + 1
	switch {
	case tok.literal():
		u = CalcUnit{Kind: UnitLiteral, Lit: tok.Literal}
	case tok.Kind == TokenIdentifier:
		u = CalcUnit{Kind: UnitIdent, Name: tok.Literal.Text}
		// A call's argument list must touch the name.
		if p.kind(next) == TokenLeftParen && p.toks[next].Span.Start == tok.Span.End {
			args, j, ok := p.tuple(next)
			if !ok {
				return CalcUnit{}, at, false
			}
			u = CalcUnit{Kind: UnitCall, Name: tok.Literal.Text, Args: args}
			next = j
		}
	case tok.Kind == TokenLeftParen:
		args, j, ok := p.tuple(i)
		if !ok {
			return CalcUnit{}, at, false
		}
		u = CalcUnit{Kind: UnitTuple, Args: args}
		next = j
	default:
		return CalcUnit{}, at, false
	}
	if neg {
		// The negated variant of each kind immediately follows it.
		u.Kind++
	}
	return u, next, true
}

func (p *parser) tuple(at int) (*Tuple, int, bool) {
	if p.kind(at) != TokenLeftParen {
		return nil, at, false
	}
	t := &Tuple{}
	// 1: after '(', 2: after an expression, 3: after ','
	state := 1
	i := at + 1
	for {
		i = p.skip(i)
		k := p.kind(i)
		switch {
		case k == TokenRightParen && state != 3:
			return t, i + 1, true
		case k == TokenComma && state == 2:
			state = 3
			i++
		case state != 2:
			e, next, ok := p.expression(i)
			if !ok {
				return nil, at, false
			}
			t.Exprs = append(t.Exprs, e)
			state = 2
			i = next
		default:
			return nil, at, false
		}
	}
}
