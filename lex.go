package calcscript

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Span is a half-open range [Start, End) of byte offsets into source text.
type Span struct {
	Start, End int
}

// Contains reports whether the offset i lies within s.
func (s Span) Contains(i int) bool {
	return s.Start <= i && i < s.End
}

// TokenKind is the type of a token.
type TokenKind int8

const (
	// TokenNone is an unrecognized character. Parsers treat it as a token
	// that matches nothing.
	TokenNone TokenKind = iota

	TokenLeftParen
	TokenRightParen
	TokenLeftBrace
	TokenRightBrace
	TokenLeftSquare
	TokenRightSquare
	TokenComma
	TokenDot
	TokenColon
	TokenCaret
	TokenSemicolon
	TokenSlash
	TokenPercent
	TokenStar
	TokenAnd
	TokenOr

	TokenBang
	TokenBangEqual
	TokenEqual
	TokenEqualEqual
	TokenGreater
	TokenGreaterEqual
	TokenLess
	TokenLessEqual
	TokenMinus
	TokenMinusMinus
	TokenPlus
	TokenPlusPlus

	TokenIdentifier
	TokenChar
	TokenString
	TokenNumber
	TokenBool

	// TokenWhitespace is never produced by Tokenize; blanks are skipped.
	TokenWhitespace
	TokenNewLine
	TokenMultiLineComment
	TokenSingleLineComment

	// TokenEOF ends the input. It is not included in Tokenize's result.
	TokenEOF
)

var tokenNames = [...]string{
	TokenNone:              "None",
	TokenLeftParen:         "LeftParen",
	TokenRightParen:        "RightParen",
	TokenLeftBrace:         "LeftBrace",
	TokenRightBrace:        "RightBrace",
	TokenLeftSquare:        "LeftSquare",
	TokenRightSquare:       "RightSquare",
	TokenComma:             "Comma",
	TokenDot:               "Dot",
	TokenColon:             "Colon",
	TokenCaret:             "Caret",
	TokenSemicolon:         "Semicolon",
	TokenSlash:             "Slash",
	TokenPercent:           "Percent",
	TokenStar:              "Star",
	TokenAnd:               "And",
	TokenOr:                "Or",
	TokenBang:              "Bang",
	TokenBangEqual:         "BangEqual",
	TokenEqual:             "Equal",
	TokenEqualEqual:        "EqualEqual",
	TokenGreater:           "Greater",
	TokenGreaterEqual:      "GreaterEqual",
	TokenLess:              "Less",
	TokenLessEqual:         "LessEqual",
	TokenMinus:             "Minus",
	TokenMinusMinus:        "MinusMinus",
	TokenPlus:              "Plus",
	TokenPlusPlus:          "PlusPlus",
	TokenIdentifier:        "Identifier",
	TokenChar:              "Char",
	TokenString:            "String",
	TokenNumber:            "Number",
	TokenBool:              "Bool",
	TokenWhitespace:        "Whitespace",
	TokenNewLine:           "NewLine",
	TokenMultiLineComment:  "MultiLineComment",
	TokenSingleLineComment: "SingleLineComment",
	TokenEOF:               "EOF",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Symbol returns the source text of a punctuation or operator kind, or the
// empty string for other kinds.
func (k TokenKind) Symbol() string {
	for c, kind := range punct {
		if kind == k {
			return string(c)
		}
	}
	for s, kind := range punct2 {
		if kind == k {
			return s
		}
	}
	return ""
}

// punct maps single characters to their token kinds.
var punct = map[byte]TokenKind{
	'(': TokenLeftParen,
	')': TokenRightParen,
	'{': TokenLeftBrace,
	'}': TokenRightBrace,
	'[': TokenLeftSquare,
	']': TokenRightSquare,
	',': TokenComma,
	'.': TokenDot,
	':': TokenColon,
	'^': TokenCaret,
	';': TokenSemicolon,
	'/': TokenSlash,
	'%': TokenPercent,
	'*': TokenStar,
	'&': TokenAnd,
	'|': TokenOr,
	'!': TokenBang,
	'=': TokenEqual,
	'>': TokenGreater,
	'<': TokenLess,
	'-': TokenMinus,
	'+': TokenPlus,
}

// punct2 maps two-character operators to their token kinds.
var punct2 = map[string]TokenKind{
	"++": TokenPlusPlus,
	"--": TokenMinusMinus,
	"!=": TokenBangEqual,
	"==": TokenEqualEqual,
	">=": TokenGreaterEqual,
	"<=": TokenLessEqual,
}

// LiteralKind is the type of a literal value carried by a token.
type LiteralKind int8

const (
	LitNone LiteralKind = iota
	LitIdent
	LitChar
	LitString
	LitNumber
	LitBool
)

// Literal is the value of an identifier or literal token.
type Literal struct {
	Kind LiteralKind
	// Text is the name of an identifier or the unescaped content of a string.
	Text string
	Char rune
	Num  float64
	Bool bool
}

// String formats the literal's value without decoration.
func (l Literal) String() string {
	switch l.Kind {
	case LitIdent, LitString:
		return l.Text
	case LitChar:
		return string(l.Char)
	case LitNumber:
		return formatReal(l.Num)
	case LitBool:
		return strconv.FormatBool(l.Bool)
	default:
		return ""
	}
}

// Token is a lexical token.
type Token struct {
	Kind    TokenKind
	Lexeme  string
	Literal Literal
	// Line and Col are the 0-based position of the token's first character.
	// Col counts runes.
	Line, Col int
	Span      Span
}

func (t Token) String() string {
	return t.Kind.String() + ":" + strconv.Quote(t.Lexeme) + "@" + strconv.Itoa(t.Line) + ":" + strconv.Itoa(t.Col)
}

// skipped reports whether parsers ignore the token between units.
func (t Token) skipped() bool {
	switch t.Kind {
	case TokenWhitespace, TokenNewLine, TokenMultiLineComment, TokenSingleLineComment:
		return true
	default:
		return false
	}
}

// literal reports whether the token is a literal value usable as a unit.
func (t Token) literal() bool {
	switch t.Kind {
	case TokenChar, TokenString, TokenNumber, TokenBool:
		return true
	default:
		return false
	}
}

type lexer struct {
	src       string
	off       int
	line, col int
	errs      []InputError
}

// Tokenize splits src into tokens. The final EOF token is not included.
// Tokenize never fails: malformed numbers become 0 and unknown characters
// become TokenNone tokens, each reported in the returned errors.
func Tokenize(src string) ([]Token, []InputError) {
	l := lexer{src: src}
	var toks []Token
	for {
		tok := l.next()
		if tok.Kind == TokenEOF {
			return toks, l.errs
		}
		toks = append(toks, tok)
	}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isIdentStart(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isAlnum(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// at returns the byte at i, or 0 past the end of the source.
func (l *lexer) at(i int) byte {
	if i < len(l.src) {
		return l.src[i]
	}
	return 0
}

// emit creates a token from the current offset to end and advances past it.
func (l *lexer) emit(kind TokenKind, end int, lit Literal) Token {
	tok := Token{
		Kind:    kind,
		Lexeme:  l.src[l.off:end],
		Literal: lit,
		Line:    l.line,
		Col:     l.col,
		Span:    Span{l.off, end},
	}
	for _, r := range tok.Lexeme {
		if r == '\n' {
			l.line++
			l.col = 0
			continue
		}
		l.col++
	}
	l.off = end
	return tok
}

func (l *lexer) next() Token {
	for l.off < len(l.src) && isBlank(l.src[l.off]) {
		l.off++
		l.col++
	}
	start := l.off
	if start >= len(l.src) {
		return Token{Kind: TokenEOF, Line: l.line, Col: l.col, Span: Span{start, start}}
	}
	c := l.src[start]
	switch {
	case c == '\n':
		return l.emit(TokenNewLine, start+1, Literal{})
	case c == '/' && l.at(start+1) == '/':
		end := strings.IndexByte(l.src[start:], '\n')
		if end < 0 {
			end = len(l.src)
		} else {
			end += start
		}
		return l.emit(TokenSingleLineComment, end, Literal{})
	case c == '/' && l.at(start+1) == '*':
		end := strings.Index(l.src[start+2:], "*/")
		if end < 0 {
			end = len(l.src)
		} else {
			end += start + 4
		}
		return l.emit(TokenMultiLineComment, end, Literal{})
	case c == 't' && l.keyword("true"):
		return l.emit(TokenBool, start+4, Literal{Kind: LitBool, Bool: true})
	case c == 'f' && l.keyword("false"):
		return l.emit(TokenBool, start+5, Literal{Kind: LitBool, Bool: false})
	case c == '\'':
		if tok, ok := l.scanChar(); ok {
			return tok
		}
	case c == '"':
		return l.scanString()
	case isIdentStart(c):
		end := start + 1
		for end < len(l.src) && isAlnum(l.src[end]) {
			end++
		}
		return l.emit(TokenIdentifier, end, Literal{Kind: LitIdent, Text: l.src[start:end]})
	case isDigit(c):
		return l.scanNumber()
	}
	if kind, ok := punct2[l.src[start:min(start+2, len(l.src))]]; ok {
		return l.emit(kind, start+2, Literal{})
	}
	if kind, ok := punct[c]; ok {
		return l.emit(kind, start+1, Literal{})
	}
	_, sz := utf8.DecodeRuneInString(l.src[start:])
	tok := l.emit(TokenNone, start+sz, Literal{})
	l.errs = append(l.errs, &LexError{Span: tok.Span, Text: tok.Lexeme})
	return tok
}

// keyword reports whether the source at the current offset is the whole word
// w, i.e. w not followed by a letter or digit.
func (l *lexer) keyword(w string) bool {
	if !strings.HasPrefix(l.src[l.off:], w) {
		return false
	}
	c := l.at(l.off + len(w))
	return !(isDigit(c) || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z')
}

// scanChar scans a character literal 'c' or '\c'. If the quote does not start a
// well-formed character literal, the result is false.
func (l *lexer) scanChar() (Token, bool) {
	i := l.off + 1
	if i >= len(l.src) {
		return Token{}, false
	}
	escaped := l.src[i] == '\\'
	if escaped {
		i++
	}
	r, sz := utf8.DecodeRuneInString(l.src[i:])
	if sz == 0 || l.at(i+sz) != '\'' {
		return Token{}, false
	}
	if escaped {
		r = unescape(r)
	}
	return l.emit(TokenChar, i+sz+1, Literal{Kind: LitChar, Char: r}), true
}

// scanString scans a string literal. The literal ends at an unescaped quote, which
// is included, or just before a newline or the end of input.
func (l *lexer) scanString() Token {
	var b strings.Builder
	i := l.off + 1
	escaped := false
	for i < len(l.src) {
		r, sz := utf8.DecodeRuneInString(l.src[i:])
		if r == '\n' || r == '"' && !escaped {
			break
		}
		switch {
		case escaped:
			b.WriteRune(unescape(r))
			escaped = false
		case r == '\\':
			escaped = true
		default:
			b.WriteRune(r)
		}
		i += sz
	}
	if l.at(i) == '"' {
		i++
	}
	return l.emit(TokenString, i, Literal{Kind: LitString, Text: b.String()})
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		// \\, \', \", and unknown escapes all produce the character itself.
		return r
	}
}

// scanNumber scans a numeric literal and decodes its value.
func (l *lexer) scanNumber() Token {
	start := l.off
	end := start + 1
	for end < len(l.src) && isAlnum(l.src[end]) {
		end++
	}
	if l.at(end) == '.' && isDigit(l.at(end+1)) {
		end++
		for end < len(l.src) && isAlnum(l.src[end]) {
			end++
		}
	}
	hex := end-start > 1 && (l.src[start+1] == 'x' || l.src[start+1] == 'X') && l.src[start] == '0'
	if e := l.src[end-1]; (e == 'e' || e == 'E') && !hex {
		if s := l.at(end); s == '+' || s == '-' {
			end++
			for end < len(l.src) && isAlnum(l.src[end]) {
				end++
			}
		}
	}
	v, err := parseNumber(l.src[start:end])
	tok := l.emit(TokenNumber, end, Literal{Kind: LitNumber, Num: v})
	if err != nil {
		l.errs = append(l.errs, &LiteralError{Span: tok.Span, Lexeme: tok.Lexeme, Err: err})
	}
	return tok
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
