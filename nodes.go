package calcscript

import "strconv"

// Article = { Sentence }
// Sentence = ';' | '{' { Sentence } '}' | Assignment | Expression
// Assignment = identifier '=' Expression
// Expression = CalcUnit { [ op ] CalcUnit }
// CalcUnit = [ '+' | '-' ] ( literal | identifier | identifier Tuple | Tuple )
// Tuple = '(' [ Expression { ',' Expression } ] ')'

// Article is a parsed program, a sequence of sentences.
type Article struct {
	Sentences []Sentence
}

// SentenceKind is the type of a sentence.
type SentenceKind int8

const (
	SentenceExpr SentenceKind = iota
	SentenceAssign
	SentenceSeparator
	SentenceBlock
)

func (k SentenceKind) String() string {
	switch k {
	case SentenceExpr:
		return "Expression"
	case SentenceAssign:
		return "Assign"
	case SentenceSeparator:
		return "Separator"
	case SentenceBlock:
		return "CodeBlock"
	default:
		return "SentenceKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Sentence is a single statement.
type Sentence struct {
	Kind SentenceKind
	// Name is the assigned name of a SentenceAssign.
	Name string
	// Expr is the expression of a SentenceExpr or the assigned value of a
	// SentenceAssign.
	Expr *Expression
	// Block is the contents of a SentenceBlock.
	Block []Sentence
	// Span is the source range of the sentence's tokens.
	Span Span
}

// Expression is a chain of units joined by binary operators. Precedence is
// not resolved until evaluation.
type Expression struct {
	First CalcUnit
	Rest  []Operation
}

// Operation is an operator and its right operand within an Expression.
type Operation struct {
	// Op is one of TokenPlus, TokenMinus, TokenStar, TokenSlash,
	// TokenPercent, or TokenCaret. Implicit multiplication is TokenStar.
	Op   TokenKind
	Unit CalcUnit
}

// UnitKind is the type of a CalcUnit. Each operand form has a negated
// variant.
type UnitKind int8

const (
	UnitLiteral UnitKind = iota
	UnitNegLiteral
	UnitIdent
	UnitNegIdent
	UnitCall
	UnitNegCall
	UnitTuple
	UnitNegTuple
)

// Negated reports whether the unit is one of the negated variants.
func (k UnitKind) Negated() bool {
	switch k {
	case UnitNegLiteral, UnitNegIdent, UnitNegCall, UnitNegTuple:
		return true
	default:
		return false
	}
}

// CalcUnit is an operand: a literal, a name, a call, or a parenthesized
// tuple, possibly negated.
type CalcUnit struct {
	Kind UnitKind
	// Lit is the value of a literal unit.
	Lit Literal
	// Name is the name of an identifier or the callee of a call.
	Name string
	// Args is the argument list of a call or the contents of a tuple.
	Args *Tuple
}

// Tuple is a parenthesized, comma-separated list of expressions.
type Tuple struct {
	Exprs []Expression
}
