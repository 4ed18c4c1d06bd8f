// Package calcscript implements a small calculator language.
//
// Source text is lexed into tokens, parsed into an Article of Sentences, and
// evaluated against a Runtime that persists across evaluations, so "x = 5"
// entered once is visible to the next input. Sentences are assignments,
// expressions, ";" separators, or "{...}" blocks. Expressions are chains of
// units joined by + - * / % ^; "2 x" with no operator is a multiplication,
// but a line break ends the chain unless the next line starts with an
// operator. "sin(x)" calls a builtin; "sin (x)" multiplies.
//
// Nothing in the package fails hard on bad input. Malformed numbers become 0,
// unknown characters and unparsable trailing input are dropped, and arithmetic
// on unsupported values produces the empty value. Each of these conditions
// is reported through a list of InputErrors alongside the result.
package calcscript
