package calcscript

import (
	"errors"
	"strconv"
)

// InputError is a recoverable problem with source text. Every diagnostic
// reported by Tokenize, Parse, and evaluation implements InputError.
type InputError interface {
	error
	// Range returns the byte offsets of the text that caused the error.
	Range() Span
}

var (
	_ InputError = (*LiteralError)(nil)
	_ InputError = (*LexError)(nil)
	_ InputError = (*UnparsedError)(nil)
)

// Reasons a numeric literal can be malformed. A LiteralError unwraps to one
// of these.
var (
	ErrMixedMarkers    = errors.New("integer and float markers combined")
	ErrIntegerFraction = errors.New("fractional part in integer literal")
	ErrIntegerExponent = errors.New("exponent in non-hexadecimal integer literal")
	ErrBadExponent     = errors.New("malformed exponent")
	ErrBadDigits       = errors.New("malformed digits")
	ErrIntegerOverflow = errors.New("integer literal out of range")
)

// LiteralError is a malformed numeric literal. The literal evaluates to 0.
type LiteralError struct {
	Span Span
	// Lexeme is the literal as written.
	Lexeme string
	// Err is the reason the literal is malformed.
	Err error
}

func (err *LiteralError) Error() string {
	return errpos(err.Span, "invalid number "+strconv.Quote(err.Lexeme)+": "+err.Err.Error())
}

func (err *LiteralError) Unwrap() error {
	return err.Err
}

func (err *LiteralError) Range() Span {
	return err.Span
}

// LexError is a character that does not begin any token.
type LexError struct {
	Span Span
	// Text is the unrecognized character.
	Text string
}

func (err *LexError) Error() string {
	return errpos(err.Span, "invalid character "+strconv.Quote(err.Text))
}

func (err *LexError) Range() Span {
	return err.Span
}

// UnparsedError is input following the last sentence that could be parsed.
// The parser drops it.
type UnparsedError struct {
	Span Span
	// Text is the dropped source text.
	Text string
}

func (err *UnparsedError) Error() string {
	return errpos(err.Span, "ignoring unparsed input "+strconv.Quote(err.Text))
}

func (err *UnparsedError) Range() Span {
	return err.Span
}

// errpos is a shortcut to create an error message with a position.
func errpos(s Span, msg string) string {
	return strconv.Itoa(s.Start) + ": " + msg
}
