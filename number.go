package calcscript

import (
	"errors"
	"strconv"
	"strings"
)

var (
	intSuffixes   = []string{"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64"}
	floatSuffixes = []string{"f32", "f64"}
)

// parseNumber decodes a numeric literal. Underscores are separators and case
// is ignored. A 0x, 0b, or 0o prefix or an integer width suffix makes the
// literal an integer; an f32 or f64 suffix makes it a float. On error, the
// result is 0.
func parseNumber(lexeme string) (float64, error) {
	n := strings.ToLower(strings.ReplaceAll(lexeme, "_", ""))
	radix := 10
	integer, float := false, false
	if len(n) > 2 {
		switch n[:2] {
		case "0x":
			radix = 16
		case "0b":
			radix = 2
		case "0o":
			radix = 8
		}
		if radix != 10 {
			n = n[2:]
			integer = true
		}
	}
	if s := suffix(n, intSuffixes); s != "" {
		n = strings.TrimSuffix(n, s)
		integer = true
	} else if s := suffix(n, floatSuffixes); s != "" {
		n = strings.TrimSuffix(n, s)
		float = true
	}
	if integer && float {
		return 0, ErrMixedMarkers
	}
	if integer {
		if strings.Contains(n, ".") {
			return 0, ErrIntegerFraction
		}
		if radix != 16 && strings.Contains(n, "e") {
			return 0, ErrIntegerExponent
		}
		u, err := strconv.ParseUint(n, radix, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, ErrIntegerOverflow
			}
			return 0, ErrBadDigits
		}
		return float64(u), nil
	}
	if k := strings.IndexByte(n, 'e'); k >= 0 {
		if _, err := strconv.Atoi(n[k+1:]); err != nil {
			return 0, ErrBadExponent
		}
	}
	if !plainDecimal(n) {
		return 0, ErrBadDigits
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			// Overflow to ±Inf or underflow to 0 is a value, not a mistake.
			return f, nil
		}
		return 0, ErrBadDigits
	}
	return f, nil
}

// suffix returns the element of sufs that n ends with, provided something
// precedes it.
func suffix(n string, sufs []string) string {
	for _, s := range sufs {
		if len(n) > len(s) && strings.HasSuffix(n, s) {
			return s
		}
	}
	return ""
}

// plainDecimal reports whether n is digits, an optional fraction, and an
// optional signed exponent. strconv.ParseFloat accepts more than that,
// including hexadecimal mantissas and "inf".
func plainDecimal(n string) bool {
	i := 0
	digits := func() int {
		k := i
		for i < len(n) && isDigit(n[i]) {
			i++
		}
		return i - k
	}
	d := digits()
	if i < len(n) && n[i] == '.' {
		i++
		d += digits()
	}
	if d == 0 {
		return false
	}
	if i < len(n) && n[i] == 'e' {
		i++
		if i < len(n) && (n[i] == '+' || n[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == len(n)
}
