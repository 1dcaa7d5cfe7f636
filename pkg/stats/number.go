package stats

import (
	"math"
	"strconv"
	"strings"
)

// ParseFloat reads the longest numeric prefix of s, the way browsers parse
// numbers typed into a table: leading whitespace is skipped, trailing junk is
// ignored and anything without a numeric prefix is NaN.
//
//	"10"      -> 10
//	" 3.5kg"  -> 3.5
//	"1e3"     -> 1000
//	"-"       -> NaN
//	""        -> NaN
func ParseFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f\u00a0\ufeff")
	if s == "" {
		return math.NaN()
	}

	sign := ""
	rest := s
	if rest[0] == '+' || rest[0] == '-' {
		sign = rest[:1]
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "Infinity") {
		if sign == "-" {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	n := numericPrefix(rest)
	if n == 0 {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(sign+rest[:n], 64)
	if err != nil {
		// Out of range values come back as ±Inf along with the error.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// numericPrefix returns the length of the decimal literal at the start of s.
func numericPrefix(s string) int {
	i := 0
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}

	// Exponent only counts when it has digits.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// FormatFloat prints a number the way a browser would in a label: the
// shortest digits that round-trip, switching to exponent form below 1e-6
// and from 1e21 up.
//
//	1e21   -> "1e+21"
//	1e-7   -> "1e-7"
//	-0     -> "0"
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if a := math.Abs(f); a >= 1e21 || a < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
