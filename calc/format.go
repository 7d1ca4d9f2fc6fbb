package calc

import (
	"math"
	"strconv"
	"strings"
)

// Format renders a result: floats with 10 significant digits in general format, integers in full.
func Format(v Value) string {
	if v.kind == kindInt {
		return v.i.String()
	}
	return formatG10(v.f)
}

func formatG10(f float64) string {
	if s, ok := formatSpecial(f); ok {
		return s
	}
	return strconv.FormatFloat(f, 'g', 10, 64)
}

func formatSpecial(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "nan", true
	case math.IsInf(f, 1):
		return "inf", true
	case math.IsInf(f, -1):
		return "-inf", true
	}
	return "", false
}

// reprFloat is the shortest round-trip form of f, switching to exponent notation outside
// [1e-4, 1e16) and keeping a ".0" suffix on integral values (30 -> "30.0").
func reprFloat(f float64) string {
	if s, ok := formatSpecial(f); ok {
		return s
	}
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	if i := strings.LastIndexByte(s, 'e'); i >= 0 {
		exp, err := strconv.Atoi(s[i+1:])
		if err == nil && (exp < -4 || exp >= 16) {
			return s
		}
	}
	s = strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// formatRegister renders the memory register: shortest round-trip form without a ".0" suffix.
func formatRegister(f float64) string {
	return strings.TrimSuffix(reprFloat(f), ".0")
}
