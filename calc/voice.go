package calc

import "strings"

// spokenOperators are applied in order as blind substring replaces, so "six" becomes "si*".
var spokenOperators = []struct{ word, op string }{
	{"x", "*"},
	{"X", "*"},
	{"into", "*"},
	{"plus", "+"},
	{"minus", "-"},
	{"divide", "/"},
}

// NormalizeSpoken rewrites operator words in a transcript into operator symbols.
func NormalizeSpoken(text string) string {
	for _, r := range spokenOperators {
		text = strings.ReplaceAll(text, r.word, r.op)
	}
	return text
}
