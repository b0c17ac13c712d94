package quizimport

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// ParseCorrect turns a correct-answer cell into a zero-based option index.
// It accepts a letter ("B"), a 1-based number up to two digits ("2"), or a
// delimited list whose first token is one of those ("B, C"). Numbers are not
// checked against the available options here.
func ParseCorrect(raw string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(width.Fold.String(raw)))
	if s == "" {
		return 0, false
	}
	if idx, ok := parseCorrectToken(s); ok {
		return idx, true
	}
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '、' || unicode.IsSpace(r)
	})
	if len(tokens) == 0 {
		return 0, false
	}
	return parseCorrectToken(tokens[0])
}

func parseCorrectToken(s string) (int, bool) {
	if len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z' {
		return int(s[0] - 'A'), true
	}
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n - 1, true
}
