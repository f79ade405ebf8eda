package markov

import "strings"

// DefaultMaxLength is the character budget applied by Normalize.
const DefaultMaxLength = 300

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Normalize collapses line breaks to single spaces and caps the result
// at a whole-word boundary. When the text runs past the budget it is cut
// at the first whitespace at or after the budget index, so the result is
// never shorter than the budget itself; if no later whitespace exists
// the whole string is returned rather than cutting mid-word.
func Normalize(s string, budget int) string {
	if budget <= 0 {
		budget = DefaultMaxLength
	}
	s = lineBreaks.Replace(s)
	if len(s) <= budget {
		return s
	}
	rest := s[budget:]
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		return s[:budget+i]
	}
	return s
}
