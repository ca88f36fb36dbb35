package validation

import (
	"strings"
	"unicode/utf8"
)

// MaxQueryLength caps free-text search input, in bytes.
const MaxQueryLength = 256

var controlReplacer = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")

// SanitizeQuery replaces line breaks and tabs with spaces and caps the
// length. Surrounding whitespace is kept: callers measure the query as typed.
func SanitizeQuery(input string) string {
	input = controlReplacer.Replace(input)

	if len(input) > MaxQueryLength {
		input = input[:MaxQueryLength]
		// Drop a rune split by the cut.
		i := len(input) - 1
		for i > 0 && !utf8.RuneStart(input[i]) {
			i--
		}
		if !utf8.FullRuneInString(input[i:]) {
			input = input[:i]
		}
	}

	return input
}
