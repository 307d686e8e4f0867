package database

import (
	"strings"
	"unicode/utf8"
)

// MaxPatternLength bounds user input used in LIKE patterns, in characters.
const MaxPatternLength = 100

// likeEscaper escapes the LIKE wildcards so user input only matches
// literally. Queries using the pattern must declare ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern trims and bounds the input and wraps it for a LIKE
// substring match. It returns "" for blank input.
func ContainsPattern(input string) string {
	input = strings.TrimSpace(input)
	if utf8.RuneCountInString(input) > MaxPatternLength {
		input = string([]rune(input)[:MaxPatternLength])
	}
	if input == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(input) + "%"
}
