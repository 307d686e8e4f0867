package database

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"   ", ""},
		{" dune ", "%dune%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\`, `%c:\\%`},
	}

	for _, tc := range tcs {
		assert.Equal(t, tc.expected, ContainsPattern(tc.input), tc.input)
	}
}

func TestContainsPattern_TruncatesByCharacter(t *testing.T) {
	t.Parallel()

	pattern := ContainsPattern(strings.Repeat("語", MaxPatternLength+5))
	assert.True(t, utf8.ValidString(pattern))
	assert.Equal(t, "%"+strings.Repeat("語", MaxPatternLength)+"%", pattern)

	pattern = ContainsPattern(strings.Repeat("語", MaxPatternLength))
	assert.Equal(t, MaxPatternLength+2, utf8.RuneCountInString(pattern))
}
