package identifiers

import (
	"strings"
	"unicode"
)

// Type is the kind of ISBN a value holds.
type Type string

const (
	TypeISBN10  Type = "isbn_10"
	TypeISBN13  Type = "isbn_13"
	TypeUnknown Type = ""
)

// DetectISBN normalizes value and reports which ISBN form it is, if any.
func DetectISBN(value string) (string, Type) {
	normalized := NormalizeISBN(value)
	switch {
	case len(normalized) == 13 && ValidateISBN13(normalized):
		return normalized, TypeISBN13
	case len(normalized) == 10 && ValidateISBN10(normalized):
		return normalized, TypeISBN10
	}
	return normalized, TypeUnknown
}

// NormalizeISBN strips an "ISBN" prefix, hyphens and spaces.
func NormalizeISBN(value string) string {
	value = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "ISBN:")
	value = strings.TrimPrefix(value, "ISBN")

	var result strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) || r == 'X' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ValidateISBN10 checks the mod 11 checksum with weights 10 down to 1.
func ValidateISBN10(isbn string) bool {
	if len(isbn) != 10 {
		return false
	}

	var sum int
	for i, r := range isbn {
		var digit int
		switch {
		case r == 'X' && i == 9:
			digit = 10
		case unicode.IsDigit(r):
			digit = int(r - '0')
		default:
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

// ValidateISBN13 checks the mod 10 checksum with alternating weights 1 and 3.
func ValidateISBN13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}

	var sum int
	for i, r := range isbn {
		if !unicode.IsDigit(r) {
			return false
		}
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	return sum%10 == 0
}
