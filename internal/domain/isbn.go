package domain

import (
	"strings"

	"github.com/moraes/isbn"

	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
)

// TemporaryISBNPrefix marks identifiers generated for records with no catalog key.
const TemporaryISBNPrefix = "tmp"

// IsTemporaryISBN reports whether s was generated locally rather than taken
// from a catalog. Temporary identifiers never match other books.
func IsTemporaryISBN(s string) bool {
	return strings.HasPrefix(s, TemporaryISBNPrefix+"-")
}

// CleanISBN strips separators and upper-cases the ISBN-10 check character.
func CleanISBN(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == 'x' || r == 'X':
			return 'X'
		case r == '-' || r == ' ':
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(s))
}

// ValidISBN reports whether s is a valid ISBN-10 or ISBN-13 once cleaned.
func ValidISBN(s string) bool {
	c := CleanISBN(s)
	switch len(c) {
	case 10:
		return isbn.Validate10(c)
	case 13:
		return isbn.Validate13(c)
	default:
		return false
	}
}

// ParseISBN cleans and validates a user-supplied ISBN.
func ParseISBN(s string) (string, error) {
	c := CleanISBN(s)
	if !ValidISBN(c) {
		return "", domainerrors.Validationf("%q is not a valid ISBN", s).WithCause(ErrInvalidISBN)
	}
	return c, nil
}

// ISBNKey returns the form used to compare identifiers. Valid ISBN-10s map to
// their ISBN-13 so both forms of one edition match. Other catalog keys compare
// by their cleaned text. Temporary identifiers have no key.
func ISBNKey(s string) string {
	if s == "" || IsTemporaryISBN(s) {
		return ""
	}
	c := CleanISBN(s)
	if len(c) == 10 && isbn.Validate10(c) {
		if isbn13, err := isbn.To13(c); err == nil {
			return isbn13
		}
	}
	return strings.ToUpper(c)
}

// SameISBN reports whether a and b identify the same edition.
func SameISBN(a, b string) bool {
	ka := ISBNKey(a)
	return ka != "" && ka == ISBNKey(b)
}
