package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidISBN(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"9780306406157", true},
		{"978-0-306-40615-7", true},
		{"0306406152", true},
		{"0-306-40615-2", true},
		{"080442957X", true},
		{"080442957x", true},
		{"9780306406158", false},
		{"12345", false},
		{"OL7353617M", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidISBN(tt.input))
		})
	}
}

func TestParseISBN(t *testing.T) {
	got, err := ParseISBN("978-0-306-40615-7")
	require.NoError(t, err)
	assert.Equal(t, "9780306406157", got)

	_, err = ParseISBN("not-an-isbn")
	assert.ErrorIs(t, err, ErrInvalidISBN)
}

func TestSameISBN(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "9780000000001", "9780000000001", true},
		{"10 and 13 forms", "0306406152", "9780306406157", true},
		{"hyphenated", "978-0-306-40615-7", "9780306406157", true},
		{"provider keys", "OL7353617M", "ol7353617m", true},
		{"different", "9780306406157", "9780000000001", false},
		{"temporary never matches", "tmp-1700000000000-abc", "tmp-1700000000000-abc", false},
		{"empty never matches", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameISBN(tt.a, tt.b))
		})
	}
}

func TestIsTemporaryISBN(t *testing.T) {
	assert.True(t, IsTemporaryISBN("tmp-1700000000000-Ab3dE6gH"))
	assert.False(t, IsTemporaryISBN("9780306406157"))
	assert.False(t, IsTemporaryISBN(""))
}
