package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"wishlist", StatusWishlist},
		{"toRead", StatusToRead},
		{"unread", StatusToRead},
		{"to_read", StatusToRead},
		{"READING", StatusReading},
		{"read", StatusRead},
		{"finished", StatusRead},
		{" abandoned ", StatusAbandoned},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}

	_, err := ParseStatus("paused")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
