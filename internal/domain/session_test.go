package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadingSession_OnlyWhenAdvanced(t *testing.T) {
	session, ok := NewReadingSession("book-1", ProgressChange{StartPage: 150, EndPage: 300}, "  finale ", testNow)
	require.True(t, ok)

	assert.Equal(t, "book-1", session.BookID)
	assert.Equal(t, 150, session.StartPage)
	assert.Equal(t, 300, session.EndPage)
	assert.Equal(t, 150, session.PagesRead)
	assert.Equal(t, "finale", session.Notes)
	assert.Equal(t, testNow, session.Date)

	_, ok = NewReadingSession("book-1", ProgressChange{StartPage: 40, EndPage: 40}, "", testNow)
	assert.False(t, ok)
}
