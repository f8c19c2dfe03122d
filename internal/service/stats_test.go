package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
)

func TestStats_Summary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	dune := h.seedBook(candidate("Dune", "Frank Herbert", "9780441013593", 300))
	hobbit := candidate("The Hobbit", "J.R.R. Tolkien", "9780547928227", 320)
	hobbit.IsFavorite = true
	h.seedBook(hobbit)

	h.clock.Advance(-24 * time.Hour)
	_, err := h.library.UpdateProgress(ctx, ByID(dune), 100, "")
	require.NoError(t, err)
	h.clock.Advance(24 * time.Hour)
	_, err = h.library.UpdateProgress(ctx, ByID(dune), 300, "")
	require.NoError(t, err)

	stats, err := h.stats.Summary(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, domain.StatsPeriodAllTime, stats.Period)
	assert.Equal(t, 2, stats.TotalBooks)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusRead])
	assert.Equal(t, 1, stats.ByStatus[domain.StatusWishlist])
	assert.Equal(t, 1, stats.Favorites)
	assert.Equal(t, 300, stats.PagesRead)
	assert.Equal(t, 2, stats.Sessions)
	assert.Equal(t, 1, stats.BooksFinished)
	assert.Equal(t, 2, stats.CurrentStreakDays)
	assert.Len(t, stats.DailyReading, 2)

	today, err := h.stats.Summary(ctx, domain.StatsPeriodDay)
	require.NoError(t, err)
	assert.Equal(t, 200, today.PagesRead)
	assert.Equal(t, 1, today.Sessions)
}

func TestStats_InvalidPeriod(t *testing.T) {
	h := newHarness(t)

	_, err := h.stats.Summary(context.Background(), "decade")
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}
