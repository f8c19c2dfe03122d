package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsPeriod_Bounds(t *testing.T) {
	// Thursday
	now := time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)
	endOfToday := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period StatsPeriod
		start  time.Time
	}{
		{StatsPeriodDay, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)},
		{StatsPeriodWeek, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)},
		{StatsPeriodMonth, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		{StatsPeriodYear, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{StatsPeriodAllTime, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			start, end := tt.period.Bounds(now)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, endOfToday, end)
		})
	}

	assert.False(t, StatsPeriod("decade").Valid())
}

func TestComputeReadingStats(t *testing.T) {
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)
	finished := now.Add(-2 * time.Hour)
	lastYear := now.AddDate(-1, 0, 0)

	books := []*Book{
		{ID: "b1", Status: StatusRead, FinishedAt: &finished, IsFavorite: true},
		{ID: "b2", Status: StatusRead, FinishedAt: &lastYear},
		{ID: "b3", Status: StatusReading},
		{ID: "b4", Status: StatusWishlist, IsFavorite: true},
	}
	sessions := []*ReadingSession{
		{BookID: "b1", Date: now.Add(-3 * time.Hour), PagesRead: 40},
		{BookID: "b3", Date: now.Add(-1 * time.Hour), PagesRead: 10},
		{BookID: "b3", Date: now.AddDate(0, 0, -1), PagesRead: 25},
		{BookID: "b3", Date: now.AddDate(0, 0, -2), PagesRead: 5},
		{BookID: "b2", Date: lastYear, PagesRead: 300},
	}

	stats := ComputeReadingStats(StatsPeriodWeek, now, books, sessions)

	assert.Equal(t, 4, stats.TotalBooks)
	assert.Equal(t, 2, stats.ByStatus[StatusRead])
	assert.Equal(t, 0, stats.ByStatus[StatusAbandoned])
	assert.Equal(t, 2, stats.Favorites)
	assert.Equal(t, 1, stats.BooksFinished)
	assert.Equal(t, 80, stats.PagesRead)
	assert.Equal(t, 4, stats.Sessions)
	assert.Equal(t, 3, stats.CurrentStreakDays)

	require.Len(t, stats.DailyReading, 3)
	today := stats.DailyReading[2]
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), today.Date)
	assert.Equal(t, 50, today.PagesRead)
	assert.Equal(t, 2, today.Books)
}

func TestComputeReadingStats_StreakAllowsTodayUnread(t *testing.T) {
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	sessions := []*ReadingSession{
		{BookID: "b1", Date: now.AddDate(0, 0, -1), PagesRead: 5},
		{BookID: "b1", Date: now.AddDate(0, 0, -2), PagesRead: 5},
		{BookID: "b1", Date: now.AddDate(0, 0, -4), PagesRead: 5},
	}

	stats := ComputeReadingStats(StatsPeriodAllTime, now, nil, sessions)
	assert.Equal(t, 2, stats.CurrentStreakDays)
	assert.Equal(t, 15, stats.PagesRead)
}
