package domain

import (
	"slices"
	"time"
)

// StatsPeriod represents a time window for statistics queries.
type StatsPeriod string

// StatsPeriod constants for time window queries.
const (
	StatsPeriodDay     StatsPeriod = "day"
	StatsPeriodWeek    StatsPeriod = "week"
	StatsPeriodMonth   StatsPeriod = "month"
	StatsPeriodYear    StatsPeriod = "year"
	StatsPeriodAllTime StatsPeriod = "all"
)

// Valid returns true if the period is a recognized value.
func (p StatsPeriod) Valid() bool {
	switch p {
	case StatsPeriodDay, StatsPeriodWeek, StatsPeriodMonth, StatsPeriodYear, StatsPeriodAllTime:
		return true
	default:
		return false
	}
}

// Bounds returns the start and end times for a period relative to now.
// Start is inclusive, end is exclusive. End is always end of today (midnight tomorrow).
func (p StatsPeriod) Bounds(now time.Time) (start, end time.Time) {
	year, month, day := now.Date()
	loc := now.Location()
	today := time.Date(year, month, day, 0, 0, 0, 0, loc)
	endOfToday := today.AddDate(0, 0, 1)

	switch p {
	case StatsPeriodDay:
		return today, endOfToday
	case StatsPeriodWeek:
		// Week starts on Monday (ISO standard)
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return today.AddDate(0, 0, -(weekday - 1)), endOfToday
	case StatsPeriodMonth:
		return time.Date(year, month, 1, 0, 0, 0, 0, loc), endOfToday
	case StatsPeriodYear:
		return time.Date(year, 1, 1, 0, 0, 0, 0, loc), endOfToday
	case StatsPeriodAllTime:
		return time.Time{}, endOfToday
	default:
		return today, endOfToday
	}
}

// Contains reports whether t falls inside [start, end).
func Contains(start, end, t time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// DailyReading is the reading activity of one day.
type DailyReading struct {
	Date      time.Time `json:"date"`
	PagesRead int       `json:"pages_read"`
	Sessions  int       `json:"sessions"`
	Books     int       `json:"books"` // Distinct books read
}

// ReadingStats summarizes the library and the reading done in a period.
type ReadingStats struct {
	Period     StatsPeriod `json:"period"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	TotalBooks int         `json:"total_books"`

	// Library snapshot, independent of the period
	ByStatus  map[Status]int `json:"by_status"`
	Favorites int            `json:"favorites"`

	// Activity inside the period
	PagesRead     int            `json:"pages_read"`
	Sessions      int            `json:"sessions"`
	BooksFinished int            `json:"books_finished"`
	DailyReading  []DailyReading `json:"daily_reading"`

	// Consecutive days up to today with at least one session
	CurrentStreakDays int `json:"current_streak_days"`
}

// ComputeReadingStats aggregates books and sessions for period.
func ComputeReadingStats(period StatsPeriod, now time.Time, books []*Book, sessions []*ReadingSession) *ReadingStats {
	start, end := period.Bounds(now)
	stats := &ReadingStats{
		Period:     period,
		StartDate:  start,
		EndDate:    end,
		TotalBooks: len(books),
		ByStatus:   make(map[Status]int, len(Statuses())),
	}
	for _, s := range Statuses() {
		stats.ByStatus[s] = 0
	}

	for _, b := range books {
		stats.ByStatus[b.Status]++
		if b.IsFavorite {
			stats.Favorites++
		}
		if b.Status == StatusRead && b.FinishedAt != nil && Contains(start, end, *b.FinishedAt) {
			stats.BooksFinished++
		}
	}

	loc := now.Location()
	days := make(map[time.Time]*DailyReading)
	dayBooks := make(map[time.Time]map[string]struct{})
	active := make(map[time.Time]bool)

	for _, s := range sessions {
		day := startOfDay(s.Date.In(loc))
		active[day] = true
		if !Contains(start, end, s.Date) {
			continue
		}

		stats.PagesRead += s.PagesRead
		stats.Sessions++

		d, ok := days[day]
		if !ok {
			d = &DailyReading{Date: day}
			days[day] = d
			dayBooks[day] = make(map[string]struct{})
		}
		d.PagesRead += s.PagesRead
		d.Sessions++
		dayBooks[day][s.BookID] = struct{}{}
		d.Books = len(dayBooks[day])
	}

	stats.DailyReading = make([]DailyReading, 0, len(days))
	for _, d := range days {
		stats.DailyReading = append(stats.DailyReading, *d)
	}
	slices.SortFunc(stats.DailyReading, func(a, b DailyReading) int {
		return a.Date.Compare(b.Date)
	})

	// A streak survives until the end of today even if nothing was read yet.
	day := startOfDay(now)
	if !active[day] {
		day = day.AddDate(0, 0, -1)
	}
	for active[day] {
		stats.CurrentStreakDays++
		day = day.AddDate(0, 0, -1)
	}

	return stats
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
