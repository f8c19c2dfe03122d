package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
)

// StatsService summarizes reading activity.
type StatsService struct {
	library *LibraryService
	logger  *slog.Logger
	now     func() time.Time
}

// NewStatsService creates a new stats service.
func NewStatsService(library *LibraryService, logger *slog.Logger) *StatsService {
	return &StatsService{library: library, logger: logger, now: time.Now}
}

// Summary computes reading stats for period. An empty period means all time.
func (s *StatsService) Summary(ctx context.Context, period domain.StatsPeriod) (*domain.ReadingStats, error) {
	if period == "" {
		period = domain.StatsPeriodAllTime
	}
	if !period.Valid() {
		return nil, domainerrors.Validationf("invalid period %q", period)
	}

	books, err := s.library.ListBooks(ctx, BookFilter{})
	if err != nil {
		return nil, err
	}
	sessions, err := s.library.AllSessions(ctx)
	if err != nil {
		return nil, err
	}

	stats := domain.ComputeReadingStats(period, s.now(), books, sessions)
	s.logger.Debug("reading stats computed", "period", period, "books", stats.TotalBooks, "sessions", stats.Sessions)
	return stats, nil
}
